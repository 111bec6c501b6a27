package domain

import "time"

// Sort strategies accepted by the ranking engine.
const (
	SortRelevance       = "relevance"
	SortDate            = "date"
	SortSalaryHigh      = "salary-high"
	SortSalaryLow       = "salary-low"
	SortCompanyRating   = "company-rating"
	SortApplications    = "applications"
	SortViews           = "views"
	SortTrending        = "trending"
	SortMatchScore      = "match-score"
	SortDistance        = "distance"
	SortUrgency         = "urgency"
	SortExperienceMatch = "experience-match"
	SortAlphabetical    = "alphabetical"
	SortFeatured        = "featured"
	SortCustom          = "custom"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// RawFilters is the untrusted filter input as the request surface hands it
// over. Everything optional; the normalizer owns defaults and bounds.
type RawFilters struct {
	Query         string   `json:"query" validate:"max=200"`
	Cities        []string `json:"cities" validate:"max=10,dive,max=100"`
	States        []string `json:"states" validate:"max=10,dive,max=100"`
	Countries     []string `json:"countries" validate:"max=10,dive,max=100"`
	Remote        *bool    `json:"remote"`
	WorkModes     []string `json:"work_modes" validate:"max=3,dive,oneof=onsite hybrid remote"`
	Lat           *float64 `json:"lat" validate:"omitempty,min=-90,max=90"`
	Lng           *float64 `json:"lng" validate:"omitempty,min=-180,max=180"`
	RadiusKm      *float64 `json:"radius_km" validate:"omitempty,gt=0,max=500"`
	SalaryMin     *float64 `json:"salary_min" validate:"omitempty,min=0"`
	SalaryMax     *float64 `json:"salary_max" validate:"omitempty,min=0"`
	Currency      string   `json:"currency" validate:"omitempty,len=3,alpha"`
	JobTypes      []string `json:"job_types" validate:"max=6,dive,oneof=full-time part-time contract internship temporary freelance"`
	ExperienceMin *int     `json:"experience_min" validate:"omitempty,min=0,max=50"`
	ExperienceMax *int     `json:"experience_max" validate:"omitempty,min=0,max=50"`
	Levels        []string `json:"levels" validate:"max=5,dive,oneof=entry junior mid senior lead executive"`
	CompanyIDs    []int64  `json:"company_ids" validate:"max=20,dive,gt=0"`
	CompanySizes  []string `json:"company_sizes" validate:"max=5,dive,oneof=startup small medium large enterprise"`
	CompanyTypes  []string `json:"company_types" validate:"max=5,dive,max=50"`
	RatingMin     *float64 `json:"rating_min" validate:"omitempty,min=0,max=5"`
	Skills        []string `json:"skills" validate:"max=20,dive,max=60"`
	PostedWithin  string   `json:"posted_within" validate:"omitempty,oneof=24h 3d 7d 14d 30d"`
	Benefits      []string `json:"benefits" validate:"max=10,dive,max=60"`
	Features      []string `json:"features" validate:"max=10,dive,max=60"`
	DiversityTags []string `json:"diversity_tags" validate:"max=10,dive,max=60"`
	Page          int      `json:"page"`
	Limit         int      `json:"limit"`
	IncludeExpired bool    `json:"include_expired"`
}

// GeoCircle is a center point with a radius in kilometers.
type GeoCircle struct {
	Lat, Lng float64
	RadiusKm float64
}

// FilterCriteria is the normalized, immutable form of RawFilters. It is
// constructed exactly once per request by the normalizer and never mutated.
type FilterCriteria struct {
	Query          string
	Cities         []string
	States         []string
	Countries      []string
	Remote         *bool
	WorkModes      []string
	Geo            *GeoCircle
	SalaryMin      *float64
	SalaryMax      *float64
	Currency       string
	JobTypes       []string
	ExperienceMin  *int
	ExperienceMax  *int
	Levels         []string
	CompanyIDs     []int64
	CompanySizes   []string
	CompanyTypes   []string
	RatingMin      *float64
	Skills         []string
	// PostedWithin is kept as a duration rather than an absolute bound so
	// that identical requests canonicalize to identical criteria regardless
	// of wall-clock time. The compiler anchors it to its own now.
	PostedWithin   time.Duration
	Benefits       []string
	Features       []string
	DiversityTags  []string
	Page           int
	Limit          int
	IncludeExpired bool
}

// WeightedCriterion is one term of a user-composed custom sort.
type WeightedCriterion struct {
	Field  string  `json:"field"`
	Weight float64 `json:"weight"`
}

// RawSort is the untrusted sort input.
type RawSort struct {
	Strategy       string              `json:"strategy"`
	Order          string              `json:"order" validate:"omitempty,oneof=asc desc"`
	UserLat        *float64            `json:"user_lat" validate:"omitempty,min=-90,max=90"`
	UserLng        *float64            `json:"user_lng" validate:"omitempty,min=-180,max=180"`
	UserSkills     []string            `json:"user_skills" validate:"max=30,dive,max=60"`
	UserExperience *int                `json:"user_experience" validate:"omitempty,min=0,max=50"`
	Criteria       []WeightedCriterion `json:"criteria" validate:"max=8"`
}

// SortSpec is the validated sort selection plus its strategy parameters.
type SortSpec struct {
	Strategy       string
	Order          string
	UserLat        *float64
	UserLng        *float64
	UserSkills     []string
	UserExperience *int
	Criteria       []WeightedCriterion
}

// Ascending reports whether the caller asked for ascending output. Distance
// defaults ascending (closer is better); everything else defaults descending.
func (s SortSpec) Ascending() bool {
	if s.Order != "" {
		return s.Order == OrderAsc
	}
	return s.Strategy == SortDistance
}

// Predicate is the store-agnostic query the compiler lowers FilterCriteria
// into: a flat conjunction of typed clauses. BoostSkills is the one scored
// (non-narrowing) clause; storage backends fold it into their relevance
// rank and must never filter on it.
type Predicate struct {
	Text           string
	Cities         []string
	States         []string
	Countries      []string
	Remote         *bool
	WorkModes      []string
	Geo            *GeoCircle
	SalaryMin      *float64
	SalaryMax      *float64
	Currency       string
	JobTypes       []string
	ExperienceMin  *int
	ExperienceMax  *int
	Levels         []string
	CompanyIDs     []int64
	CompanySizes   []string
	CompanyTypes   []string
	RatingMin      *float64
	Skills         []string
	PostedAfter    *time.Time
	Benefits       []string
	Features       []string
	DiversityTags  []string
	ExpiresAfter   *time.Time
	BoostSkills    []string
}
