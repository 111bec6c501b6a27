// Package filter validates and canonicalizes raw search input into the
// immutable criteria the rest of the engine works with.
package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go-jobsearch-backend/internal/domain"
	"go-jobsearch-backend/pkg/apperror"
	"go-jobsearch-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// postedWindows maps the posted_within tokens to durations.
var postedWindows = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"3d":  3 * 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"14d": 14 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

var knownStrategies = map[string]bool{
	domain.SortRelevance:       true,
	domain.SortDate:            true,
	domain.SortSalaryHigh:      true,
	domain.SortSalaryLow:       true,
	domain.SortCompanyRating:   true,
	domain.SortApplications:    true,
	domain.SortViews:           true,
	domain.SortTrending:        true,
	domain.SortMatchScore:      true,
	domain.SortDistance:        true,
	domain.SortUrgency:         true,
	domain.SortExperienceMatch: true,
	domain.SortAlphabetical:    true,
	domain.SortFeatured:        true,
	domain.SortCustom:          true,
}

// customFields are the field names a user-composed weighted sort may
// reference. Closed set; the scoring library treats anything else as zero.
var customFields = map[string]bool{
	"salary":       true,
	"recency":      true,
	"rating":       true,
	"applications": true,
	"views":        true,
}

type Normalizer struct {
	validate    *validator.Validate
	homeCountry string
}

func NewNormalizer(validate *validator.Validate, homeCountry string) *Normalizer {
	return &Normalizer{validate: validate, homeCountry: homeCountry}
}

// Normalize turns raw filter input into canonical FilterCriteria. It is a
// pure function: no defaults depend on wall-clock time or hidden state, so
// normalizing an already-normalized input is a no-op. Every violated
// constraint is collected before returning.
func (n *Normalizer) Normalize(raw domain.RawFilters) (domain.FilterCriteria, error) {
	var violations []string

	if err := n.validate.Struct(raw); err != nil {
		violations = append(violations, validation.FormatValidationErrors(err)...)
	}

	// Cross-field invariants
	if raw.SalaryMin != nil && raw.SalaryMax != nil && *raw.SalaryMin > *raw.SalaryMax {
		violations = append(violations, "Minimum salary: cannot exceed maximum salary")
	}
	if raw.ExperienceMin != nil && raw.ExperienceMax != nil && *raw.ExperienceMin > *raw.ExperienceMax {
		violations = append(violations, "Minimum experience: cannot exceed maximum experience")
	}
	if raw.RadiusKm != nil && (raw.Lat == nil || raw.Lng == nil) {
		violations = append(violations, "Search radius: requires both latitude and longitude")
	}
	if (raw.Lat == nil) != (raw.Lng == nil) {
		violations = append(violations, "Latitude: latitude and longitude must be supplied together")
	}

	if len(violations) > 0 {
		return domain.FilterCriteria{}, apperror.Validation(violations)
	}

	c := domain.FilterCriteria{
		Query:          strings.TrimSpace(raw.Query),
		Cities:         canonSet(raw.Cities),
		States:         canonSet(raw.States),
		Countries:      canonSet(raw.Countries),
		Remote:         raw.Remote,
		WorkModes:      canonSet(raw.WorkModes),
		SalaryMin:      raw.SalaryMin,
		SalaryMax:      raw.SalaryMax,
		Currency:       strings.ToUpper(strings.TrimSpace(raw.Currency)),
		JobTypes:       canonSet(raw.JobTypes),
		ExperienceMin:  raw.ExperienceMin,
		ExperienceMax:  raw.ExperienceMax,
		Levels:         canonSet(raw.Levels),
		CompanyIDs:     canonIDs(raw.CompanyIDs),
		CompanySizes:   canonSet(raw.CompanySizes),
		CompanyTypes:   canonSet(raw.CompanyTypes),
		RatingMin:      raw.RatingMin,
		Skills:         canonSet(raw.Skills),
		PostedWithin:   postedWindows[raw.PostedWithin],
		Benefits:       canonSet(raw.Benefits),
		Features:       canonSet(raw.Features),
		DiversityTags:  canonSet(raw.DiversityTags),
		Page:           raw.Page,
		Limit:          raw.Limit,
		IncludeExpired: raw.IncludeExpired,
	}

	if raw.Lat != nil && raw.Lng != nil && raw.RadiusKm != nil {
		c.Geo = &domain.GeoCircle{Lat: *raw.Lat, Lng: *raw.Lng, RadiusKm: *raw.RadiusKm}
	}

	// Defaults
	if len(c.Countries) == 0 && (c.Remote == nil || !*c.Remote) {
		c.Countries = []string{strings.ToLower(n.homeCountry)}
	}
	if c.Page < 1 {
		c.Page = 1
	}
	if c.Limit < 1 {
		c.Limit = DefaultLimit
	}
	if c.Limit > MaxLimit {
		c.Limit = MaxLimit
	}

	return c, nil
}

// NormalizeSort validates the sort selection and its strategy parameters.
// Order defaults to descending, except distance which is ascending (closer
// is better).
func (n *Normalizer) NormalizeSort(raw domain.RawSort) (domain.SortSpec, error) {
	var violations []string

	if err := n.validate.Struct(raw); err != nil {
		violations = append(violations, validation.FormatValidationErrors(err)...)
	}

	strategy := strings.ToLower(strings.TrimSpace(raw.Strategy))
	if strategy == "" {
		strategy = domain.SortRelevance
	}
	if !knownStrategies[strategy] {
		violations = append(violations, fmt.Sprintf("Sort strategy: unknown strategy %q", strategy))
	}

	switch strategy {
	case domain.SortDistance:
		if raw.UserLat == nil || raw.UserLng == nil {
			violations = append(violations, "Sort strategy: distance requires user_lat and user_lng")
		}
	case domain.SortCustom:
		if len(raw.Criteria) == 0 {
			violations = append(violations, "Sort criteria: custom sort requires at least one weighted criterion")
		}
		for _, crit := range raw.Criteria {
			if !customFields[strings.ToLower(crit.Field)] {
				violations = append(violations, fmt.Sprintf("Criterion field: unknown field %q", crit.Field))
			}
			if crit.Weight <= 0 {
				violations = append(violations, fmt.Sprintf("Criterion weight: weight for %q must be positive", crit.Field))
			}
		}
	}

	if len(violations) > 0 {
		return domain.SortSpec{}, apperror.Validation(violations)
	}

	order := raw.Order
	if order == "" {
		order = domain.OrderDesc
		if strategy == domain.SortDistance {
			order = domain.OrderAsc
		}
	}

	spec := domain.SortSpec{
		Strategy:       strategy,
		Order:          order,
		UserLat:        raw.UserLat,
		UserLng:        raw.UserLng,
		UserSkills:     canonSet(raw.UserSkills),
		UserExperience: raw.UserExperience,
	}
	for _, crit := range raw.Criteria {
		spec.Criteria = append(spec.Criteria, domain.WeightedCriterion{
			Field:  strings.ToLower(crit.Field),
			Weight: crit.Weight,
		})
	}
	return spec, nil
}

// canonSet lowercases, trims, dedupes and sorts a string set so identical
// filter sets canonicalize to identical criteria (and cache keys).
func canonSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

func canonIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
