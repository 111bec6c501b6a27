package domain

import (
	"context"
	"errors"
	"time"
)

// Common domain errors
var (
	ErrNotFound    = errors.New("resource not found")
	ErrUnavailable = errors.New("dependency unavailable")
)

// CompanySummary is the slice of company profile data carried on a job card.
type CompanySummary struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Size   *string  `json:"size,omitempty"`
	Type   *string  `json:"type,omitempty"`
	Rating *float64 `json:"rating,omitempty"`
}

// Location describes where a job is performed.
type Location struct {
	City     string   `json:"city"`
	State    string   `json:"state"`
	Country  string   `json:"country"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	Remote   bool     `json:"remote"`
	WorkMode string   `json:"work_mode,omitempty"`
}

// SalaryRange uses pointers because many postings omit one or both bounds.
type SalaryRange struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

// Job is a read-only projection of a posting as the ranking engine sees it.
// The engine never mutates a Job; writes belong to the posting service.
type Job struct {
	ID                  int64          `json:"id"`
	Title               string         `json:"title"`
	Description         string         `json:"description"`
	Company             CompanySummary `json:"company"`
	Location            Location       `json:"location"`
	Salary              SalaryRange    `json:"salary"`
	JobType             string         `json:"job_type"`
	Skills              []string       `json:"skills"`
	ExperienceMin       *int           `json:"experience_min,omitempty"`
	ExperienceMax       *int           `json:"experience_max,omitempty"`
	PostedAt            time.Time      `json:"posted_at"`
	ExpiresAt           *time.Time     `json:"expires_at,omitempty"`
	ApplicationDeadline *time.Time     `json:"application_deadline,omitempty"`
	Applications        int64          `json:"applications"`
	Views               int64          `json:"views"`
	Shares              int64          `json:"shares"`
	Featured            bool           `json:"featured"`
	Urgent              bool           `json:"urgent"`
	Benefits            []string       `json:"benefits,omitempty"`
	Tags                []string       `json:"tags,omitempty"`
	// RelevanceRank is the store-assigned text match score. Populated only
	// when the query carried free text; opaque to the scoring library.
	RelevanceRank float64 `json:"-"`
}

// PersonalizedFit is the advisory match annotation attached to a job card.
// It never reorders results that are already sorted by an explicit strategy.
type PersonalizedFit struct {
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// ScoredJob pairs a job with the score its sort strategy produced.
type ScoredJob struct {
	Job
	Score           float64          `json:"score"`
	Personalization *PersonalizedFit `json:"personalization,omitempty"`
}

// Pagination is the facet block of a search page. Total and the items slice
// are computed against the same predicate snapshot.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// SortMeta echoes the applied strategy back to the caller.
type SortMeta struct {
	Strategy string `json:"strategy"`
	Order    string `json:"order"`
	Cached   bool   `json:"cached"`
}

// SearchPage is the unit of caching: one page of ranked jobs plus its facet.
type SearchPage struct {
	Items      []ScoredJob `json:"items"`
	Pagination Pagination  `json:"pagination"`
	SortMeta   SortMeta    `json:"sort_meta"`
}

// SearchRepository is the read-only storage collaborator. FindPage returns
// the page slice together with the total for the same predicate snapshot.
// FindEnriched returns up to max candidates for strategies that score
// in-process.
type SearchRepository interface {
	FindPage(ctx context.Context, pred Predicate, sort SortSpec, skip, limit int) ([]Job, int64, error)
	Count(ctx context.Context, pred Predicate) (int64, error)
	FindEnriched(ctx context.Context, pred Predicate, max int) ([]Job, int64, error)
}

// EventPublisher is the fire-and-forget analytics collaborator.
type EventPublisher interface {
	Publish(eventName string, payload map[string]any)
}

// SearchUsecase is the ranking coordinator's surface.
type SearchUsecase interface {
	Search(ctx context.Context, filters RawFilters, sort RawSort, identity string) (*SearchPage, error)
}
