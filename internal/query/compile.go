// Package query lowers normalized filter criteria into the store-agnostic
// predicate that storage backends compile against.
package query

import (
	"time"

	"go-jobsearch-backend/internal/domain"
)

// Hint carries personalization input into compilation. Preferred skills
// become a boost clause: they raise relevance rank, they never narrow the
// result set a user would otherwise see.
type Hint struct {
	PreferredSkills []string
}

// Compile maps each present filter field onto one conjunctive clause of the
// predicate. Baseline clauses (active, not deleted, unexpired) are always
// present; the storage layer owns status/deleted flags so only the expiry
// bound appears here explicitly.
func Compile(c domain.FilterCriteria, hint *Hint, now time.Time) domain.Predicate {
	p := domain.Predicate{
		Text:          c.Query,
		Cities:        c.Cities,
		States:        c.States,
		Countries:     c.Countries,
		Remote:        c.Remote,
		WorkModes:     c.WorkModes,
		Geo:           c.Geo,
		SalaryMin:     c.SalaryMin,
		SalaryMax:     c.SalaryMax,
		Currency:      c.Currency,
		JobTypes:      c.JobTypes,
		ExperienceMin: c.ExperienceMin,
		ExperienceMax: c.ExperienceMax,
		Levels:        c.Levels,
		CompanyIDs:    c.CompanyIDs,
		CompanySizes:  c.CompanySizes,
		CompanyTypes:  c.CompanyTypes,
		RatingMin:     c.RatingMin,
		Skills:        c.Skills,
		Benefits:      c.Benefits,
		Features:      c.Features,
		DiversityTags: c.DiversityTags,
	}

	if !c.IncludeExpired {
		expiry := now
		p.ExpiresAfter = &expiry
	}

	if c.PostedWithin > 0 {
		posted := now.Add(-c.PostedWithin)
		p.PostedAfter = &posted
	}

	if hint != nil {
		p.BoostSkills = hint.PreferredSkills
	}

	return p
}
