// Package scoring implements one pure scoring function per sort strategy.
// Every function is deterministic given its inputs; the only time source is
// the now argument threaded in by the caller.
package scoring

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"go-jobsearch-backend/internal/domain"
)

// ErrExcluded marks a candidate that cannot be ranked under the requested
// strategy (past deadline for urgency, missing coordinates for distance).
// The coordinator drops the candidate from that strategy's output instead
// of failing the page.
var ErrExcluded = errors.New("candidate excluded from strategy")

// Trending weighs engagement counters and decays them exponentially with
// age. Half-life is roughly 1.4 days, so a posting loses most of its
// trending weight within the first week.
func Trending(job domain.Job, now time.Time) float64 {
	apps := float64(job.Applications)
	views := float64(job.Views)
	shares := float64(job.Shares)

	engagementRate := apps / math.Max(views, 1)
	raw := apps*3 + views*1 + shares*5 + engagementRate*100

	days := now.Sub(job.PostedAt).Hours() / 24
	return raw * math.Exp(-days/2)
}

// Distance returns the planar-approximation distance in kilometers between
// the user and the job. One degree of latitude is taken as 111 km and
// longitude degrees are shortened by cos(lat). Good enough for metro-scale
// radii; it is not haversine and degrades over long ranges.
func Distance(job domain.Job, userLat, userLng float64) (float64, error) {
	if job.Location.Lat == nil || job.Location.Lng == nil {
		return 0, ErrExcluded
	}

	dx := (userLat - *job.Location.Lat) * 111
	dy := (userLng - *job.Location.Lng) * 111 * math.Cos(userLat*math.Pi/180)
	return math.Sqrt(dx*dx + dy*dy), nil
}

// Urgency buckets jobs by hours remaining until the application deadline.
// Past-deadline jobs are excluded outright, not scored low. Jobs with no
// deadline fall into the lowest bucket.
func Urgency(job domain.Job, now time.Time) (float64, error) {
	if job.ApplicationDeadline == nil {
		return 20, nil
	}

	hours := job.ApplicationDeadline.Sub(now).Hours()
	switch {
	case hours <= 0:
		return 0, ErrExcluded
	case hours <= 24:
		return 100, nil
	case hours <= 72:
		return 80, nil
	case hours <= 168:
		return 60, nil
	default:
		return 20, nil
	}
}

// MatchScore is the fraction of the job's skills the user covers, scaled to
// [0,100]. With no user skills supplied there is nothing to match against,
// so a neutral 50 is returned.
func MatchScore(job domain.Job, userSkills []string) float64 {
	if len(userSkills) == 0 {
		return 50
	}

	userSet := make(map[string]bool, len(userSkills))
	for _, s := range userSkills {
		userSet[strings.ToLower(s)] = true
	}

	matches := 0
	for _, s := range job.Skills {
		if userSet[strings.ToLower(s)] {
			matches++
		}
	}
	return float64(matches) / math.Max(float64(len(job.Skills)), 1) * 100
}

// ExperienceMatch scores how the user's years of experience fit the job's
// required range: in range 100, overqualified 80, underqualified 60, and 30
// when either side supplies no data.
func ExperienceMatch(job domain.Job, userExperience *int) float64 {
	if userExperience == nil || job.ExperienceMin == nil || job.ExperienceMax == nil {
		return 30
	}

	exp := *userExperience
	switch {
	case exp >= *job.ExperienceMin && exp <= *job.ExperienceMax:
		return 100
	case exp >= *job.ExperienceMin:
		return 80
	default:
		return 60
	}
}

// customNormalizers maps user-composable criterion fields onto [roughly]
// unit-scale values. Closed set; anything else contributes zero.
var customNormalizers = map[string]func(domain.Job, time.Time) float64{
	"salary": func(j domain.Job, _ time.Time) float64 {
		switch {
		case j.Salary.Max != nil:
			return *j.Salary.Max / 10_000_000
		case j.Salary.Min != nil:
			return *j.Salary.Min / 10_000_000
		default:
			return 0
		}
	},
	"recency": func(j domain.Job, now time.Time) float64 {
		// Negative days since posted: newer jobs score higher.
		return -now.Sub(j.PostedAt).Hours() / 24
	},
	"rating": func(j domain.Job, _ time.Time) float64 {
		if j.Company.Rating == nil {
			return 0
		}
		return *j.Company.Rating / 5
	},
	"applications": func(j domain.Job, _ time.Time) float64 {
		return float64(j.Applications) / 1_000
	},
	"views": func(j domain.Job, _ time.Time) float64 {
		return float64(j.Views) / 10_000
	},
}

// Custom evaluates a user-declared weighted composite over the closed set
// of normalized fields.
func Custom(job domain.Job, criteria []domain.WeightedCriterion, now time.Time) float64 {
	total := 0.0
	for _, c := range criteria {
		norm, ok := customNormalizers[c.Field]
		if !ok {
			continue
		}
		total += c.Weight * norm(job, now)
	}
	return total
}

// Score dispatches a computed strategy to its scoring function.
// Store-sorted strategies never reach here.
func Score(job domain.Job, spec domain.SortSpec, now time.Time) (float64, error) {
	switch spec.Strategy {
	case domain.SortTrending:
		return Trending(job, now), nil
	case domain.SortDistance:
		if spec.UserLat == nil || spec.UserLng == nil {
			return 0, ErrExcluded
		}
		return Distance(job, *spec.UserLat, *spec.UserLng)
	case domain.SortUrgency:
		return Urgency(job, now)
	case domain.SortMatchScore:
		return MatchScore(job, spec.UserSkills), nil
	case domain.SortExperienceMatch:
		return ExperienceMatch(job, spec.UserExperience), nil
	case domain.SortCustom:
		return Custom(job, spec.Criteria, now), nil
	default:
		return 0, ErrExcluded
	}
}

// IsComputed reports whether a strategy is scored in-process rather than
// delegated to the storage collaborator's ordering.
func IsComputed(strategy string) bool {
	switch strategy {
	case domain.SortTrending, domain.SortDistance, domain.SortUrgency,
		domain.SortMatchScore, domain.SortExperienceMatch, domain.SortCustom:
		return true
	}
	return false
}

// SortScored orders scored jobs by primary score with a deterministic
// posting-date-descending tiebreak, so identical inputs always produce
// identical orderings. Ascending flips the primary comparison only.
func SortScored(items []domain.ScoredJob, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			if ascending {
				return items[i].Score < items[j].Score
			}
			return items[i].Score > items[j].Score
		}
		return items[i].PostedAt.After(items[j].PostedAt)
	})
}
