// Package personalize computes the advisory match annotation shown on job
// cards when results are not already ordered by an explicit user strategy.
package personalize

import (
	"fmt"
	"strings"
	"time"

	"go-jobsearch-backend/internal/domain"
)

const (
	baseScore     = 50.0
	skillBonus    = 30.0
	locationBonus = 15.0
	jobTypeBonus  = 10.0
	freshBonus    = 10.0
	recentBonus   = 5.0
)

// Blend scores a job against the user's behavior signals and explains which
// bonuses fired. The result is display metadata only; it never reorders a
// ranked page.
func Blend(job domain.Job, signal domain.UserSignal, now time.Time) domain.PersonalizedFit {
	score := baseScore
	var reasons []string

	if len(signal.TopSkills) > 0 {
		matches := 0
		for _, userSkill := range signal.TopSkills {
			us := strings.ToLower(userSkill)
			for _, jobSkill := range job.Skills {
				js := strings.ToLower(jobSkill)
				if strings.Contains(js, us) || strings.Contains(us, js) {
					matches++
					break
				}
			}
		}
		if matches > 0 {
			score += skillBonus * float64(matches) / float64(len(signal.TopSkills))
			reasons = append(reasons, fmt.Sprintf("Matches %d of your top skills", matches))
		}
	}

	city := strings.ToLower(job.Location.City)
	for _, loc := range signal.TopLocations {
		if strings.ToLower(loc) == city {
			score += locationBonus
			reasons = append(reasons, fmt.Sprintf("Located in %s, one of your preferred locations", job.Location.City))
			break
		}
	}

	for _, jt := range signal.PreferredJobTypes {
		if strings.EqualFold(jt, job.JobType) {
			score += jobTypeBonus
			reasons = append(reasons, fmt.Sprintf("%s role, your preferred job type", job.JobType))
			break
		}
	}

	age := now.Sub(job.PostedAt)
	if age < 7*24*time.Hour {
		score += freshBonus
		reasons = append(reasons, "Posted this week")
	} else if age < 30*24*time.Hour {
		score += recentBonus
		reasons = append(reasons, "Posted this month")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	if len(reasons) == 0 {
		reasons = []string{"Popular role in your market"}
	}

	return domain.PersonalizedFit{Score: score, Reasons: reasons}
}
