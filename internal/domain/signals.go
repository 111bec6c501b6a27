package domain

import "context"

// UserSignal is the behavior-derived preference vector supplied by the
// user-profile collaborator. Skills are ordered but equally weighted.
type UserSignal struct {
	TopSkills         []string `json:"top_skills"`
	TopLocations      []string `json:"top_locations"`
	PreferredJobTypes []string `json:"preferred_job_types"`
	PreferredResume   string   `json:"preferred_resume,omitempty"`
}

// SignalProvider is the user-profile collaborator. A missing profile is not
// an error: implementations return (nil, nil) when no signals exist.
type SignalProvider interface {
	GetSignals(ctx context.Context, userID string) (*UserSignal, error)
}
