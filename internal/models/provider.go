// internal/models/provider.go
package models

import "time"

type Candidate struct {
	ProviderID    string          `json:"providerId"`
	CategoryCount int             `json:"categoryCount"`
	RegisteredAt  time.Time       `json:"registeredAt"`
	Region        string          `json:"region,omitempty"`
	Responses     SurveyResponses `json:"responses,omitempty"`
}

// HasSurvey reports whether the provider submitted the category questionnaire.
func (c Candidate) HasSurvey() bool {
	return len(c.Responses) > 0
}
