// internal/workers/matchmaking/validate-survey-responses/models.go
package validatesurveyresponses

import (
	"matchmaking-workers/internal/common/validation"
	"matchmaking-workers/internal/models"
)

type Input struct {
	RespondentID string                 `json:"respondentId"`
	Category     string                 `json:"category"`
	Role         models.Role            `json:"role"`
	Responses    models.SurveyResponses `json:"responses"`
	// Persist stores the pruned responses when they are valid.
	Persist bool `json:"persist,omitempty"`
}

type Output struct {
	Valid           bool                         `json:"valid"`
	Errors          []validation.ValidationError `json:"validationErrors,omitempty"`
	PrunedResponses models.SurveyResponses       `json:"prunedResponses"`
	Persisted       bool                         `json:"persisted"`
}
