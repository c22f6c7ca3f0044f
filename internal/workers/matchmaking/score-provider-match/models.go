// internal/workers/matchmaking/score-provider-match/models.go
package scoreprovidermatch

import "matchmaking-workers/internal/models"

type Input struct {
	UserID     string `json:"userId"`
	ProviderID string `json:"providerId"`
	Category   string `json:"category"`
	// ProviderCategoryCount enables the specialization adjustment when > 0.
	ProviderCategoryCount int                    `json:"providerCategoryCount,omitempty"`
	CoupleResponses       models.SurveyResponses `json:"coupleResponses,omitempty"`
	ProviderResponses     models.SurveyResponses `json:"providerResponses,omitempty"`
}

type Output struct {
	ProviderID       string               `json:"providerId"`
	Category         string               `json:"category"`
	Score            int                  `json:"score"`
	Tier             models.MatchCategory `json:"tier"`
	RawScore         float64              `json:"rawScore"`
	RequiredCoverage float64              `json:"requiredCoverage"`
	Adjusted         bool                 `json:"adjusted"`
	Details          []models.MatchDetail `json:"details,omitempty"`
}
