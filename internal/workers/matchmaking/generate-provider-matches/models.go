// internal/workers/matchmaking/generate-provider-matches/models.go
package generateprovidermatches

import (
	"matchmaking-workers/internal/models"
	"matchmaking-workers/internal/ranking"
)

type Input struct {
	UserID       string `json:"userId"`
	Category     string `json:"category"`
	RegionFilter string `json:"regionFilter,omitempty"`
	BatchSize    int    `json:"batchSize,omitempty"`
	// CoupleResponses skips the survey store lookup when present.
	CoupleResponses models.SurveyResponses `json:"coupleResponses,omitempty"`
}

type Output struct {
	BatchID        string               `json:"batchId"`
	Outcome        ranking.Outcome      `json:"outcome"`
	Matches        []models.MatchResult `json:"matches"`
	ProviderIDs    []string             `json:"providerIds"`
	MatchCount     int                  `json:"matchCount"`
	Exhausted      bool                 `json:"exhausted"`
	BudgetLimited  bool                 `json:"budgetLimited"`
	Skipped        ranking.SkipStats    `json:"skipped"`
	Budget         models.BudgetStatus  `json:"budget"`
	EventPublished bool                 `json:"eventPublished"`
}
