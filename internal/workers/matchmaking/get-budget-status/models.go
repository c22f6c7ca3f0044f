// internal/workers/matchmaking/get-budget-status/models.go
package getbudgetstatus

import "matchmaking-workers/internal/models"

type Input struct {
	UserID   string `json:"userId"`
	Category string `json:"category"`
}

type Output struct {
	Budget      models.BudgetStatus `json:"budget"`
	CanShowMore bool                `json:"canShowMore"`
	// CanSearch is false once the window's search allowance is spent, even
	// when show slots remain.
	CanSearch bool `json:"canSearch"`
}
