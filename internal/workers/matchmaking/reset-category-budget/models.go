// internal/workers/matchmaking/reset-category-budget/models.go
package resetcategorybudget

import "matchmaking-workers/internal/models"

type Input struct {
	UserID   string `json:"userId"`
	Category string `json:"category"`
}

type Output struct {
	Reset  bool                `json:"budgetReset"`
	Budget models.BudgetStatus `json:"budget"`
}
