// internal/budget/errors.go
package budget

import "errors"

var (
	ErrSearchBudgetExhausted = errors.New("SEARCH_BUDGET_EXHAUSTED")
	// ErrBudgetConflict is returned when optimistic lock retries run out.
	ErrBudgetConflict = errors.New("BUDGET_CONFLICT")
)
