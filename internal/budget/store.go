// internal/budget/store.go
package budget

import (
	"context"

	"matchmaking-workers/internal/models"
)

// UpdateFunc mutates the current record in place. Returning an error aborts
// the update without writing.
type UpdateFunc func(limit *models.CategoryMatchLimit) error

// LimitStore persists CategoryMatchLimit records. Update must run the whole
// read-modify-write atomically against concurrent writers of the same key.
type LimitStore interface {
	// Get returns nil when no record exists yet.
	Get(ctx context.Context, userID, category string) (*models.CategoryMatchLimit, error)
	Update(ctx context.Context, userID, category string, fn UpdateFunc) (*models.CategoryMatchLimit, error)
	Delete(ctx context.Context, userID, category string) error
}

func newLimit(userID, category string) *models.CategoryMatchLimit {
	return &models.CategoryMatchLimit{
		UserID:         userID,
		Category:       category,
		ProvidersShown: []string{},
	}
}
