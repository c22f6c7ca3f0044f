// internal/models/limit.go
package models

import "time"

// CategoryMatchLimit is the persisted search budget of one user in one
// category. ProvidersShown holds pending/rejected candidates only; approved
// matches are removed so they stop counting against the window cap.
type CategoryMatchLimit struct {
	UserID         string    `json:"userId"`
	Category       string    `json:"category"`
	ProvidersShown []string  `json:"providersShown"`
	ResetAt        time.Time `json:"resetAt,omitempty"`
	SearchesUsed   int       `json:"searchesUsed"`
	UpdatedAt      time.Time `json:"updatedAt,omitempty"`
}

func (l *CategoryMatchLimit) HasShown(providerID string) bool {
	for _, id := range l.ProvidersShown {
		if id == providerID {
			return true
		}
	}
	return false
}

type BudgetState string

const (
	BudgetFresh           BudgetState = "fresh"
	BudgetActive          BudgetState = "active"
	BudgetShowLimited     BudgetState = "show_limited"
	BudgetSearchExhausted BudgetState = "search_exhausted"
)

type BudgetStatus struct {
	State             BudgetState `json:"state"`
	ShownCount        int         `json:"shownCount"`
	RemainingSlots    int         `json:"remainingSlots"`
	SearchesUsed      int         `json:"searchesUsed"`
	SearchesLeft      int         `json:"searchesLeft"`
	ResetAt           string      `json:"resetAt,omitempty"`
	SecondsUntilReset int64       `json:"secondsUntilReset"`
}
