// internal/workers/matchmaking/approve-provider-match/models.go
package approveprovidermatch

import "matchmaking-workers/internal/models"

type Input struct {
	UserID     string `json:"userId"`
	Category   string `json:"category"`
	ProviderID string `json:"providerId"`
}

type Output struct {
	Approved bool `json:"approved"`
	// SlotFreed is false when the provider was not in the shown set, for
	// instance on a job retry.
	SlotFreed bool                `json:"slotFreed"`
	Budget    models.BudgetStatus `json:"budget"`
	EventID   string              `json:"eventId"`
}
