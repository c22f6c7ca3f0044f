// Package events publishes match lifecycle notifications for downstream
// consumers such as the notification sender.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeMatchesGenerated = "matches.generated"
	TypeMatchApproved    = "match.approved"
)

type Event struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurredAt"`
	UserID     string                 `json:"userId"`
	Category   string                 `json:"category"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

func newEvent(eventType, userID, category string, payload map[string]interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		UserID:     userID,
		Category:   category,
		Payload:    payload,
	}
}

func NewMatchesGenerated(userID, category, batchID string, providerIDs []string) Event {
	return newEvent(TypeMatchesGenerated, userID, category, map[string]interface{}{
		"batchId":     batchID,
		"providerIds": providerIDs,
	})
}

func NewMatchApproved(userID, category, providerID string) Event {
	return newEvent(TypeMatchApproved, userID, category, map[string]interface{}{
		"providerId": providerID,
	})
}
