// internal/workers/matchmaking/approve-provider-match/handler_test.go
package approveprovidermatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchmaking-workers/internal/budget"
	apperrors "matchmaking-workers/internal/common/errors"
	"matchmaking-workers/internal/common/events"
	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/workers/matchmaking/workertest"
)

type fixture struct {
	handler   *Handler
	tracker   *budget.Tracker
	store     *workertest.MemoryStore
	publisher *workertest.RecordingPublisher
}

func setup(t *testing.T) *fixture {
	t.Helper()
	tracker, _ := workertest.Tracker(t, budget.Policy{ShowLimit: 3, Window: 24 * time.Hour, MaxSearches: 10})
	mem := workertest.NewMemoryStore()
	pub := &workertest.RecordingPublisher{}

	h, err := NewHandler(DefaultConfig(), Dependencies{
		Tracker:   tracker,
		Registry:  workertest.Registry(),
		Approvals: mem,
		Events:    pub,
	}, logger.NewTestLogger(t))
	require.NoError(t, err)
	return &fixture{handler: h, tracker: tracker, store: mem, publisher: pub}
}

func TestExecute_FreesExactlyOneSlot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.tracker.RegisterShown(ctx, "couple-1", "photography", "prov-a", "prov-b", "prov-c")
	require.NoError(t, err)
	canShow, err := f.tracker.CanShowMore(ctx, "couple-1", "photography")
	require.NoError(t, err)
	require.False(t, canShow)

	out, err := f.handler.Execute(ctx, &Input{UserID: "couple-1", Category: "photography", ProviderID: "prov-b"})
	require.NoError(t, err)

	assert.True(t, out.Approved)
	assert.True(t, out.SlotFreed)
	assert.Equal(t, 2, out.Budget.ShownCount)
	assert.Equal(t, 1, out.Budget.RemainingSlots)

	assert.Equal(t, []string{"prov-b"}, f.store.Approved["couple-1/photography"])
	require.Len(t, f.publisher.Events, 1)
	assert.Equal(t, events.TypeMatchApproved, f.publisher.Events[0].Type)
	assert.Equal(t, out.EventID, f.publisher.Events[0].ID)
}

func TestExecute_RetryIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.tracker.RegisterShown(ctx, "couple-1", "photography", "prov-a", "prov-b")
	require.NoError(t, err)

	input := &Input{UserID: "couple-1", Category: "photography", ProviderID: "prov-a"}
	_, err = f.handler.Execute(ctx, input)
	require.NoError(t, err)

	out, err := f.handler.Execute(ctx, input)
	require.NoError(t, err)
	assert.False(t, out.SlotFreed)
	assert.Equal(t, 1, out.Budget.ShownCount)
	assert.Equal(t, []string{"prov-a"}, f.store.Approved["couple-1/photography"])
}

func TestExecute_PublishFailureIsRetryable(t *testing.T) {
	f := setup(t)
	f.publisher.Err = errors.New("sns unavailable")

	_, err := f.handler.Execute(context.Background(), &Input{UserID: "couple-1", Category: "photography", ProviderID: "prov-a"})
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeEventPublishFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestExecute_Errors(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name     string
		input    Input
		expected apperrors.ErrorCode
	}{
		{"missing provider", Input{UserID: "couple-1", Category: "photography"}, apperrors.ErrCodeInvalidInput},
		{"unknown category", Input{UserID: "couple-1", Category: "florist", ProviderID: "p"}, apperrors.ErrCodeUnknownCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.handler.Execute(context.Background(), &tt.input)
			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, tt.expected, stdErr.Code)
		})
	}

	f.store.Err = errors.New("db down")
	_, err := f.handler.Execute(context.Background(), &Input{UserID: "couple-1", Category: "photography", ProviderID: "p"})
	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeSurveyStoreFailed, stdErr.Code)
}
