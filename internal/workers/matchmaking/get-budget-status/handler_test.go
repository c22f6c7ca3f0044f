// internal/workers/matchmaking/get-budget-status/handler_test.go
package getbudgetstatus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchmaking-workers/internal/budget"
	apperrors "matchmaking-workers/internal/common/errors"
	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/models"
	"matchmaking-workers/internal/workers/matchmaking/workertest"
)

func TestExecute_Fresh(t *testing.T) {
	tracker, _ := workertest.Tracker(t, budget.Policy{ShowLimit: 3, Window: 24 * time.Hour})
	h, err := NewHandler(DefaultConfig(), tracker, workertest.Registry(), logger.NewTestLogger(t))
	require.NoError(t, err)

	out, err := h.Execute(context.Background(), &Input{UserID: "couple-1", Category: "photography"})
	require.NoError(t, err)

	assert.Equal(t, models.BudgetFresh, out.Budget.State)
	assert.Equal(t, 3, out.Budget.RemainingSlots)
	assert.Equal(t, -1, out.Budget.SearchesLeft)
	assert.Equal(t, int64(0), out.Budget.SecondsUntilReset)
	assert.True(t, out.CanShowMore)
	assert.True(t, out.CanSearch)
}

func TestExecute_SearchExhaustedWithSlotsLeft(t *testing.T) {
	tracker, _ := workertest.Tracker(t, budget.Policy{ShowLimit: 3, Window: 24 * time.Hour, MaxSearches: 1})
	h, err := NewHandler(DefaultConfig(), tracker, workertest.Registry(), logger.NewTestLogger(t))
	require.NoError(t, err)

	ctx := context.Background()
	_, _, err = tracker.Reserve(ctx, "couple-1", "photography", func(*models.CategoryMatchLimit, int) []string {
		return []string{"prov-a"}
	})
	require.NoError(t, err)

	out, err := h.Execute(ctx, &Input{UserID: "couple-1", Category: "photography"})
	require.NoError(t, err)

	assert.Equal(t, models.BudgetSearchExhausted, out.Budget.State)
	assert.Equal(t, 2, out.Budget.RemainingSlots)
	assert.Equal(t, int64((24 * time.Hour).Seconds()), out.Budget.SecondsUntilReset)
	assert.True(t, out.CanShowMore)
	assert.False(t, out.CanSearch)
}

func TestExecute_Errors(t *testing.T) {
	tracker, mr := workertest.Tracker(t, budget.Policy{ShowLimit: 3, Window: time.Hour})
	h, err := NewHandler(DefaultConfig(), tracker, workertest.Registry(), logger.NewTestLogger(t))
	require.NoError(t, err)

	codeOf := func(err error) apperrors.ErrorCode {
		var stdErr *apperrors.StandardError
		require.True(t, errors.As(err, &stdErr))
		return stdErr.Code
	}

	_, err = h.Execute(context.Background(), &Input{Category: "photography"})
	assert.Equal(t, apperrors.ErrCodeInvalidInput, codeOf(err))

	_, err = h.Execute(context.Background(), &Input{UserID: "couple-1", Category: "florist"})
	assert.Equal(t, apperrors.ErrCodeUnknownCategory, codeOf(err))

	mr.Close()
	_, err = h.Execute(context.Background(), &Input{UserID: "couple-1", Category: "photography"})
	assert.Equal(t, apperrors.ErrCodeBudgetStoreFailed, codeOf(err))
}
