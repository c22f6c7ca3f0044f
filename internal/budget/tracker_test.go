// internal/budget/tracker_test.go
package budget

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchmaking-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupRedisStore(t *testing.T, opts ...RedisStoreOption) (*RedisLimitStore, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLimitStore(client, opts...), mr, client
}

func setupTracker(t *testing.T, policy Policy) (*Tracker, *fakeClock) {
	t.Helper()
	store, _, _ := setupRedisStore(t)
	clock := &fakeClock{now: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)}
	return NewTracker(store, policy).WithClock(clock.Now), clock
}

func pickAll(ids ...string) func(*models.CategoryMatchLimit, int) []string {
	return func(l *models.CategoryMatchLimit, slots int) []string {
		out := make([]string, 0, slots)
		for _, id := range ids {
			if len(out) == slots {
				break
			}
			if !l.HasShown(id) {
				out = append(out, id)
			}
		}
		return out
	}
}

// ==========================
// Tracker
// ==========================

func TestTracker_FreshRecord(t *testing.T) {
	tracker, _ := setupTracker(t, DefaultPolicy())
	ctx := context.Background()

	status, err := tracker.Status(ctx, "user-1", "photography")
	require.NoError(t, err)
	assert.Equal(t, models.BudgetFresh, status.State)
	assert.Equal(t, 5, status.RemainingSlots)
	assert.Zero(t, status.SecondsUntilReset)
	assert.Empty(t, status.ResetAt)

	can, err := tracker.CanShowMore(ctx, "user-1", "photography")
	require.NoError(t, err)
	assert.True(t, can)
}

func TestTracker_RegisterShownIsIdempotent(t *testing.T) {
	tracker, _ := setupTracker(t, DefaultPolicy())
	ctx := context.Background()

	_, err := tracker.RegisterShown(ctx, "user-1", "venue", "p-1")
	require.NoError(t, err)
	limit, err := tracker.RegisterShown(ctx, "user-1", "venue", "p-1", "p-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"p-1"}, limit.ProvidersShown)
	remaining, err := tracker.RemainingSlots(ctx, "user-1", "venue")
	require.NoError(t, err)
	assert.Equal(t, 4, remaining)
}

func TestTracker_UnregisterShownFreesOneSlot(t *testing.T) {
	tracker, _ := setupTracker(t, DefaultPolicy())
	ctx := context.Background()

	_, err := tracker.RegisterShown(ctx, "user-1", "venue", "p-1", "p-2", "p-3")
	require.NoError(t, err)

	limit, removed, err := tracker.UnregisterShown(ctx, "user-1", "venue", "p-2")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"p-1", "p-3"}, limit.ProvidersShown)

	_, removed, err = tracker.UnregisterShown(ctx, "user-1", "venue", "p-2")
	require.NoError(t, err)
	assert.False(t, removed)

	remaining, err := tracker.RemainingSlots(ctx, "user-1", "venue")
	require.NoError(t, err)
	assert.Equal(t, 3, remaining)
}

func TestTracker_ShowLimitedState(t *testing.T) {
	tracker, _ := setupTracker(t, DefaultPolicy())
	ctx := context.Background()

	_, err := tracker.RegisterShown(ctx, "user-1", "music", "a", "b", "c", "d", "e")
	require.NoError(t, err)

	status, err := tracker.Status(ctx, "user-1", "music")
	require.NoError(t, err)
	assert.Equal(t, models.BudgetShowLimited, status.State)
	assert.Zero(t, status.RemainingSlots)

	can, err := tracker.CanShowMore(ctx, "user-1", "music")
	require.NoError(t, err)
	assert.False(t, can)
}

func TestTracker_WindowResetIsLazy(t *testing.T) {
	tracker, clock := setupTracker(t, DefaultPolicy())
	ctx := context.Background()

	_, err := tracker.RegisterShown(ctx, "user-1", "music", "a", "b", "c", "d", "e")
	require.NoError(t, err)

	clock.Advance(23 * time.Hour)
	until, err := tracker.TimeUntilReset(ctx, "user-1", "music")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, until)

	clock.Advance(time.Hour)
	can, err := tracker.CanShowMore(ctx, "user-1", "music")
	require.NoError(t, err)
	assert.True(t, can)

	status, err := tracker.Status(ctx, "user-1", "music")
	require.NoError(t, err)
	assert.Equal(t, 5, status.RemainingSlots)
	assert.Empty(t, status.ResetAt)
}

func TestTracker_WindowStartsOnFirstRegistration(t *testing.T) {
	tracker, clock := setupTracker(t, DefaultPolicy())
	ctx := context.Background()
	start := clock.Now()

	limit, err := tracker.RegisterShown(ctx, "user-1", "music", "a")
	require.NoError(t, err)
	assert.True(t, limit.ResetAt.Equal(start.Add(24*time.Hour)))

	clock.Advance(2 * time.Hour)
	limit, err = tracker.RegisterShown(ctx, "user-1", "music", "b")
	require.NoError(t, err)
	assert.True(t, limit.ResetAt.Equal(start.Add(24*time.Hour)))
}

func TestTracker_ResetClearsBothCounters(t *testing.T) {
	tracker, _ := setupTracker(t, Policy{ShowLimit: 5, Window: time.Hour, MaxSearches: 1})
	ctx := context.Background()

	chosen, _, err := tracker.Reserve(ctx, "user-1", "catering", pickAll("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, chosen)

	status, err := tracker.Status(ctx, "user-1", "catering")
	require.NoError(t, err)
	assert.Equal(t, models.BudgetSearchExhausted, status.State)

	require.NoError(t, tracker.Reset(ctx, "user-1", "catering"))

	status, err = tracker.Status(ctx, "user-1", "catering")
	require.NoError(t, err)
	assert.Equal(t, models.BudgetFresh, status.State)
	assert.Equal(t, 1, status.SearchesLeft)
}

func TestTracker_WindowResetKeepsSearchCounter(t *testing.T) {
	tracker, clock := setupTracker(t, Policy{ShowLimit: 2, Window: time.Hour, MaxSearches: 3})
	ctx := context.Background()

	_, _, err := tracker.Reserve(ctx, "user-1", "catering", pickAll("a", "b"))
	require.NoError(t, err)
	clock.Advance(time.Hour)

	status, err := tracker.Status(ctx, "user-1", "catering")
	require.NoError(t, err)
	assert.Equal(t, models.BudgetActive, status.State)
	assert.Equal(t, 2, status.RemainingSlots)
	assert.Equal(t, 1, status.SearchesUsed)
	assert.Equal(t, 2, status.SearchesLeft)
}

func TestTracker_ReserveCapsToRemainingSlots(t *testing.T) {
	tracker, _ := setupTracker(t, DefaultPolicy())
	ctx := context.Background()

	_, err := tracker.RegisterShown(ctx, "user-1", "florist", "a", "b", "c")
	require.NoError(t, err)

	chosen, limit, err := tracker.Reserve(ctx, "user-1", "florist", func(_ *models.CategoryMatchLimit, _ int) []string {
		return []string{"d", "e", "f", "g"}
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "e"}, chosen)
	assert.Len(t, limit.ProvidersShown, 5)
	assert.Equal(t, 1, limit.SearchesUsed)
}

func TestTracker_ReserveRefusesWhenExhausted(t *testing.T) {
	tracker, _ := setupTracker(t, DefaultPolicy())
	ctx := context.Background()

	_, err := tracker.RegisterShown(ctx, "user-1", "florist", "a", "b", "c", "d", "e")
	require.NoError(t, err)

	called := false
	_, _, err = tracker.Reserve(ctx, "user-1", "florist", func(_ *models.CategoryMatchLimit, _ int) []string {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrSearchBudgetExhausted)
	assert.False(t, called)

	status, err := tracker.Status(ctx, "user-1", "florist")
	require.NoError(t, err)
	assert.Zero(t, status.SearchesUsed)
}

func TestTracker_UnlimitedSearches(t *testing.T) {
	tracker, _ := setupTracker(t, Policy{ShowLimit: 100, Window: time.Hour})
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, _, err := tracker.Reserve(ctx, "user-1", "music", pickAll(fmt.Sprintf("p-%d", i)))
		require.NoError(t, err)
	}

	status, err := tracker.Status(ctx, "user-1", "music")
	require.NoError(t, err)
	assert.Equal(t, -1, status.SearchesLeft)
	assert.Equal(t, models.BudgetActive, status.State)
}

func TestTracker_ConcurrentReservationsNeverExceedLimit(t *testing.T) {
	store, _, _ := setupRedisStore(t, WithMaxRetries(100))
	tracker := NewTracker(store, Policy{ShowLimit: 5, Window: time.Hour})
	ctx := context.Background()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			chosen, _, err := tracker.Reserve(ctx, "user-1", "venue", pickAll(fmt.Sprintf("p-%d", i)))
			if err != nil {
				return
			}
			mu.Lock()
			total += len(chosen)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	limit, err := tracker.Limit(ctx, "user-1", "venue")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(limit.ProvidersShown), 5)
	assert.Equal(t, total, len(limit.ProvidersShown))
}
