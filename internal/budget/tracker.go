// internal/budget/tracker.go
package budget

import (
	"context"
	"fmt"
	"time"

	"matchmaking-workers/internal/common/metrics"
	"matchmaking-workers/internal/models"
)

// Tracker enforces the per (user, category) search budget on top of a
// LimitStore. Window resets are evaluated lazily on every access.
type Tracker struct {
	store  LimitStore
	policy Policy
	now    func() time.Time
}

func NewTracker(store LimitStore, policy Policy) *Tracker {
	return &Tracker{store: store, policy: policy, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

func (t *Tracker) Policy() Policy { return t.policy }

// Limit returns the current record with the window reset applied. A missing
// record is returned as a fresh one and is not persisted.
func (t *Tracker) Limit(ctx context.Context, userID, category string) (*models.CategoryMatchLimit, error) {
	limit, err := t.store.Get(ctx, userID, category)
	if err != nil {
		return nil, fmt.Errorf("read budget for %s/%s: %w", userID, category, err)
	}
	if limit == nil {
		return newLimit(userID, category), nil
	}
	if t.policy.ApplyWindow(limit, t.now()) {
		metrics.BudgetResets.WithLabelValues("window").Inc()
	}
	return limit, nil
}

// RegisterShown marks providers as shown. Ids already in the set are ignored.
func (t *Tracker) RegisterShown(ctx context.Context, userID, category string, providerIDs ...string) (*models.CategoryMatchLimit, error) {
	return t.update(ctx, userID, category, func(l *models.CategoryMatchLimit, now time.Time) error {
		t.policy.Register(l, now, providerIDs...)
		return nil
	})
}

// UnregisterShown removes an approved provider, freeing exactly one slot.
func (t *Tracker) UnregisterShown(ctx context.Context, userID, category, providerID string) (*models.CategoryMatchLimit, bool, error) {
	var removed bool
	limit, err := t.update(ctx, userID, category, func(l *models.CategoryMatchLimit, _ time.Time) error {
		removed = t.policy.Unregister(l, providerID)
		return nil
	})
	return limit, removed, err
}

func (t *Tracker) CanShowMore(ctx context.Context, userID, category string) (bool, error) {
	limit, err := t.Limit(ctx, userID, category)
	if err != nil {
		return false, err
	}
	return t.policy.CanShowMore(limit), nil
}

func (t *Tracker) RemainingSlots(ctx context.Context, userID, category string) (int, error) {
	limit, err := t.Limit(ctx, userID, category)
	if err != nil {
		return 0, err
	}
	return t.policy.RemainingSlots(limit), nil
}

func (t *Tracker) TimeUntilReset(ctx context.Context, userID, category string) (time.Duration, error) {
	limit, err := t.Limit(ctx, userID, category)
	if err != nil {
		return 0, err
	}
	return t.policy.TimeUntilReset(limit, t.now()), nil
}

func (t *Tracker) Status(ctx context.Context, userID, category string) (models.BudgetStatus, error) {
	limit, err := t.Limit(ctx, userID, category)
	if err != nil {
		return models.BudgetStatus{}, err
	}
	return t.policy.Status(limit, t.now()), nil
}

// Reset is the resubmission trigger: both the shown set and the search
// counter start over.
func (t *Tracker) Reset(ctx context.Context, userID, category string) error {
	if err := t.store.Delete(ctx, userID, category); err != nil {
		return fmt.Errorf("reset budget for %s/%s: %w", userID, category, err)
	}
	metrics.BudgetResets.WithLabelValues("resubmission").Inc()
	return nil
}

// StatusOf summarizes a record already read through the tracker.
func (t *Tracker) StatusOf(limit *models.CategoryMatchLimit) models.BudgetStatus {
	return t.policy.Status(limit, t.now())
}

// Reserve consumes one search and registers the providers chosen by pick in a
// single atomic update. pick receives the refreshed record and the number of
// free slots; extra ids are dropped. An empty pick consumes no search.
func (t *Tracker) Reserve(ctx context.Context, userID, category string, pick func(limit *models.CategoryMatchLimit, slots int) []string) ([]string, *models.CategoryMatchLimit, error) {
	var chosen []string
	limit, err := t.update(ctx, userID, category, func(l *models.CategoryMatchLimit, now time.Time) error {
		if !t.policy.CanShowMore(l) {
			return ErrSearchBudgetExhausted
		}
		slots := t.policy.RemainingSlots(l)
		chosen = pick(l, slots)
		if len(chosen) > slots {
			chosen = chosen[:slots]
		}
		if len(chosen) > 0 {
			t.policy.Register(l, now, chosen...)
			l.SearchesUsed++
		}
		return nil
	})
	if err != nil {
		return nil, limit, err
	}
	return chosen, limit, nil
}

func (t *Tracker) update(ctx context.Context, userID, category string, fn func(*models.CategoryMatchLimit, time.Time) error) (*models.CategoryMatchLimit, error) {
	limit, err := t.store.Update(ctx, userID, category, func(l *models.CategoryMatchLimit) error {
		now := t.now()
		if t.policy.ApplyWindow(l, now) {
			metrics.BudgetResets.WithLabelValues("window").Inc()
		}
		if err := fn(l, now); err != nil {
			return err
		}
		l.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return limit, nil
}
