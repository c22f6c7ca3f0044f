// internal/budget/policy.go
package budget

import (
	"time"

	"matchmaking-workers/internal/models"
)

// Policy describes one budget record with two reset triggers: the show
// window resets the shown set, a questionnaire resubmission resets everything.
type Policy struct {
	ShowLimit int
	Window    time.Duration
	// MaxSearches caps generate calls between resubmissions. Zero disables it.
	MaxSearches int
}

func DefaultPolicy() Policy {
	return Policy{
		ShowLimit:   5,
		Window:      24 * time.Hour,
		MaxSearches: 10,
	}
}

// ApplyWindow clears the shown set once the window has elapsed. It reports
// whether a reset happened.
func (p Policy) ApplyWindow(l *models.CategoryMatchLimit, now time.Time) bool {
	if l.ResetAt.IsZero() || now.Before(l.ResetAt) {
		return false
	}
	l.ProvidersShown = []string{}
	l.ResetAt = time.Time{}
	return true
}

func (p Policy) RemainingSlots(l *models.CategoryMatchLimit) int {
	remaining := p.ShowLimit - len(l.ProvidersShown)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (p Policy) SearchesLeft(l *models.CategoryMatchLimit) int {
	if p.MaxSearches <= 0 {
		return -1
	}
	left := p.MaxSearches - l.SearchesUsed
	if left < 0 {
		return 0
	}
	return left
}

func (p Policy) CanShowMore(l *models.CategoryMatchLimit) bool {
	return p.RemainingSlots(l) > 0 && p.SearchesLeft(l) != 0
}

func (p Policy) State(l *models.CategoryMatchLimit) models.BudgetState {
	switch {
	case p.SearchesLeft(l) == 0:
		return models.BudgetSearchExhausted
	case p.RemainingSlots(l) == 0:
		return models.BudgetShowLimited
	case len(l.ProvidersShown) == 0 && l.SearchesUsed == 0:
		return models.BudgetFresh
	default:
		return models.BudgetActive
	}
}

// TimeUntilReset is zero when no window is running.
func (p Policy) TimeUntilReset(l *models.CategoryMatchLimit, now time.Time) time.Duration {
	if l.ResetAt.IsZero() {
		return 0
	}
	if d := l.ResetAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Register adds ids to the shown set, skipping ones already present, and
// starts the window on the first registration.
func (p Policy) Register(l *models.CategoryMatchLimit, now time.Time, ids ...string) int {
	added := 0
	for _, id := range ids {
		if id == "" || l.HasShown(id) {
			continue
		}
		l.ProvidersShown = append(l.ProvidersShown, id)
		added++
	}
	if added > 0 && l.ResetAt.IsZero() {
		l.ResetAt = now.Add(p.Window)
	}
	return added
}

func (p Policy) Unregister(l *models.CategoryMatchLimit, id string) bool {
	for i, shown := range l.ProvidersShown {
		if shown == id {
			l.ProvidersShown = append(l.ProvidersShown[:i], l.ProvidersShown[i+1:]...)
			return true
		}
	}
	return false
}

func (p Policy) Status(l *models.CategoryMatchLimit, now time.Time) models.BudgetStatus {
	status := models.BudgetStatus{
		State:             p.State(l),
		ShownCount:        len(l.ProvidersShown),
		RemainingSlots:    p.RemainingSlots(l),
		SearchesUsed:      l.SearchesUsed,
		SearchesLeft:      p.SearchesLeft(l),
		SecondsUntilReset: int64(p.TimeUntilReset(l, now).Seconds()),
	}
	if !l.ResetAt.IsZero() {
		status.ResetAt = l.ResetAt.UTC().Format(time.RFC3339)
	}
	return status
}
