// internal/ranking/generator.go
package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"matchmaking-workers/internal/budget"
	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/common/metrics"
	"matchmaking-workers/internal/matching"
	"matchmaking-workers/internal/models"
)

type Outcome string

const (
	OutcomeMatchesFound          Outcome = "matches_found"
	OutcomeNoCandidatesAvailable Outcome = "no_candidates_available"
	OutcomeSearchBudgetExhausted Outcome = "search_budget_exhausted"
)

var ErrInvalidBatchSize = errors.New("INVALID_BATCH_SIZE")

var tracer = otel.Tracer("matchmaking-workers/ranking")

type Request struct {
	UserID          string
	Category        string
	CoupleResponses models.SurveyResponses
	Candidates      []models.Candidate
	BatchSize       int
	// Exclude lists providers the couple already has an active match with.
	Exclude []string
}

// SkipStats counts candidates that never reached ranking.
type SkipStats struct {
	AlreadyShown   int `json:"alreadyShown"`
	NoSurvey       int `json:"noSurvey"`
	IncompleteData int `json:"incompleteData"`
	Duplicate      int `json:"duplicate"`
	Excluded       int `json:"excluded"`
}

func (s SkipStats) Total() int {
	return s.AlreadyShown + s.NoSurvey + s.IncompleteData + s.Duplicate + s.Excluded
}

type Batch struct {
	Outcome Outcome              `json:"outcome"`
	Matches []models.MatchResult `json:"matches"`
	// Exhausted is set when fewer than BatchSize eligible candidates remained.
	Exhausted bool `json:"exhausted"`
	// BudgetLimited is set when remaining show slots cut the batch short.
	BudgetLimited bool                `json:"budgetLimited"`
	Eligible      int                 `json:"eligible"`
	Scored        int                 `json:"scored"`
	Skipped       SkipStats           `json:"skipped"`
	Budget        models.BudgetStatus `json:"budget"`
}

type ranked struct {
	result       *models.MatchResult
	registeredAt time.Time
}

// Generator produces ranked, budget-aware match batches for one couple.
type Generator struct {
	engine  *matching.Engine
	tracker *budget.Tracker
	logger  logger.Logger
}

func NewGenerator(engine *matching.Engine, tracker *budget.Tracker, log logger.Logger) *Generator {
	return &Generator{engine: engine, tracker: tracker, logger: log}
}

func (g *Generator) Engine() *matching.Engine { return g.engine }

func (g *Generator) Tracker() *budget.Tracker { return g.tracker }

func (g *Generator) Generate(ctx context.Context, req Request) (*Batch, error) {
	ctx, span := tracer.Start(ctx, "ranking.Generate", trace.WithAttributes(
		attribute.String("category", req.Category),
		attribute.Int("candidates", len(req.Candidates)),
		attribute.Int("batchSize", req.BatchSize),
	))
	defer span.End()

	start := time.Now()
	if _, err := g.engine.Registry().Criteria(req.Category); err != nil {
		return nil, err
	}
	if req.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatchSize, req.BatchSize)
	}

	limit, err := g.tracker.Limit(ctx, req.UserID, req.Category)
	if err != nil {
		return nil, err
	}
	if !g.tracker.Policy().CanShowMore(limit) {
		return g.finish(req, &Batch{
			Outcome: OutcomeSearchBudgetExhausted,
			Matches: []models.MatchResult{},
			Budget:  g.tracker.StatusOf(limit),
		}, start), nil
	}

	batch := &Batch{Matches: []models.MatchResult{}}
	candidates := g.score(req, limit, batch)
	sortRanked(candidates)

	if len(candidates) == 0 {
		batch.Outcome = OutcomeNoCandidatesAvailable
		batch.Exhausted = true
		batch.Budget = g.tracker.StatusOf(limit)
		return g.finish(req, batch, start), nil
	}

	byID := make(map[string]ranked, len(candidates))
	for _, c := range candidates {
		byID[c.result.ProviderID] = c
	}

	eligible := 0
	chosen, updated, err := g.tracker.Reserve(ctx, req.UserID, req.Category, func(current *models.CategoryMatchLimit, slots int) []string {
		ids := make([]string, 0, req.BatchSize)
		eligible = 0
		for _, c := range candidates {
			if current.HasShown(c.result.ProviderID) {
				continue
			}
			eligible++
			if len(ids) < req.BatchSize && len(ids) < slots {
				ids = append(ids, c.result.ProviderID)
			}
		}
		return ids
	})
	if errors.Is(err, budget.ErrSearchBudgetExhausted) {
		status, statusErr := g.tracker.Status(ctx, req.UserID, req.Category)
		if statusErr != nil {
			return nil, statusErr
		}
		batch.Outcome = OutcomeSearchBudgetExhausted
		batch.Budget = status
		return g.finish(req, batch, start), nil
	}
	if err != nil {
		return nil, err
	}

	for _, id := range chosen {
		batch.Matches = append(batch.Matches, *byID[id].result)
	}
	batch.Eligible = eligible
	batch.Exhausted = eligible < req.BatchSize
	batch.BudgetLimited = len(chosen) < minInt(req.BatchSize, eligible)
	batch.Budget = g.tracker.StatusOf(updated)
	if len(batch.Matches) > 0 {
		batch.Outcome = OutcomeMatchesFound
	} else {
		batch.Outcome = OutcomeNoCandidatesAvailable
	}
	return g.finish(req, batch, start), nil
}

func (g *Generator) score(req Request, limit *models.CategoryMatchLimit, batch *Batch) []ranked {
	seen := make(map[string]struct{}, len(req.Candidates))
	excluded := make(map[string]struct{}, len(req.Exclude))
	for _, id := range req.Exclude {
		excluded[id] = struct{}{}
	}
	out := make([]ranked, 0, len(req.Candidates))

	for _, cand := range req.Candidates {
		if _, dup := seen[cand.ProviderID]; dup {
			batch.Skipped.Duplicate++
			continue
		}
		seen[cand.ProviderID] = struct{}{}

		if _, ok := excluded[cand.ProviderID]; ok {
			batch.Skipped.Excluded++
			continue
		}
		if limit.HasShown(cand.ProviderID) {
			batch.Skipped.AlreadyShown++
			continue
		}
		if !cand.HasSurvey() {
			batch.Skipped.NoSurvey++
			continue
		}

		batch.Scored++
		result, err := g.engine.ScoreCandidate(req.Category, req.CoupleResponses, cand)
		if err != nil {
			batch.Skipped.IncompleteData++
			g.logger.Debug("candidate skipped", map[string]interface{}{
				"providerId": cand.ProviderID,
				"reason":     err.Error(),
			})
			continue
		}
		out = append(out, ranked{result: result, registeredAt: cand.RegisteredAt})
	}
	return out
}

// sortRanked orders by score, then earlier registration, then provider id.
func sortRanked(rs []ranked) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.result.Score != b.result.Score {
			return a.result.Score > b.result.Score
		}
		if !a.registeredAt.Equal(b.registeredAt) {
			return a.registeredAt.Before(b.registeredAt)
		}
		return a.result.ProviderID < b.result.ProviderID
	})
}

func (g *Generator) finish(req Request, batch *Batch, start time.Time) *Batch {
	metrics.MatchBatches.WithLabelValues(req.Category, string(batch.Outcome)).Inc()
	metrics.CandidatesScored.WithLabelValues(req.Category).Add(float64(batch.Scored))
	skips := map[string]int{
		"already_shown": batch.Skipped.AlreadyShown,
		"no_survey":     batch.Skipped.NoSurvey,
		"incomplete":    batch.Skipped.IncompleteData,
		"duplicate":     batch.Skipped.Duplicate,
		"excluded":      batch.Skipped.Excluded,
	}
	for reason, n := range skips {
		if n > 0 {
			metrics.CandidatesSkipped.WithLabelValues(req.Category, reason).Add(float64(n))
		}
	}
	for _, m := range batch.Matches {
		metrics.MatchScores.WithLabelValues(req.Category).Observe(float64(m.Score))
	}

	g.logger.Info("match batch generated", map[string]interface{}{
		"userId":        req.UserID,
		"category":      req.Category,
		"outcome":       batch.Outcome,
		"returned":      len(batch.Matches),
		"scored":        batch.Scored,
		"skipped":       batch.Skipped.Total(),
		"exhausted":     batch.Exhausted,
		"budgetLimited": batch.BudgetLimited,
		"duration":      time.Since(start).String(),
	})
	return batch
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
