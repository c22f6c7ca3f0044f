// Package workertest provides fixtures for the matchmaking worker tests.
package workertest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"matchmaking-workers/internal/budget"
	"matchmaking-workers/internal/common/events"
	"matchmaking-workers/internal/matching"
	"matchmaking-workers/internal/models"
	"matchmaking-workers/internal/store"
	"matchmaking-workers/pkg/registry"
)

var BaseTime = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// Registry has a single "photography" category: a required budget ceiling
// (weight 2) and a style overlap (weight 1). The drone height question is
// only shown to couples who want drone footage.
func Registry() *matching.Registry {
	return matching.NewRegistryFromDefinitions(registry.CategoryDefinition{
		ID: "photography",
		Questions: []models.SurveyQuestion{
			{ID: "budget", Role: models.RoleCouple, AnswerType: models.AnswerNumeric, Required: true},
			{ID: "styles", Role: models.RoleCouple, AnswerType: models.AnswerMultiChoice,
				Options: []string{"documentary", "editorial", "classic"}},
			{ID: "drone", Role: models.RoleCouple, AnswerType: models.AnswerBoolean},
			{ID: "drone_height", Role: models.RoleCouple, AnswerType: models.AnswerNumeric, Required: true,
				DependsOn: &models.DependsOn{QuestionID: "drone", AcceptedValues: []string{"true"}}},
			{ID: "price", Role: models.RoleProvider, AnswerType: models.AnswerNumeric, Required: true},
			{ID: "styles", Role: models.RoleProvider, AnswerType: models.AnswerMultiChoice,
				Options: []string{"documentary", "editorial", "classic"}},
		},
		Criteria: []models.MatchCriterion{
			{ID: "budget", CoupleQuestionID: "budget", ProviderQuestionID: "price",
				Comparison: models.ComparisonThreshold, Direction: models.ThresholdMax, Weight: 2, Required: true},
			{ID: "style", CoupleQuestionID: "styles", ProviderQuestionID: "styles",
				Comparison: models.ComparisonContains, Weight: 1},
		},
	})
}

func Engine() *matching.Engine {
	return matching.NewEngine(Registry(), matching.DefaultPolicy())
}

// Tracker returns a budget tracker backed by miniredis with the clock fixed
// at BaseTime.
func Tracker(t *testing.T, policy budget.Policy) (*budget.Tracker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tracker := budget.NewTracker(budget.NewRedisLimitStore(client), policy).
		WithClock(func() time.Time { return BaseTime })
	return tracker, mr
}

func CoupleResponses() models.SurveyResponses {
	return models.SurveyResponses{
		"budget": 3000.0,
		"styles": []interface{}{"documentary", "editorial"},
	}
}

// Candidate builds a provider in two categories whose price drives its score.
func Candidate(id string, price float64) models.Candidate {
	return models.Candidate{
		ProviderID:    id,
		CategoryCount: 2,
		RegisteredAt:  BaseTime.Add(-time.Hour),
		Responses: models.SurveyResponses{
			"price":  price,
			"styles": []interface{}{"documentary", "editorial"},
		},
	}
}

// MemoryStore is an in-memory survey, candidate and approval store.
type MemoryStore struct {
	mu         sync.Mutex
	Surveys    map[string]models.SurveyResponses
	Candidates []models.Candidate
	Approved   map[string][]string
	Err        error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Surveys:  map[string]models.SurveyResponses{},
		Approved: map[string][]string{},
	}
}

func key(a, b string) string { return a + "/" + b }

func (m *MemoryStore) GetSurveyResponses(_ context.Context, respondentID, category string) (models.SurveyResponses, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	r, ok := m.Surveys[key(respondentID, category)]
	if !ok {
		return nil, store.ErrSurveyNotFound
	}
	return r, nil
}

func (m *MemoryStore) SaveSurveyResponses(_ context.Context, respondentID, category string, _ models.Role, responses models.SurveyResponses) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Surveys[key(respondentID, category)] = responses
	return nil
}

func (m *MemoryStore) GetCandidateProviders(_ context.Context, _, _ string) ([]models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Candidate(nil), m.Candidates...), nil
}

func (m *MemoryStore) ApprovedProviders(_ context.Context, userID, category string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]string(nil), m.Approved[key(userID, category)]...), nil
}

func (m *MemoryStore) RecordApproval(_ context.Context, userID, category, providerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	k := key(userID, category)
	for _, id := range m.Approved[k] {
		if id == providerID {
			return nil
		}
	}
	m.Approved[k] = append(m.Approved[k], providerID)
	return nil
}

// RecordingPublisher keeps published events in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []events.Event
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, event)
	return nil
}
