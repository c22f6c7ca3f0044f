// internal/workers/matchmaking/validate-survey-responses/handler_test.go
package validatesurveyresponses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "matchmaking-workers/internal/common/errors"
	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/models"
	"matchmaking-workers/internal/workers/matchmaking/workertest"
)

type countingCache struct {
	invalidated []string
	err         error
}

func (c *countingCache) Invalidate(_ context.Context, respondentID, category string) error {
	c.invalidated = append(c.invalidated, respondentID+"/"+category)
	return c.err
}

func setup(t *testing.T, cfg *Config) (*Handler, *workertest.MemoryStore, *countingCache) {
	t.Helper()
	mem := workertest.NewMemoryStore()
	cache := &countingCache{}
	h, err := NewHandler(cfg, Dependencies{
		Registry: workertest.Registry(),
		Writer:   mem,
		Cache:    cache,
	}, logger.NewTestLogger(t))
	require.NoError(t, err)
	return h, mem, cache
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func TestExecute_ValidAndPersisted(t *testing.T) {
	h, mem, cache := setup(t, createTestConfig())

	out, err := h.Execute(context.Background(), &Input{
		RespondentID: "couple-1",
		Category:     "photography",
		Role:         models.RoleCouple,
		Responses: models.SurveyResponses{
			"budget":       2500.0,
			"styles":       []interface{}{"documentary"},
			"drone":        false,
			"drone_height": 50.0,
		},
		Persist: true,
	})
	require.NoError(t, err)

	assert.True(t, out.Valid)
	assert.True(t, out.Persisted)
	assert.NotContains(t, out.PrunedResponses, "drone_height")
	assert.Equal(t, out.PrunedResponses, mem.Surveys["couple-1/photography"])
	assert.Equal(t, []string{"couple-1/photography"}, cache.invalidated)
}

func TestExecute_InvalidCompletesWithErrors(t *testing.T) {
	h, mem, _ := setup(t, createTestConfig())

	out, err := h.Execute(context.Background(), &Input{
		RespondentID: "couple-1",
		Category:     "photography",
		Role:         models.RoleCouple,
		Responses:    models.SurveyResponses{"styles": []interface{}{"boho"}},
		Persist:      true,
	})
	require.NoError(t, err)

	assert.False(t, out.Valid)
	assert.False(t, out.Persisted)
	assert.NotEmpty(t, out.Errors)
	assert.Empty(t, mem.Surveys)
}

func TestExecute_InvalidThrowsWhenConfigured(t *testing.T) {
	h, _, _ := setup(t, &Config{Timeout: time.Second, ThrowOnInvalid: true})

	_, err := h.Execute(context.Background(), &Input{
		Category:  "photography",
		Role:      models.RoleProvider,
		Responses: models.SurveyResponses{},
	})
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeInvalidSurveyResponses, stdErr.Code)
	assert.Contains(t, stdErr.Metadata, "validationErrors")
}

func TestExecute_CacheFailureIsLogged(t *testing.T) {
	h, _, cache := setup(t, createTestConfig())
	cache.err = errors.New("redis down")

	out, err := h.Execute(context.Background(), &Input{
		RespondentID: "prov-1",
		Category:     "photography",
		Role:         models.RoleProvider,
		Responses:    models.SurveyResponses{"price": 1500.0},
		Persist:      true,
	})
	require.NoError(t, err)
	assert.True(t, out.Persisted)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		storeErr error
		expected apperrors.ErrorCode
	}{
		{"missing category", Input{Role: models.RoleCouple}, nil, apperrors.ErrCodeInvalidInput},
		{"bad role", Input{Category: "photography", Role: "planner"}, nil, apperrors.ErrCodeInvalidInput},
		{"unknown category", Input{Category: "florist", Role: models.RoleCouple}, nil, apperrors.ErrCodeUnknownCategory},
		{
			name: "persist without respondent",
			input: Input{Category: "photography", Role: models.RoleProvider,
				Responses: models.SurveyResponses{"price": 1.0}, Persist: true},
			expected: apperrors.ErrCodeInvalidInput,
		},
		{
			name: "store down",
			input: Input{RespondentID: "prov-1", Category: "photography", Role: models.RoleProvider,
				Responses: models.SurveyResponses{"price": 1.0}, Persist: true},
			storeErr: errors.New("connection refused"),
			expected: apperrors.ErrCodeSurveyStoreFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mem, _ := setup(t, createTestConfig())
			mem.Err = tt.storeErr

			_, err := h.Execute(context.Background(), &tt.input)
			require.Error(t, err)
			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, tt.expected, stdErr.Code)
		})
	}
}
