// internal/workers/matchmaking/score-provider-match/handler_test.go
package scoreprovidermatch

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

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, IncludeDetails: true}
}

func setup(t *testing.T) (*Handler, *workertest.MemoryStore) {
	t.Helper()
	mem := workertest.NewMemoryStore()
	mem.Surveys["couple-1/photography"] = workertest.CoupleResponses()
	mem.Surveys["prov-a/photography"] = models.SurveyResponses{
		"price":  2500.0,
		"styles": []interface{}{"documentary", "editorial"},
	}
	h, err := NewHandler(createTestConfig(), workertest.Engine(), mem, logger.NewTestLogger(t))
	require.NoError(t, err)
	return h, mem
}

func code(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	return stdErr.Code
}

func TestExecute_PerfectMatchFromStore(t *testing.T) {
	h, _ := setup(t)

	out, err := h.Execute(context.Background(), &Input{UserID: "couple-1", ProviderID: "prov-a", Category: "photography"})
	require.NoError(t, err)

	assert.Equal(t, 100, out.Score)
	assert.Equal(t, models.MatchPerfect, out.Tier)
	assert.Equal(t, 1.0, out.RequiredCoverage)
	assert.False(t, out.Adjusted)
	assert.Len(t, out.Details, 2)
}

func TestExecute_InlineWithGeneralistPenalty(t *testing.T) {
	h, _ := setup(t)

	// Budget criterion scores 0.5 (price 16.7% over a 3000 ceiling), style
	// scores 1: raw (2*0.5 + 1) / 3 = 66.67, minus the generalist penalty.
	out, err := h.Execute(context.Background(), &Input{
		ProviderID:            "prov-x",
		Category:              "photography",
		ProviderCategoryCount: 5,
		CoupleResponses:       workertest.CoupleResponses(),
		ProviderResponses: models.SurveyResponses{
			"price":  3500.0,
			"styles": []interface{}{"documentary", "editorial"},
		},
	})
	require.NoError(t, err)
	assert.True(t, out.Adjusted)
	assert.InDelta(t, 66.67, out.RawScore, 0.01)
	assert.Equal(t, 64, out.Score)
	assert.Equal(t, models.MatchMedium, out.Tier)
}

func TestExecute_DetailsOptional(t *testing.T) {
	mem := workertest.NewMemoryStore()
	h, err := NewHandler(&Config{Timeout: time.Second}, workertest.Engine(), mem, logger.NewNoOpLogger())
	require.NoError(t, err)

	out, err := h.Execute(context.Background(), &Input{
		ProviderID:        "prov-a",
		Category:          "photography",
		CoupleResponses:   workertest.CoupleResponses(),
		ProviderResponses: models.SurveyResponses{"price": 1000.0},
	})
	require.NoError(t, err)
	assert.Nil(t, out.Details)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		expected apperrors.ErrorCode
	}{
		{"missing provider", Input{UserID: "couple-1", Category: "photography"}, apperrors.ErrCodeInvalidInput},
		{"unknown category", Input{UserID: "couple-1", ProviderID: "prov-a", Category: "florist"}, apperrors.ErrCodeUnknownCategory},
		{"couple not found", Input{UserID: "couple-9", ProviderID: "prov-a", Category: "photography"}, apperrors.ErrCodeSurveyNotFound},
		{
			name: "nothing comparable",
			input: Input{
				ProviderID:        "prov-a",
				Category:          "photography",
				CoupleResponses:   models.SurveyResponses{"unrelated": "x"},
				ProviderResponses: models.SurveyResponses{"price": 1000.0},
			},
			expected: apperrors.ErrCodeIncompleteSurveyData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setup(t)
			_, err := h.Execute(context.Background(), &tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.expected, code(t, err))
		})
	}
}
