// internal/workers/matchmaking/score-provider-match/handler.go
package scoreprovidermatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "matchmaking-workers/internal/common/errors"
	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/matching"
	"matchmaking-workers/internal/models"
	"matchmaking-workers/internal/store"
	"matchmaking-workers/internal/workers/matchmaking"
)

const TaskType = "score-provider-match"

type Handler struct {
	config  *Config
	engine  *matching.Engine
	surveys store.SurveyReader
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, engine *matching.Engine, surveys store.SurveyReader, log logger.Logger) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if engine == nil {
		return nil, fmt.Errorf("%s: engine is required", TaskType)
	}
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		engine:  engine,
		surveys: surveys,
		errors:  apperrors.NewErrorHandler(scoped),
		logger:  scoped,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := matchmaking.DecodeVariables(job, &input); err != nil {
		return matchmaking.FailJob(ctx, client, job, TaskType, h.errors, err)
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		return matchmaking.FailJob(ctx, client, job, TaskType, h.errors, err)
	}
	return matchmaking.CompleteJob(ctx, client, job, TaskType, output, h.logger)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Category == "" || input.ProviderID == "" {
		return nil, apperrors.NewInvalidInputError("category and providerId are required")
	}
	if !h.engine.Registry().Has(input.Category) {
		return nil, apperrors.NewUnknownCategoryError(input.Category)
	}

	couple, err := h.responses(ctx, input.CoupleResponses, input.UserID, input.Category)
	if err != nil {
		return nil, err
	}
	provider, err := h.responses(ctx, input.ProviderResponses, input.ProviderID, input.Category)
	if err != nil {
		return nil, err
	}

	var result *models.MatchResult
	adjusted := input.ProviderCategoryCount > 0
	if adjusted {
		result, err = h.engine.ScoreCandidate(input.Category, couple, models.Candidate{
			ProviderID:    input.ProviderID,
			CategoryCount: input.ProviderCategoryCount,
			Responses:     provider,
		})
	} else {
		result, err = h.engine.Score(input.Category, couple, provider)
	}
	if err != nil {
		return nil, matchmaking.Classify(err, apperrors.NewInternalError)
	}

	h.logger.Debug("Pair scored", map[string]interface{}{
		"providerId": input.ProviderID,
		"category":   input.Category,
		"score":      result.Score,
		"tier":       result.Tier,
	})

	output := &Output{
		ProviderID:       input.ProviderID,
		Category:         input.Category,
		Score:            result.Score,
		Tier:             result.Tier,
		RawScore:         result.RawScore,
		RequiredCoverage: result.RequiredCoverage,
		Adjusted:         adjusted,
	}
	if h.config.IncludeDetails {
		output.Details = result.Details
	}
	return output, nil
}

func (h *Handler) responses(ctx context.Context, inline models.SurveyResponses, respondentID, category string) (models.SurveyResponses, error) {
	if len(inline) > 0 {
		return inline, nil
	}
	if respondentID == "" || h.surveys == nil {
		return nil, apperrors.NewInvalidInputError("responses must be inline or loadable by respondent id")
	}
	responses, err := h.surveys.GetSurveyResponses(ctx, respondentID, category)
	if errors.Is(err, store.ErrSurveyNotFound) {
		return nil, apperrors.NewSurveyNotFoundError(respondentID, category)
	}
	if err != nil {
		return nil, matchmaking.Classify(err, apperrors.NewSurveyStoreFailedError)
	}
	return responses, nil
}
