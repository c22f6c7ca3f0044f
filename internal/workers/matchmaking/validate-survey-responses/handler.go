// internal/workers/matchmaking/validate-survey-responses/handler.go
package validatesurveyresponses

import (
	"context"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "matchmaking-workers/internal/common/errors"
	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/common/validation"
	"matchmaking-workers/internal/matching"
	"matchmaking-workers/internal/models"
	"matchmaking-workers/internal/store"
	"matchmaking-workers/internal/workers/matchmaking"
)

const TaskType = "validate-survey-responses"

// CacheInvalidator drops a cached questionnaire after it is rewritten.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, respondentID, category string) error
}

type Dependencies struct {
	Registry *matching.Registry
	Writer   store.SurveyWriter
	Cache    CacheInvalidator
}

type Handler struct {
	config *Config
	deps   Dependencies
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("%s: registry is required", TaskType)
	}
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		deps:   deps,
		errors: apperrors.NewErrorHandler(scoped),
		logger: scoped,
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
	if input.Category == "" {
		return nil, apperrors.NewInvalidInputError("category is required")
	}
	if input.Role != models.RoleCouple && input.Role != models.RoleProvider {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("role must be couple or provider, got %q", input.Role))
	}

	questions, err := h.deps.Registry.Questions(input.Category, input.Role)
	if err != nil {
		return nil, apperrors.NewUnknownCategoryError(input.Category)
	}

	checked, err := validation.ValidateSurvey(questions, input.Responses)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	output := &Output{
		Valid:           checked.Result.Valid,
		Errors:          checked.Result.Errors,
		PrunedResponses: checked.Pruned,
	}

	if !output.Valid {
		h.logger.Info("Survey responses rejected", map[string]interface{}{
			"respondentId": input.RespondentID,
			"category":     input.Category,
			"errors":       len(output.Errors),
		})
		if h.config.ThrowOnInvalid {
			return nil, apperrors.NewInvalidSurveyResponsesError(strings.Join(checked.Result.GetErrorMessages(), "; ")).
				WithMetadata("validationErrors", output.Errors)
		}
		return output, nil
	}

	if input.Persist {
		if err := h.persist(ctx, input, checked.Pruned); err != nil {
			return nil, err
		}
		output.Persisted = true
	}
	return output, nil
}

func (h *Handler) persist(ctx context.Context, input *Input, responses models.SurveyResponses) error {
	if input.RespondentID == "" {
		return apperrors.NewInvalidInputError("respondentId is required to persist responses")
	}
	if h.deps.Writer == nil {
		return apperrors.NewInternalError(fmt.Errorf("no survey writer configured"))
	}
	if err := h.deps.Writer.SaveSurveyResponses(ctx, input.RespondentID, input.Category, input.Role, responses); err != nil {
		return matchmaking.Classify(err, apperrors.NewSurveyStoreFailedError)
	}
	if h.deps.Cache != nil {
		if err := h.deps.Cache.Invalidate(ctx, input.RespondentID, input.Category); err != nil {
			h.logger.Warn("Failed to invalidate survey cache", map[string]interface{}{
				"respondentId": input.RespondentID,
				"category":     input.Category,
				"error":        err.Error(),
			})
		}
	}
	return nil
}
