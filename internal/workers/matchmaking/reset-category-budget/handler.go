// internal/workers/matchmaking/reset-category-budget/handler.go
package resetcategorybudget

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"matchmaking-workers/internal/budget"
	apperrors "matchmaking-workers/internal/common/errors"
	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/matching"
	"matchmaking-workers/internal/workers/matchmaking"
)

// TaskType is raised by the resubmission flow after a couple submits a new
// questionnaire for a category.
const TaskType = "reset-category-budget"

type Handler struct {
	config   *Config
	tracker  *budget.Tracker
	registry *matching.Registry
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, tracker *budget.Tracker, registry *matching.Registry, log logger.Logger) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if tracker == nil || registry == nil {
		return nil, fmt.Errorf("%s: tracker and registry are required", TaskType)
	}
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		tracker:  tracker,
		registry: registry,
		errors:   apperrors.NewErrorHandler(scoped),
		logger:   scoped,
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
	if input.UserID == "" || input.Category == "" {
		return nil, apperrors.NewInvalidInputError("userId and category are required")
	}
	if !h.registry.Has(input.Category) {
		return nil, apperrors.NewUnknownCategoryError(input.Category)
	}

	if err := h.tracker.Reset(ctx, input.UserID, input.Category); err != nil {
		return nil, matchmaking.Classify(err, apperrors.NewBudgetStoreFailedError)
	}
	status, err := h.tracker.Status(ctx, input.UserID, input.Category)
	if err != nil {
		return nil, matchmaking.Classify(err, apperrors.NewBudgetStoreFailedError)
	}

	h.logger.Info("Search budget reset", map[string]interface{}{
		"userId":   input.UserID,
		"category": input.Category,
	})
	return &Output{Reset: true, Budget: status}, nil
}
