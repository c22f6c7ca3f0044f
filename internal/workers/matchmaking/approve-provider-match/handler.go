// internal/workers/matchmaking/approve-provider-match/handler.go
package approveprovidermatch

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"matchmaking-workers/internal/budget"
	apperrors "matchmaking-workers/internal/common/errors"
	"matchmaking-workers/internal/common/events"
	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/matching"
	"matchmaking-workers/internal/store"
	"matchmaking-workers/internal/workers/matchmaking"
)

const TaskType = "approve-provider-match"

type Dependencies struct {
	Tracker  *budget.Tracker
	Registry *matching.Registry
	// Approvals is optional; without it the approval is only reflected in
	// the budget and the published event.
	Approvals store.ApprovalStore
	Events    events.Publisher
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
	if deps.Tracker == nil || deps.Registry == nil {
		return nil, fmt.Errorf("%s: tracker and registry are required", TaskType)
	}
	if deps.Events == nil {
		deps.Events = events.NopPublisher{Logger: log}
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

// Execute records the approval, frees the provider's show slot and
// announces the match. Every step is idempotent so the job can be retried.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" || input.Category == "" || input.ProviderID == "" {
		return nil, apperrors.NewInvalidInputError("userId, category and providerId are required")
	}
	if !h.deps.Registry.Has(input.Category) {
		return nil, apperrors.NewUnknownCategoryError(input.Category)
	}

	if h.deps.Approvals != nil {
		if err := h.deps.Approvals.RecordApproval(ctx, input.UserID, input.Category, input.ProviderID); err != nil {
			return nil, matchmaking.Classify(err, apperrors.NewSurveyStoreFailedError)
		}
	}

	limit, removed, err := h.deps.Tracker.UnregisterShown(ctx, input.UserID, input.Category, input.ProviderID)
	if err != nil {
		return nil, matchmaking.Classify(err, apperrors.NewBudgetStoreFailedError)
	}

	event := events.NewMatchApproved(input.UserID, input.Category, input.ProviderID)
	if err := h.deps.Events.Publish(ctx, event); err != nil {
		return nil, apperrors.NewEventPublishFailedError(event.Type, err)
	}

	h.logger.Info("Provider match approved", map[string]interface{}{
		"userId":     input.UserID,
		"category":   input.Category,
		"providerId": input.ProviderID,
		"slotFreed":  removed,
	})

	return &Output{
		Approved:  true,
		SlotFreed: removed,
		Budget:    h.deps.Tracker.StatusOf(limit),
		EventID:   event.ID,
	}, nil
}
