// internal/workers/matchmaking/generate-provider-matches/handler.go
package generateprovidermatches

import (
	"context"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	apperrors "matchmaking-workers/internal/common/errors"
	"matchmaking-workers/internal/common/events"
	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/models"
	"matchmaking-workers/internal/ranking"
	"matchmaking-workers/internal/store"
	"matchmaking-workers/internal/workers/matchmaking"
)

const TaskType = "generate-provider-matches"

type Dependencies struct {
	Generator  *ranking.Generator
	Surveys    store.SurveyReader
	Candidates store.CandidateSource
	// Approvals is optional; without it no approved providers are excluded.
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
	if deps.Generator == nil || deps.Surveys == nil || deps.Candidates == nil {
		return nil, fmt.Errorf("%s: generator, surveys and candidates are required", TaskType)
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

	h.logger.Info("Processing match generation", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

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

// Execute loads the couple's questionnaire and the candidate pool, then
// produces one budget-aware batch.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" || input.Category == "" {
		return nil, apperrors.NewInvalidInputError("userId and category are required")
	}
	if !h.deps.Generator.Engine().Registry().Has(input.Category) {
		return nil, apperrors.NewUnknownCategoryError(input.Category)
	}

	batchSize, err := h.batchSize(input.BatchSize)
	if err != nil {
		return nil, err
	}

	couple, err := h.coupleResponses(ctx, input)
	if err != nil {
		return nil, err
	}

	candidates, err := h.deps.Candidates.GetCandidateProviders(ctx, input.Category, input.RegionFilter)
	if err != nil {
		return nil, matchmaking.Classify(err, apperrors.NewCandidateSearchFailedError)
	}

	var exclude []string
	if h.deps.Approvals != nil {
		exclude, err = h.deps.Approvals.ApprovedProviders(ctx, input.UserID, input.Category)
		if err != nil {
			return nil, matchmaking.Classify(err, apperrors.NewSurveyStoreFailedError)
		}
	}

	batch, err := h.deps.Generator.Generate(ctx, ranking.Request{
		UserID:          input.UserID,
		Category:        input.Category,
		CoupleResponses: couple,
		Candidates:      candidates,
		BatchSize:       batchSize,
		Exclude:         exclude,
	})
	if errors.Is(err, ranking.ErrInvalidBatchSize) {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	if err != nil {
		return nil, matchmaking.Classify(err, apperrors.NewBudgetStoreFailedError)
	}

	output := &Output{
		BatchID:       uuid.NewString(),
		Outcome:       batch.Outcome,
		Matches:       batch.Matches,
		ProviderIDs:   make([]string, 0, len(batch.Matches)),
		MatchCount:    len(batch.Matches),
		Exhausted:     batch.Exhausted,
		BudgetLimited: batch.BudgetLimited,
		Skipped:       batch.Skipped,
		Budget:        batch.Budget,
	}
	for _, m := range batch.Matches {
		output.ProviderIDs = append(output.ProviderIDs, m.ProviderID)
	}

	// Providers are already registered as shown; a failed publish is logged
	// and never retried through the job.
	if batch.Outcome == ranking.OutcomeMatchesFound {
		event := events.NewMatchesGenerated(input.UserID, input.Category, output.BatchID, output.ProviderIDs)
		if err := h.deps.Events.Publish(ctx, event); err != nil {
			h.logger.Warn("Failed to publish matches event", map[string]interface{}{
				"batchId": output.BatchID,
				"error":   err.Error(),
			})
		} else {
			output.EventPublished = true
		}
	}

	return output, nil
}

func (h *Handler) batchSize(requested int) (int, error) {
	switch {
	case requested < 0:
		return 0, apperrors.NewInvalidInputError(fmt.Sprintf("batchSize must be positive, got %d", requested))
	case requested == 0:
		return h.config.DefaultBatchSize, nil
	case requested > h.config.MaxBatchSize:
		return h.config.MaxBatchSize, nil
	default:
		return requested, nil
	}
}

func (h *Handler) coupleResponses(ctx context.Context, input *Input) (models.SurveyResponses, error) {
	if len(input.CoupleResponses) > 0 {
		return input.CoupleResponses, nil
	}
	responses, err := h.deps.Surveys.GetSurveyResponses(ctx, input.UserID, input.Category)
	if errors.Is(err, store.ErrSurveyNotFound) {
		return nil, apperrors.NewSurveyNotFoundError(input.UserID, input.Category)
	}
	if err != nil {
		return nil, matchmaking.Classify(err, apperrors.NewSurveyStoreFailedError)
	}
	return responses, nil
}
