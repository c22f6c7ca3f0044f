// Package matchmaking holds the job plumbing shared by the matchmaking
// workers in its sub-packages.
package matchmaking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"matchmaking-workers/internal/budget"
	apperrors "matchmaking-workers/internal/common/errors"
	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/common/metrics"
	"matchmaking-workers/internal/matching"
)

// DecodeVariables unmarshals the job variables into out.
func DecodeVariables(job entities.Job, out interface{}) error {
	if err := json.Unmarshal([]byte(job.GetVariables()), out); err != nil {
		return apperrors.NewInvalidInputError(fmt.Sprintf("parse job variables: %v", err))
	}
	return nil
}

// CompleteJob sends output as the job result variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, taskType string, output interface{}, log logger.Logger) error {
	cmd, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		log.Error("Failed to encode job output", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return fmt.Errorf("encode output: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		log.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return fmt.Errorf("complete job: %w", err)
	}
	metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	return nil
}

// FailJob counts the failure and hands it to the error handler, which
// either fails the job with retries or throws a BPMN error.
func FailJob(ctx context.Context, client worker.JobClient, job entities.Job, taskType string, handler *apperrors.ErrorHandler, err error) error {
	stdErr := apperrors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(taskType, string(stdErr.Code)).Inc()
	handler.HandleJobError(ctx, client, job, stdErr)
	return stdErr
}

// Classify maps sentinel errors from the core packages to StandardErrors.
// Errors that are already StandardErrors pass through; anything else goes
// to fallback.
func Classify(err error, fallback func(error) *apperrors.StandardError) error {
	if err == nil {
		return nil
	}
	var stdErr *apperrors.StandardError
	switch {
	case errors.As(err, &stdErr):
		return stdErr
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("job", err)
	case errors.Is(err, matching.ErrUnknownCategory):
		return apperrors.NewUnknownCategoryError(err.Error())
	case errors.Is(err, matching.ErrIncompleteSurveyData):
		return apperrors.NewIncompleteSurveyDataError(err.Error())
	case errors.Is(err, budget.ErrBudgetConflict):
		return apperrors.NewBudgetConflictError(err)
	}
	if fallback == nil {
		return apperrors.NewInternalError(err)
	}
	return fallback(err)
}
