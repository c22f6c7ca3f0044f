// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Logger is the subset of logger.Logger the error handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler turns worker errors into Zeebe fail or throw commands.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Decision is what HandleJobError will do with a job for a given error.
type Decision struct {
	Error   *BPMNError
	Retries int
	Throw   bool
}

// Decide normalizes err and picks between a retrying fail and a BPMN throw.
// Retries never exceed what the job has left.
func (h *ErrorHandler) Decide(job entities.Job, err error) Decision {
	stdErr := AsStandardError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	retries := bpmnErr.Retries
	if retries > 0 && job.Retries > 0 {
		if int(job.Retries)-1 < retries {
			retries = int(job.Retries) - 1
		}
		if retries > 0 {
			return Decision{Error: bpmnErr, Retries: retries}
		}
	}
	return Decision{Error: bpmnErr, Throw: true}
}

// HandleJobError logs the failure and sends the matching Zeebe command.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	d := h.Decide(job, err)
	h.logError(job, d)

	vars, _ := json.Marshal(d.Error.ToErrorVariables())

	var sendErr error
	if d.Throw {
		cmd := client.NewThrowErrorCommand().
			JobKey(job.Key).
			ErrorCode(d.Error.Code).
			ErrorMessage(d.Error.Message)
		if withVars, varErr := cmd.VariablesFromString(string(vars)); varErr == nil {
			_, sendErr = withVars.Send(ctx)
		} else {
			_, sendErr = cmd.Send(ctx)
		}
	} else {
		cmd := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(int32(d.Retries)).
			ErrorMessage(d.Error.Message)
		if withVars, varErr := cmd.VariablesFromString(string(vars)); varErr == nil {
			_, sendErr = withVars.Send(ctx)
		} else {
			_, sendErr = cmd.Send(ctx)
		}
	}

	if sendErr != nil {
		h.logger.Error("failed to send job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  sendErr,
		})
	}
}

func (h *ErrorHandler) logError(job entities.Job, d Decision) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"bpmnErrorCode":    d.Error.Code,
		"message":          d.Error.Message,
		"details":          d.Error.Details,
		"retryable":        d.Error.Retryable,
		"retries":          d.Retries,
		"thrown":           d.Throw,
		"errorCategory":    GetErrorCategory(ErrorCode(d.Error.Code)),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
