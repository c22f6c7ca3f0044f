// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUnknownCategory        ErrorCode = "UNKNOWN_CATEGORY"
	ErrCodeIncompleteSurveyData   ErrorCode = "INCOMPLETE_SURVEY_DATA"
	ErrCodeSearchBudgetExhausted  ErrorCode = "SEARCH_BUDGET_EXHAUSTED"
	ErrCodeNoCandidatesAvailable  ErrorCode = "NO_CANDIDATES_AVAILABLE"
	ErrCodeInvalidSurveyResponses ErrorCode = "INVALID_SURVEY_RESPONSES"
	ErrCodeInvalidInput           ErrorCode = "INVALID_INPUT"
	ErrCodeSurveyNotFound         ErrorCode = "SURVEY_NOT_FOUND"

	ErrCodeSurveyStoreFailed     ErrorCode = "SURVEY_STORE_FAILED"
	ErrCodeCandidateSearchFailed ErrorCode = "CANDIDATE_SEARCH_FAILED"
	ErrCodeBudgetStoreFailed     ErrorCode = "BUDGET_STORE_FAILED"
	ErrCodeBudgetConflict        ErrorCode = "BUDGET_CONFLICT"
	ErrCodeEventPublishFailed    ErrorCode = "EVENT_PUBLISH_FAILED"
	ErrCodeExternalService       ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout               ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewUnknownCategoryError(category string) *StandardError {
	return newError(ErrCodeUnknownCategory, "Category has no matching criteria",
		fmt.Sprintf("category: %s", category), false)
}

func NewIncompleteSurveyDataError(details string) *StandardError {
	return newError(ErrCodeIncompleteSurveyData, "No criterion could be evaluated", details, false)
}

func NewInvalidSurveyResponsesError(details string) *StandardError {
	return newError(ErrCodeInvalidSurveyResponses, "Survey responses failed validation", details, false)
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false)
}

func NewSurveyNotFoundError(respondentID, category string) *StandardError {
	return newError(ErrCodeSurveyNotFound, "Survey responses not found",
		fmt.Sprintf("respondentId: %s, category: %s", respondentID, category), false)
}

// NewSurveyStoreFailedError creates a retryable survey store error.
func NewSurveyStoreFailedError(err error) *StandardError {
	return newError(ErrCodeSurveyStoreFailed, "Survey store unavailable", err.Error(), true)
}

// NewCandidateSearchFailedError creates a retryable candidate search error.
func NewCandidateSearchFailedError(err error) *StandardError {
	return newError(ErrCodeCandidateSearchFailed, "Candidate search failed", err.Error(), true)
}

// NewBudgetStoreFailedError creates a retryable budget persistence error.
func NewBudgetStoreFailedError(err error) *StandardError {
	return newError(ErrCodeBudgetStoreFailed, "Search budget store unavailable", err.Error(), true)
}

// NewBudgetConflictError is raised when optimistic lock retries run out.
func NewBudgetConflictError(err error) *StandardError {
	return newError(ErrCodeBudgetConflict, "Search budget update conflicted", err.Error(), true)
}

func NewEventPublishFailedError(eventType string, err error) *StandardError {
	return newError(ErrCodeEventPublishFailed, "Event publish failed",
		fmt.Sprintf("eventType: %s, error: %s", eventType, err.Error()), true)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' unavailable", service), err.Error(), true)
}

func NewTimeoutError(operation string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Operation '%s' timed out", operation), err.Error(), true)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes caught by boundary
// events in the matchmaking process models.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeUnknownCategory:        "UNKNOWN_CATEGORY",
	ErrCodeIncompleteSurveyData:   "INCOMPLETE_SURVEY_DATA",
	ErrCodeSearchBudgetExhausted:  "SEARCH_BUDGET_EXHAUSTED",
	ErrCodeNoCandidatesAvailable:  "NO_CANDIDATES_AVAILABLE",
	ErrCodeInvalidSurveyResponses: "INVALID_SURVEY_RESPONSES",
	ErrCodeInvalidInput:           "INVALID_INPUT",
	ErrCodeSurveyNotFound:         "SURVEY_NOT_FOUND",
	ErrCodeSurveyStoreFailed:      "SURVEY_STORE_FAILED",
	ErrCodeCandidateSearchFailed:  "CANDIDATE_SEARCH_FAILED",
	ErrCodeBudgetStoreFailed:      "BUDGET_STORE_FAILED",
	ErrCodeBudgetConflict:         "BUDGET_CONFLICT",
	ErrCodeEventPublishFailed:     "EVENT_PUBLISH_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSurveyStoreFailed,
		ErrCodeCandidateSearchFailed,
		ErrCodeBudgetStoreFailed,
		ErrCodeEventPublishFailed,
		ErrCodeExternalService:
		return 3
	case ErrCodeBudgetConflict,
		ErrCodeTimeout:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// AsStandardError unwraps err to a StandardError, wrapping unknown errors as
// INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// ==========================
// 5. Utility Functions
// ==========================

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "BUDGET"):
		return "BUDGET"
	case strings.Contains(codeStr, "CATEGORY") || strings.Contains(codeStr, "CANDIDATE"):
		return "MATCHING"
	case strings.Contains(codeStr, "SURVEY"):
		return "SURVEY"
	case strings.Contains(codeStr, "EVENT"):
		return "EVENTS"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
