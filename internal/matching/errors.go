// internal/matching/errors.go
package matching

import "errors"

var (
	// ErrUnknownCategory aborts a whole request; it is a configuration error.
	ErrUnknownCategory = errors.New("UNKNOWN_CATEGORY")
	// ErrIncompleteSurveyData means no criterion had values on both sides.
	// Callers skip the candidate instead of failing the request.
	ErrIncompleteSurveyData = errors.New("INCOMPLETE_SURVEY_DATA")
)
