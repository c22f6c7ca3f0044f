// Package store reads questionnaires and candidate providers for the
// matchmaking workers.
package store

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"

	"matchmaking-workers/internal/models"
)

// ErrSurveyNotFound is returned when a respondent has not submitted the
// questionnaire of a category.
var ErrSurveyNotFound = errors.New("survey responses not found")

var tracer = otel.Tracer("matchmaking-workers/store")

type SurveyReader interface {
	GetSurveyResponses(ctx context.Context, respondentID, category string) (models.SurveyResponses, error)
}

type SurveyWriter interface {
	SaveSurveyResponses(ctx context.Context, respondentID, category string, role models.Role, responses models.SurveyResponses) error
}

// CandidateSource lists the providers registered in a category. An empty
// regionFilter matches every region.
type CandidateSource interface {
	GetCandidateProviders(ctx context.Context, category, regionFilter string) ([]models.Candidate, error)
}

// ApprovalStore keeps the providers a couple approved per category.
type ApprovalStore interface {
	ApprovedProviders(ctx context.Context, userID, category string) ([]string, error)
	RecordApproval(ctx context.Context, userID, category, providerID string) error
}
