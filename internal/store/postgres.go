// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"matchmaking-workers/internal/models"
)

const PostgresSchema = `
CREATE TABLE IF NOT EXISTS providers (
    id            TEXT PRIMARY KEY,
    region        TEXT NOT NULL DEFAULT '',
    registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS provider_categories (
    provider_id TEXT NOT NULL REFERENCES providers(id),
    category    TEXT NOT NULL,
    PRIMARY KEY (provider_id, category)
);

CREATE TABLE IF NOT EXISTS survey_responses (
    respondent_id TEXT NOT NULL,
    category      TEXT NOT NULL,
    role          TEXT NOT NULL,
    responses     JSONB NOT NULL,
    submitted_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (respondent_id, category)
);

CREATE TABLE IF NOT EXISTS approved_matches (
    user_id     TEXT NOT NULL,
    category    TEXT NOT NULL,
    provider_id TEXT NOT NULL,
    approved_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, category, provider_id)
);`

const (
	selectSurveySQL = `SELECT responses FROM survey_responses
WHERE respondent_id = $1 AND category = $2`

	upsertSurveySQL = `INSERT INTO survey_responses (respondent_id, category, role, responses, submitted_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (respondent_id, category)
DO UPDATE SET role = EXCLUDED.role, responses = EXCLUDED.responses, submitted_at = EXCLUDED.submitted_at`

	selectCandidatesSQL = `SELECT p.id, p.region, p.registered_at,
       (SELECT COUNT(*) FROM provider_categories c WHERE c.provider_id = p.id) AS category_count,
       sr.responses
FROM providers p
JOIN provider_categories pc ON pc.provider_id = p.id AND pc.category = $1
LEFT JOIN survey_responses sr ON sr.respondent_id = p.id AND sr.category = $1
WHERE ($2 = '' OR p.region = $2)
ORDER BY p.registered_at, p.id`

	selectApprovedSQL = `SELECT provider_id FROM approved_matches
WHERE user_id = $1 AND category = $2
ORDER BY provider_id`

	insertApprovalSQL = `INSERT INTO approved_matches (user_id, category, provider_id, approved_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, category, provider_id) DO NOTHING`
)

// PostgresSurveyStore serves questionnaires, candidates and approvals from
// the marketplace database.
type PostgresSurveyStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresSurveyStore(db *sql.DB) *PostgresSurveyStore {
	return &PostgresSurveyStore{db: db, now: time.Now}
}

func (s *PostgresSurveyStore) GetSurveyResponses(ctx context.Context, respondentID, category string) (models.SurveyResponses, error) {
	ctx, span := tracer.Start(ctx, "postgres.GetSurveyResponses", trace.WithAttributes(
		attribute.String("category", category),
	))
	defer span.End()

	var raw []byte
	err := s.db.QueryRowContext(ctx, selectSurveySQL, respondentID, category).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSurveyNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query survey responses: %w", err)
	}
	return decodeResponses(raw)
}

func (s *PostgresSurveyStore) SaveSurveyResponses(ctx context.Context, respondentID, category string, role models.Role, responses models.SurveyResponses) error {
	ctx, span := tracer.Start(ctx, "postgres.SaveSurveyResponses")
	defer span.End()

	raw, err := json.Marshal(responses)
	if err != nil {
		return fmt.Errorf("encode survey responses: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, upsertSurveySQL, respondentID, category, string(role), raw, s.now().UTC()); err != nil {
		span.RecordError(err)
		return fmt.Errorf("save survey responses: %w", err)
	}
	return nil
}

func (s *PostgresSurveyStore) GetCandidateProviders(ctx context.Context, category, regionFilter string) ([]models.Candidate, error) {
	ctx, span := tracer.Start(ctx, "postgres.GetCandidateProviders", trace.WithAttributes(
		attribute.String("category", category),
		attribute.String("region", regionFilter),
	))
	defer span.End()

	rows, err := s.db.QueryContext(ctx, selectCandidatesSQL, category, regionFilter)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []models.Candidate
	for rows.Next() {
		var (
			c   models.Candidate
			raw []byte
		)
		if err := rows.Scan(&c.ProviderID, &c.Region, &c.RegisteredAt, &c.CategoryCount, &raw); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		if len(raw) > 0 {
			if c.Responses, err = decodeResponses(raw); err != nil {
				return nil, fmt.Errorf("provider %s: %w", c.ProviderID, err)
			}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	span.SetAttributes(attribute.Int("candidates", len(out)))
	return out, nil
}

func (s *PostgresSurveyStore) ApprovedProviders(ctx context.Context, userID, category string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, selectApprovedSQL, userID, category)
	if err != nil {
		return nil, fmt.Errorf("query approved matches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan approved match: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecordApproval is idempotent.
func (s *PostgresSurveyStore) RecordApproval(ctx context.Context, userID, category, providerID string) error {
	if _, err := s.db.ExecContext(ctx, insertApprovalSQL, userID, category, providerID, s.now().UTC()); err != nil {
		return fmt.Errorf("record approval: %w", err)
	}
	return nil
}

func decodeResponses(raw []byte) (models.SurveyResponses, error) {
	var responses models.SurveyResponses
	if err := json.Unmarshal(raw, &responses); err != nil {
		return nil, fmt.Errorf("decode survey responses: %w", err)
	}
	return responses, nil
}
