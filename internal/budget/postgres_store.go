// internal/budget/postgres_store.go
package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"matchmaking-workers/internal/models"
)

// PostgresSchema is the table layout PostgresLimitStore expects.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS category_match_limits (
    user_id         TEXT        NOT NULL,
    category        TEXT        NOT NULL,
    providers_shown TEXT[]      NOT NULL DEFAULT '{}',
    reset_at        TIMESTAMPTZ NULL,
    searches_used   INTEGER     NOT NULL DEFAULT 0,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, category)
)`

const (
	selectLimitSQL = `SELECT providers_shown, reset_at, searches_used, updated_at
		FROM category_match_limits WHERE user_id = $1 AND category = $2`
	ensureLimitSQL = `INSERT INTO category_match_limits (user_id, category)
		VALUES ($1, $2) ON CONFLICT (user_id, category) DO NOTHING`
	updateLimitSQL = `UPDATE category_match_limits
		SET providers_shown = $3, reset_at = $4, searches_used = $5, updated_at = $6
		WHERE user_id = $1 AND category = $2`
	deleteLimitSQL = `DELETE FROM category_match_limits WHERE user_id = $1 AND category = $2`
)

// PostgresLimitStore serializes updates with a row lock held for the
// duration of a transaction.
type PostgresLimitStore struct {
	db *sql.DB
}

func NewPostgresLimitStore(db *sql.DB) *PostgresLimitStore {
	return &PostgresLimitStore{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLimit(row rowScanner, userID, category string) (*models.CategoryMatchLimit, error) {
	var (
		shown     pq.StringArray
		resetAt   sql.NullTime
		searches  int
		updatedAt sql.NullTime
	)
	if err := row.Scan(&shown, &resetAt, &searches, &updatedAt); err != nil {
		return nil, err
	}
	limit := newLimit(userID, category)
	if len(shown) > 0 {
		limit.ProvidersShown = []string(shown)
	}
	if resetAt.Valid {
		limit.ResetAt = resetAt.Time
	}
	if updatedAt.Valid {
		limit.UpdatedAt = updatedAt.Time
	}
	limit.SearchesUsed = searches
	return limit, nil
}

func (s *PostgresLimitStore) Get(ctx context.Context, userID, category string) (*models.CategoryMatchLimit, error) {
	limit, err := scanLimit(s.db.QueryRowContext(ctx, selectLimitSQL, userID, category), userID, category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query budget record: %w", err)
	}
	return limit, nil
}

func (s *PostgresLimitStore) Update(ctx context.Context, userID, category string, fn UpdateFunc) (*models.CategoryMatchLimit, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin budget transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, ensureLimitSQL, userID, category); err != nil {
		return nil, fmt.Errorf("ensure budget record: %w", err)
	}
	limit, err := scanLimit(tx.QueryRowContext(ctx, selectLimitSQL+" FOR UPDATE", userID, category), userID, category)
	if err != nil {
		return nil, fmt.Errorf("lock budget record: %w", err)
	}

	if err := fn(limit); err != nil {
		return nil, err
	}

	var resetAt interface{}
	if !limit.ResetAt.IsZero() {
		resetAt = limit.ResetAt
	}
	updatedAt := limit.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx, updateLimitSQL,
		userID, category, pq.Array(limit.ProvidersShown), resetAt, limit.SearchesUsed, updatedAt,
	); err != nil {
		return nil, fmt.Errorf("write budget record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit budget transaction: %w", err)
	}
	committed = true
	return limit, nil
}

func (s *PostgresLimitStore) Delete(ctx context.Context, userID, category string) error {
	if _, err := s.db.ExecContext(ctx, deleteLimitSQL, userID, category); err != nil {
		return fmt.Errorf("delete budget record: %w", err)
	}
	return nil
}
