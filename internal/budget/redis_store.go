// internal/budget/redis_store.go
package budget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"matchmaking-workers/internal/common/metrics"
	"matchmaking-workers/internal/models"
)

const defaultRedisKeyPrefix = "match_limit"

// RedisLimitStore keeps one JSON document per (user, category) and updates it
// with WATCH/MULTI, retrying when another writer got there first.
type RedisLimitStore struct {
	client     *redis.Client
	keyPrefix  string
	maxRetries int
	ttl        time.Duration
}

type RedisStoreOption func(*RedisLimitStore)

func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisLimitStore) { s.keyPrefix = prefix }
}

func WithMaxRetries(n int) RedisStoreOption {
	return func(s *RedisLimitStore) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// WithRecordTTL expires idle records. Zero keeps them until reset.
func WithRecordTTL(ttl time.Duration) RedisStoreOption {
	return func(s *RedisLimitStore) { s.ttl = ttl }
}

func NewRedisLimitStore(client *redis.Client, opts ...RedisStoreOption) *RedisLimitStore {
	s := &RedisLimitStore{
		client:     client,
		keyPrefix:  defaultRedisKeyPrefix,
		maxRetries: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisLimitStore) key(userID, category string) string {
	return fmt.Sprintf("%s:%s:%s", s.keyPrefix, userID, category)
}

func (s *RedisLimitStore) Get(ctx context.Context, userID, category string) (*models.CategoryMatchLimit, error) {
	data, err := s.client.Get(ctx, s.key(userID, category)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeLimit(data, userID, category)
}

func (s *RedisLimitStore) Update(ctx context.Context, userID, category string, fn UpdateFunc) (*models.CategoryMatchLimit, error) {
	key := s.key(userID, category)
	var result *models.CategoryMatchLimit

	txf := func(tx *redis.Tx) error {
		limit := newLimit(userID, category)
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if limit, err = decodeLimit(data, userID, category); err != nil {
				return err
			}
		}

		if err := fn(limit); err != nil {
			return err
		}

		payload, err := json.Marshal(limit)
		if err != nil {
			return fmt.Errorf("encode budget record: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		if err == nil {
			result = limit
		}
		return err
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			metrics.BudgetLockConflicts.Inc()
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s after %d attempts", ErrBudgetConflict, key, s.maxRetries)
}

func (s *RedisLimitStore) Delete(ctx context.Context, userID, category string) error {
	return s.client.Del(ctx, s.key(userID, category)).Err()
}

func decodeLimit(data []byte, userID, category string) (*models.CategoryMatchLimit, error) {
	var limit models.CategoryMatchLimit
	if err := json.Unmarshal(data, &limit); err != nil {
		return nil, fmt.Errorf("decode budget record: %w", err)
	}
	limit.UserID = userID
	limit.Category = category
	if limit.ProvidersShown == nil {
		limit.ProvidersShown = []string{}
	}
	return &limit, nil
}
