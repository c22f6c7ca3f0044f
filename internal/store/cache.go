// internal/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/models"
)

const surveyCachePrefix = "survey"

// CachedSurveyStore puts a Redis read-through cache in front of a
// SurveyReader. Cache failures fall through to the backing store.
type CachedSurveyStore struct {
	backend SurveyReader
	client  redis.Cmdable
	ttl     time.Duration
	logger  logger.Logger
}

func NewCachedSurveyStore(backend SurveyReader, client redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedSurveyStore {
	return &CachedSurveyStore{backend: backend, client: client, ttl: ttl, logger: log}
}

func surveyCacheKey(respondentID, category string) string {
	return fmt.Sprintf("%s:%s:%s", surveyCachePrefix, respondentID, category)
}

func (c *CachedSurveyStore) GetSurveyResponses(ctx context.Context, respondentID, category string) (models.SurveyResponses, error) {
	key := surveyCacheKey(respondentID, category)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if responses, decodeErr := decodeResponses(raw); decodeErr == nil {
			return responses, nil
		}
		c.logger.Warn("Discarding undecodable cached survey", map[string]interface{}{
			"key": key,
		})
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Survey cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	responses, err := c.backend.GetSurveyResponses(ctx, respondentID, category)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(responses); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.Warn("Survey cache write failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
	return responses, nil
}

// Invalidate drops the cached questionnaire after a resubmission.
func (c *CachedSurveyStore) Invalidate(ctx context.Context, respondentID, category string) error {
	return c.client.Del(ctx, surveyCacheKey(respondentID, category)).Err()
}
