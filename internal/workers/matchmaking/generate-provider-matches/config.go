// internal/workers/matchmaking/generate-provider-matches/config.go
package generateprovidermatches

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout          time.Duration
	DefaultBatchSize int
	MaxBatchSize     int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:          30 * time.Second,
		DefaultBatchSize: 5,
		MaxBatchSize:     20,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.DefaultBatchSize <= 0 {
		return fmt.Errorf("default_batch_size must be positive")
	}
	if c.MaxBatchSize < c.DefaultBatchSize {
		return fmt.Errorf("max_batch_size must be >= default_batch_size")
	}
	return nil
}
