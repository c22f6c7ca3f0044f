// internal/workers/matchmaking/validate-survey-responses/config.go
package validatesurveyresponses

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	// ThrowOnInvalid raises INVALID_SURVEY_RESPONSES instead of completing
	// the job with valid=false.
	ThrowOnInvalid bool
}

func DefaultConfig() *Config {
	return &Config{Timeout: 10 * time.Second}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
