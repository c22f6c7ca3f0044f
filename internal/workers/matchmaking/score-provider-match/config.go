// internal/workers/matchmaking/score-provider-match/config.go
package scoreprovidermatch

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	// IncludeDetails adds the per-criterion breakdown to the job output.
	IncludeDetails bool
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:        10 * time.Second,
		IncludeDetails: true,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
