// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Matching MatchingConfig          `mapstructure:"matching"`
	Budget   BudgetConfig            `mapstructure:"budget"`
	Events   EventsConfig            `mapstructure:"events"`
	Server   ServerConfig            `mapstructure:"server"`
	Tracing  TracingConfig           `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	UsePlaintext   bool   `mapstructure:"use_plaintext"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses     []string `mapstructure:"addresses"`
	Username      string   `mapstructure:"username"`
	Password      string   `mapstructure:"password"`
	ProviderIndex string   `mapstructure:"provider_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// --- Matchmaking Configuration ---

// MatchingConfig holds the scoring policy knobs and batch limits.
type MatchingConfig struct {
	CatalogPath         string  `mapstructure:"catalog_path"`
	CandidateSource     string  `mapstructure:"candidate_source"` // elasticsearch | postgres
	SpecialistBonus     float64 `mapstructure:"specialist_bonus"`
	GeneralistThreshold int     `mapstructure:"generalist_threshold"`
	GeneralistPenalty   float64 `mapstructure:"generalist_penalty"`
	ThresholdDecaySlope float64 `mapstructure:"threshold_decay_slope"`
	DefaultBatchSize    int     `mapstructure:"default_batch_size"`
	MaxBatchSize        int     `mapstructure:"max_batch_size"`
	SurveyCacheTTL      int     `mapstructure:"survey_cache_ttl"` // milliseconds
}

// BudgetConfig selects the budget backend and its limits.
type BudgetConfig struct {
	Backend       string `mapstructure:"backend"` // redis | postgres
	ShowLimit     int    `mapstructure:"show_limit"`
	WindowHours   int    `mapstructure:"window_hours"`
	MaxSearches   int    `mapstructure:"max_searches"`
	LockRetries   int    `mapstructure:"lock_retries"`
	KeyPrefix     string `mapstructure:"key_prefix"`
	RecordTTLDays int    `mapstructure:"record_ttl_days"` // 0 disables expiry
}

func (b BudgetConfig) Window() time.Duration {
	return time.Duration(b.WindowHours) * time.Hour
}

func (b BudgetConfig) RecordTTL() time.Duration {
	return time.Duration(b.RecordTTLDays) * 24 * time.Hour
}

type EventsConfig struct {
	SNS SNSConfig `mapstructure:"sns"`
}

type SNSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Region   string `mapstructure:"region"`
	TopicARN string `mapstructure:"topic_arn"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}
