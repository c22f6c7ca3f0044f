// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"matchmaking-workers/internal/budget"
	"matchmaking-workers/internal/common/camunda"
	"matchmaking-workers/internal/common/config"
	"matchmaking-workers/internal/common/database"
	"matchmaking-workers/internal/common/events"
	"matchmaking-workers/internal/common/logger"
	"matchmaking-workers/internal/common/observability"
	"matchmaking-workers/internal/matching"
	"matchmaking-workers/internal/ranking"
	"matchmaking-workers/internal/server"
	"matchmaking-workers/internal/store"
	"matchmaking-workers/pkg/registry"

	apm "matchmaking-workers/internal/workers/matchmaking/approve-provider-match"
	gpm "matchmaking-workers/internal/workers/matchmaking/generate-provider-matches"
	gbs "matchmaking-workers/internal/workers/matchmaking/get-budget-status"
	rcb "matchmaking-workers/internal/workers/matchmaking/reset-category-budget"
	spm "matchmaking-workers/internal/workers/matchmaking/score-provider-match"
	vsr "matchmaking-workers/internal/workers/matchmaking/validate-survey-responses"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.Build(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Service: cfg.App.Name,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name, cfg.Tracing, nil)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	schema := []string{store.PostgresSchema}
	if cfg.Budget.Backend == config.BudgetBackendPostgres {
		schema = append(schema, budget.PostgresSchema)
	}
	if err := pg.EnsureSchema(ctx, schema...); err != nil {
		zapLog.Fatal("postgres schema failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Elasticsearch ---
	var es *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return es.Ping(ctx)
	}, 15, 2*time.Second, log, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Matchmaking core ---
	reg, err := loadRegistry(cfg.Matching.CatalogPath)
	if err != nil {
		zapLog.Fatal("category catalog failed", zap.Error(err))
	}
	engine := matching.NewEngine(reg, matching.Policy{
		SpecialistBonus:     cfg.Matching.SpecialistBonus,
		GeneralistThreshold: cfg.Matching.GeneralistThreshold,
		GeneralistPenalty:   cfg.Matching.GeneralistPenalty,
		ThresholdDecaySlope: cfg.Matching.ThresholdDecaySlope,
	})

	var limits budget.LimitStore
	switch cfg.Budget.Backend {
	case config.BudgetBackendPostgres:
		limits = budget.NewPostgresLimitStore(pg.DB)
	default:
		limits = budget.NewRedisLimitStore(rdb.Client,
			budget.WithKeyPrefix(cfg.Budget.KeyPrefix),
			budget.WithMaxRetries(cfg.Budget.LockRetries),
			budget.WithRecordTTL(cfg.Budget.RecordTTL()),
		)
	}
	tracker := budget.NewTracker(limits, budget.Policy{
		ShowLimit:   cfg.Budget.ShowLimit,
		Window:      cfg.Budget.Window(),
		MaxSearches: cfg.Budget.MaxSearches,
	})
	generator := ranking.NewGenerator(engine, tracker, log)

	surveyDB := store.NewPostgresSurveyStore(pg.DB)
	surveys := store.NewCachedSurveyStore(surveyDB, rdb.Client,
		config.GetDuration(cfg.Matching.SurveyCacheTTL), log)
	var candidates store.CandidateSource = store.NewElasticCandidateSearch(es.Client, cfg.Database.Elasticsearch.ProviderIndex, 0)
	if cfg.Matching.CandidateSource == config.CandidateSourcePostgres {
		candidates = surveyDB
	}

	var publisher events.Publisher = events.NopPublisher{Logger: log}
	if cfg.Events.SNS.Enabled {
		snsPublisher, err := events.NewSNSPublisher(ctx, cfg.Events.SNS, log)
		if err != nil {
			zapLog.Fatal("sns publisher failed", zap.Error(err))
		}
		publisher = snsPublisher
	}

	zapLog.Info("Matchmaking core initialized",
		zap.Strings("categories", reg.Categories()),
		zap.String("budgetBackend", cfg.Budget.Backend),
		zap.String("candidateSource", cfg.Matching.CandidateSource),
	)

	// --- Workers ---
	var workers []*camunda.CamundaWorker
	start := func(taskType string, handler camunda.JobHandler) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), taskType, wcfg, handler, obs, log))
	}
	timeoutOf := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}
	must := func(taskType string, err error) {
		if err != nil {
			zapLog.Fatal("failed to create handler", zap.String("taskType", taskType), zap.Error(err))
		}
	}

	if config.IsWorkerEnabled(cfg, gpm.TaskType) {
		h, err := gpm.NewHandler(&gpm.Config{
			Timeout:          timeoutOf(gpm.TaskType),
			DefaultBatchSize: cfg.Matching.DefaultBatchSize,
			MaxBatchSize:     cfg.Matching.MaxBatchSize,
		}, gpm.Dependencies{
			Generator:  generator,
			Surveys:    surveys,
			Candidates: candidates,
			Approvals:  surveyDB,
			Events:     publisher,
		}, log)
		must(gpm.TaskType, err)
		start(gpm.TaskType, h)
	}

	if config.IsWorkerEnabled(cfg, spm.TaskType) {
		h, err := spm.NewHandler(&spm.Config{
			Timeout:        timeoutOf(spm.TaskType),
			IncludeDetails: true,
		}, engine, surveys, log)
		must(spm.TaskType, err)
		start(spm.TaskType, h)
	}

	if config.IsWorkerEnabled(cfg, vsr.TaskType) {
		h, err := vsr.NewHandler(&vsr.Config{Timeout: timeoutOf(vsr.TaskType)}, vsr.Dependencies{
			Registry: reg,
			Writer:   surveyDB,
			Cache:    surveys,
		}, log)
		must(vsr.TaskType, err)
		start(vsr.TaskType, h)
	}

	if config.IsWorkerEnabled(cfg, rcb.TaskType) {
		h, err := rcb.NewHandler(&rcb.Config{Timeout: timeoutOf(rcb.TaskType)}, tracker, reg, log)
		must(rcb.TaskType, err)
		start(rcb.TaskType, h)
	}

	if config.IsWorkerEnabled(cfg, apm.TaskType) {
		h, err := apm.NewHandler(&apm.Config{Timeout: timeoutOf(apm.TaskType)}, apm.Dependencies{
			Tracker:   tracker,
			Registry:  reg,
			Approvals: surveyDB,
			Events:    publisher,
		}, log)
		must(apm.TaskType, err)
		start(apm.TaskType, h)
	}

	if config.IsWorkerEnabled(cfg, gbs.TaskType) {
		h, err := gbs.NewHandler(&gbs.Config{Timeout: timeoutOf(gbs.TaskType)}, tracker, reg, log)
		must(gbs.TaskType, err)
		start(gbs.TaskType, h)
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	ops := server.NewOpsServer(server.Options{
		Address:         cfg.Server.Address,
		ShutdownTimeout: config.GetDuration(cfg.Server.ShutdownTimeout),
		Logger:          log,
		Checks: map[string]server.Check{
			"zeebe":         zeebe.HealthCheck,
			"postgres":      pg.Ping,
			"redis":         rdb.Ping,
			"elasticsearch": es.Ping,
		},
	})
	ops.Start()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ops.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping ops server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// loadRegistry reads the catalog at path, or the embedded default when
// path is empty.
func loadRegistry(path string) (*matching.Registry, error) {
	var (
		cat *registry.CategoryCatalog
		err error
	)
	if path != "" {
		cat, err = registry.LoadCatalog(path)
	} else {
		cat, err = registry.Default()
	}
	if err != nil {
		return nil, err
	}
	return matching.NewRegistry(cat)
}
