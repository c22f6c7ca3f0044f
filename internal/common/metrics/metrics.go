// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchmaking_worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchmaking_worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "matchmaking_worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "matchmaking_worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	MatchBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchmaking_batches_total",
			Help: "Match generation requests by category and outcome",
		},
		[]string{"category", "outcome"},
	)

	CandidatesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchmaking_candidates_scored_total",
			Help: "Candidates scored by the matching engine",
		},
		[]string{"category"},
	)

	CandidatesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchmaking_candidates_skipped_total",
			Help: "Candidates skipped before ranking",
		},
		[]string{"category", "reason"},
	)

	MatchScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchmaking_match_score",
			Help:    "Final scores of returned matches",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"category"},
	)

	BudgetResets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchmaking_budget_resets_total",
			Help: "Search budget resets by trigger",
		},
		[]string{"trigger"},
	)

	BudgetLockConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchmaking_budget_lock_conflicts_total",
			Help: "Optimistic lock conflicts while updating a search budget",
		},
	)
)
