// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	GenerationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_requests_total",
			Help: "Total generation requests by terminal outcome",
		},
		[]string{"outcome"},
	)

	GenerationTierAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_tier_attempts_total",
			Help: "Tier attempts within the fallback loop",
		},
		[]string{"tier"},
	)

	GenerationTierFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_tier_failures_total",
			Help: "Tier failures by reason (timeout, provider, malformed)",
		},
		[]string{"tier", "reason"},
	)

	// Coherence rejections are tracked apart from tier failures: they are a
	// content-quality signal, not a provider-health signal.
	CoherenceRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coherence_rejections_total",
			Help: "Results rejected by the coherence validator",
		},
		[]string{"tier"},
	)

	HashtagsTrimmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hashtags_trimmed_total",
			Help: "Results whose hashtags exceeded the platform ceiling",
		},
		[]string{"platform"},
	)

	CreditsDeducted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credits_deducted_total",
			Help: "Credits deducted across all users",
		},
	)

	CreditsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credits_added_total",
			Help: "Credits added across all users",
		},
	)

	LedgerConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_conflicts_total",
			Help: "Optimistic-concurrency conflicts on balance updates",
		},
	)

	InsufficientCredits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insufficient_credits_total",
			Help: "Requests rejected at admission for lack of credits",
		},
	)
)
