// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "car_assistant_questions_total",
			Help: "Total number of questions answered, by intent",
		},
		[]string{"intent"},
	)

	QuestionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "car_assistant_questions_failed_total",
			Help: "Total number of questions that ended in an error, by error code",
		},
		[]string{"intent", "error_code"},
	)

	QuestionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "car_assistant_question_duration_seconds",
			Help:    "End-to-end question pipeline duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"intent"},
	)

	SelectedRows = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "car_assistant_selected_rows",
			Help:    "Number of listings selected for a question",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"intent"},
	)

	SampleFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "car_assistant_sample_fallbacks_total",
			Help: "Questions answered from a random sample because no brand was recognized",
		},
		[]string{"intent"},
	)

	NarrativeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "car_assistant_narrative_duration_seconds",
			Help:    "Duration of narrative synthesis calls in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
	)

	DatasetsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "car_assistant_datasets_loaded_total",
			Help: "Datasets loaded into a session, by source type and kind",
		},
		[]string{"source", "kind"},
	)

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
)
