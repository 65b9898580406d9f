package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"kwclassify/internal/models"
)

// Model request outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Decision outcomes.
const (
	DecisionAccepted = "accepted"
	DecisionRejected = "rejected"
	DecisionFallback = "fallback" // default-reject after a model or parse failure
)

var (
	jobsDesc = prometheus.NewDesc(
		"kwclassify_jobs",
		"Number of classification jobs by status",
		[]string{"status"},
		nil,
	)

	modelRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kwclassify_model_requests_total",
		Help: "Total model generate attempts by outcome",
	}, []string{"outcome"})

	modelLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kwclassify_model_request_duration_seconds",
		Help:    "Latency of model generate attempts",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"outcome"})

	decisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kwclassify_decisions_total",
		Help: "Total keyword classification decisions by outcome",
	}, []string{"outcome"})
)

// JobSource reports how many jobs are currently in each status.
type JobSource interface {
	CountByStatus() map[models.JobStatus]int
}

// JobCollector is a custom Prometheus collector that reads job counts from
// the job store on each scrape.
type JobCollector struct {
	source JobSource
}

// NewJobCollector creates a collector over source.
func NewJobCollector(source JobSource) *JobCollector {
	return &JobCollector{source: source}
}

// Describe sends the metric descriptor to the channel.
func (c *JobCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- jobsDesc
}

// Collect emits one gauge per job status.
func (c *JobCollector) Collect(ch chan<- prometheus.Metric) {
	counts := c.source.CountByStatus()
	for _, status := range []models.JobStatus{models.JobPending, models.JobProcessing, models.JobCompleted, models.JobFailed} {
		ch <- prometheus.MustNewConstMetric(
			jobsDesc,
			prometheus.GaugeValue,
			float64(counts[status]),
			string(status),
		)
	}
}

var initOnce sync.Once

// Init registers all collectors with the default registry.
// Must be called once at startup.
func Init(source JobSource) {
	initOnce.Do(func() {
		prometheus.MustRegister(
			NewJobCollector(source),
			modelRequests,
			modelLatency,
			decisions,
		)
	})
}

// ObserveModelRequest records one model generate attempt.
func ObserveModelRequest(outcome string, elapsed time.Duration) {
	modelRequests.WithLabelValues(outcome).Inc()
	modelLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RecordDecision records one keyword decision.
func RecordDecision(outcome string) {
	decisions.WithLabelValues(outcome).Inc()
}
