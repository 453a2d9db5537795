package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	planRequestsTotal      *prometheus.CounterVec
	planRequestLatency     *prometheus.HistogramVec
	planMergeLatency       prometheus.Histogram
	evidenceUploadsTotal   *prometheus.CounterVec
	evidenceRejectedTotal  *prometheus.CounterVec
	activityPublishedTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the plan API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		planRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plan_requests_total",
			Help: "Total number of plan API requests served.",
		}, []string{"method", "route", "status"})

		planRequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "plan_request_latency_seconds",
			Help:    "Latency distribution for plan API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		planMergeLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plan_merge_latency_seconds",
			Help:    "Time spent building merged plan trees on cache misses.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		})

		evidenceUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evidence_uploads_total",
			Help: "Total number of evidence files accepted, by evidence kind.",
		}, []string{"type"})

		evidenceRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evidence_rejected_total",
			Help: "Total number of evidence uploads rejected, by reason.",
		}, []string{"reason"})

		activityPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plan_activity_published_total",
			Help: "Total number of plan activity events published, by verb.",
		}, []string{"verb"})

		prometheus.MustRegister(
			planRequestsTotal,
			planRequestLatency,
			planMergeLatency,
			evidenceUploadsTotal,
			evidenceRejectedTotal,
			activityPublishedTotal,
		)
	})
}

// PlanRequests exposes the counter for plan API requests.
func PlanRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return planRequestsTotal
}

// PlanRequestLatency exposes the latency histogram for plan API requests.
func PlanRequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return planRequestLatency
}

// PlanMergeLatency exposes the merge build histogram.
func PlanMergeLatency() prometheus.Histogram {
	RegisterMetrics()
	return planMergeLatency
}

// EvidenceUploads exposes the accepted upload counter.
func EvidenceUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return evidenceUploadsTotal
}

// EvidenceRejected exposes the rejected upload counter.
func EvidenceRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return evidenceRejectedTotal
}

// ActivityPublished exposes the activity event counter.
func ActivityPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return activityPublishedTotal
}
