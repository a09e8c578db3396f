package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	CertificatesIssued prometheus.Counter
	IssuanceFailures   *prometheus.CounterVec
	CodeCollisions     prometheus.Counter
	SyncFailures       prometheus.Counter
	Verifications      *prometheus.CounterVec
	VerifierPlatform   *prometheus.CounterVec
	BatchSubjects      prometheus.Histogram
	EndpointLatency    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		CertificatesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certifica_certificates_issued_total",
			Help: "Total number of certificates issued",
		}),
		IssuanceFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certifica_issuance_failures_total",
			Help: "Total number of failed issuance attempts, labeled by reason",
		}, []string{"reason"}),
		CodeCollisions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certifica_code_collisions_total",
			Help: "Total number of tracking code collisions recovered via nonce retry",
		}),
		SyncFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certifica_sync_failures_total",
			Help: "Total number of external sync failures (non-fatal)",
		}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certifica_verifications_total",
			Help: "Total number of verification lookups, labeled by result",
		}, []string{"result"}),
		VerifierPlatform: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certifica_verifier_platform_total",
			Help: "Verification requests by client platform",
		}, []string{"platform"}),
		BatchSubjects: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "certifica_batch_subjects",
			Help:    "Number of subjects per batch issuance",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "certifica_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}
