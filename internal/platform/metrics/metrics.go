package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	FoliosGenerated   *prometheus.CounterVec
	ReferencesIssued  *prometheus.CounterVec
	Submissions       *prometheus.CounterVec
	DrainRuns         prometheus.Counter
	QueueDepth        prometheus.Gauge
	TreasuryFallbacks prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		FoliosGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "multa_gateway_folios_generated_total",
			Help: "Folios generated, partitioned by issuance mode.",
		}, []string{"mode"}),
		ReferencesIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "multa_gateway_payment_references_issued_total",
			Help: "Payment references issued, partitioned by origin.",
		}, []string{"origin"}),
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "multa_gateway_submissions_total",
			Help: "Backend submission outcomes.",
		}, []string{"result"}),
		DrainRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "multa_gateway_queue_drains_total",
			Help: "Reconciliation queue drain passes.",
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "multa_gateway_queue_depth",
			Help: "Violations currently waiting in the offline queue.",
		}),
		TreasuryFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "multa_gateway_treasury_fallbacks_total",
			Help: "Issuance attempts that degraded to a locally generated reference.",
		}),
	}
}
