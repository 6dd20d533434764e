package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the server's Prometheus instruments.
type Metrics struct {
	AuthzDenials       *prometheus.CounterVec
	Transitions        *prometheus.CounterVec
	ListingsCreated    prometheus.Counter
	InquiriesCreated   prometheus.Counter
	PendingBacklog     prometheus.Gauge
	AuditWriteFailures prometheus.Counter
	RequestDuration    *prometheus.HistogramVec
}

// New registers every instrument with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AuthzDenials: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landmarket_authz_denials_total",
			Help: "Authorization decisions that denied the action",
		}, []string{"action", "kind", "rule"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landmarket_moderation_transitions_total",
			Help: "Effective moderation state transitions",
		}, []string{"entity", "from", "to"}),
		ListingsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "landmarket_listings_created_total",
			Help: "Listings submitted for moderation",
		}),
		InquiriesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "landmarket_inquiries_created_total",
			Help: "Inquiries recorded",
		}),
		PendingBacklog: f.NewGauge(prometheus.GaugeOpts{
			Name: "landmarket_pending_backlog",
			Help: "Listings awaiting approval longer than the stale threshold",
		}),
		AuditWriteFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "landmarket_audit_write_failures_total",
			Help: "Moderation event batches dropped after exhausting retries",
		}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "landmarket_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status"}),
	}
}

// IncrementDenial records a denied authorization decision.
func (m *Metrics) IncrementDenial(action, kind, rule string) {
	m.AuthzDenials.WithLabelValues(action, kind, rule).Inc()
}

func (m *Metrics) IncrementTransition(entity, from, to string) {
	m.Transitions.WithLabelValues(entity, from, to).Inc()
}

func (m *Metrics) IncrementListingCreated() { m.ListingsCreated.Inc() }

func (m *Metrics) IncrementInquiryCreated() { m.InquiriesCreated.Inc() }

func (m *Metrics) IncrementAuditWriteFailure() { m.AuditWriteFailures.Inc() }

func (m *Metrics) SetPendingBacklog(n int64) { m.PendingBacklog.Set(float64(n)) }

// ObserveRequest records one HTTP request. Call with time.Now() taken at
// the start of the request.
func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).
		Observe(time.Since(start).Seconds())
}
