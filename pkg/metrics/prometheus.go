// Package metrics exports engine activity as Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "portal"

// Prometheus implements core.Metrics.
type Prometheus struct {
	updatesApplied       prometheus.Counter
	notificationsEmitted *prometheus.CounterVec
	paymentsRecorded     *prometheus.CounterVec
	paymentAmount        *prometheus.CounterVec
	operationFailures    *prometheus.CounterVec
	reloads              prometheus.Counter
}

// New creates the counters and registers them with reg. A nil reg uses the
// default registerer. Registering twice on the same registry panics.
func New(namespace string, reg prometheus.Registerer) *Prometheus {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Prometheus{
		updatesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_applied_total",
			Help:      "Client record updates committed.",
		}),
		notificationsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_emitted_total",
			Help:      "Notifications created, by kind and presentation type.",
		}, []string{"kind", "type"}),
		paymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Payments recorded, by currency.",
		}, []string{"currency"}),
		paymentAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_amount_total",
			Help:      "Sum of recorded payment amounts, by currency.",
		}, []string{"currency"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Rejected or failed operations, by operation and reason.",
		}, []string{"operation", "reason"}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_set_reloads_total",
			Help:      "Reloads of the record set after an external change.",
		}),
	}

	reg.MustRegister(
		m.updatesApplied,
		m.notificationsEmitted,
		m.paymentsRecorded,
		m.paymentAmount,
		m.operationFailures,
		m.reloads,
	)
	return m
}

func (m *Prometheus) UpdateApplied() {
	m.updatesApplied.Inc()
}

func (m *Prometheus) NotificationEmitted(kind string, typ core.NotificationType) {
	m.notificationsEmitted.WithLabelValues(kind, string(typ)).Inc()
}

func (m *Prometheus) PaymentRecorded(currency string, amount float64) {
	if currency == "" {
		currency = "unknown"
	}
	m.paymentsRecorded.WithLabelValues(currency).Inc()
	if amount > 0 {
		m.paymentAmount.WithLabelValues(currency).Add(amount)
	}
}

func (m *Prometheus) OperationFailed(op, reason string) {
	m.operationFailures.WithLabelValues(op, reason).Inc()
}

func (m *Prometheus) RecordSetReloaded() {
	m.reloads.Inc()
}

// Handler serves the metrics of g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

var _ core.Metrics = (*Prometheus)(nil)
