// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collectors for the asynchronous service layer.

package control

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const subsystem = "client"

// Metrics groups the client collectors. Several clients may share one
// registry: already registered collectors are reused.
type Metrics struct {
	Dispatched     prometheus.Counter
	Completed      *prometheus.CounterVec
	Discarded      prometheus.Counter
	CancelRequests prometheus.Counter
	Renewals       *prometheus.CounterVec
	Pending        prometheus.Gauge
	Latency        prometheus.Histogram
}

// NewMetrics builds the collectors and registers them with reg when non-nil.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_dispatched_total",
			Help:      "Total number of requests handed to the transport",
		}),
		Completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_completed_total",
			Help:      "Total number of request callbacks fired, by outcome",
		}, []string{"outcome"}),
		Discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "responses_discarded_total",
			Help:      "Responses whose request id had no pending entry",
		}),
		CancelRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cancel_requests_total",
			Help:      "Cancel service requests dispatched",
		}),
		Renewals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "secure_channel_renewals_total",
			Help:      "SecureChannel renewal exchanges, by result",
		}, []string{"result"}),
		Pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_pending",
			Help:      "Requests waiting for a response",
		}),
		Latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_latency_seconds",
			Help:      "Time from dispatch to callback",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
	}
	if reg != nil {
		m.Dispatched = register(reg, m.Dispatched)
		m.Completed = register(reg, m.Completed)
		m.Discarded = register(reg, m.Discarded)
		m.CancelRequests = register(reg, m.CancelRequests)
		m.Renewals = register(reg, m.Renewals)
		m.Pending = register(reg, m.Pending)
		m.Latency = register(reg, m.Latency)
	}
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveDispatch counts a request handed to the transport.
func (m *Metrics) ObserveDispatch() {
	m.Dispatched.Inc()
	m.Pending.Inc()
}

// ObserveCompletion counts a fired callback.
func (m *Metrics) ObserveCompletion(outcome string, latency time.Duration) {
	m.Completed.WithLabelValues(outcome).Inc()
	m.Pending.Dec()
	if latency > 0 {
		m.Latency.Observe(latency.Seconds())
	}
}

// ObserveDiscard counts a response without a pending entry.
func (m *Metrics) ObserveDiscard() {
	m.Discarded.Inc()
}

// ObserveCancel counts a dispatched cancel request.
func (m *Metrics) ObserveCancel() {
	m.CancelRequests.Inc()
}

// ObserveRenewal counts a renewal result: initiated, renewed or failed.
func (m *Metrics) ObserveRenewal(result string) {
	m.Renewals.WithLabelValues(result).Inc()
}
