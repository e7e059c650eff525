// Package metrics exposes Prometheus instrumentation for shell sessions.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/randalmurphal/quartustcl/protocol"
	"github.com/randalmurphal/quartustcl/tcllist"
	"github.com/randalmurphal/quartustcl/transport"
)

// Request outcomes used as the "outcome" label.
const (
	OutcomeOK             = "ok"
	OutcomeEvalError      = "eval_error"
	OutcomeParseError     = "parse_error"
	OutcomeClosed         = "closed"
	OutcomeTransportError = "transport_error"
)

// Collector holds the session metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SessionsOpen    prometheus.Gauge
}

// NewCollector creates the metrics and registers them with reg. A nil reg
// leaves them unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quartustcl_requests_total",
				Help: "Total number of shell requests by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quartustcl_request_duration_seconds",
				Help:    "Shell request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"op"},
		),
		SessionsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "quartustcl_sessions_open",
				Help: "Number of open shell sessions",
			},
		),
	}
}

// Observe records one request.
func (c *Collector) Observe(op string, err error, d time.Duration) {
	if c == nil {
		return
	}
	c.RequestsTotal.WithLabelValues(op, Outcome(err)).Inc()
	c.RequestDuration.WithLabelValues(op).Observe(d.Seconds())
}

// SessionOpened increments the open session gauge.
func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.SessionsOpen.Inc()
}

// SessionClosed decrements the open session gauge.
func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.SessionsOpen.Dec()
}

// Outcome classifies err into one of the Outcome constants.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, protocol.ErrEval):
		return OutcomeEvalError
	case errors.Is(err, tcllist.ErrSyntax):
		return OutcomeParseError
	case errors.Is(err, transport.ErrClosed):
		return OutcomeClosed
	default:
		return OutcomeTransportError
	}
}
