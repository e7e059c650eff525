package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/quartustcl/protocol"
	"github.com/randalmurphal/quartustcl/tcllist"
	"github.com/randalmurphal/quartustcl/transport"
)

func TestOutcome(t *testing.T) {
	_, parseErr := tcllist.Split("broken {")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: OutcomeOK},
		{name: "eval", err: &protocol.EvalError{Message: "boom"}, want: OutcomeEvalError},
		{name: "wrapped eval", err: fmt.Errorf("call: %w", &protocol.EvalError{}), want: OutcomeEvalError},
		{name: "parse", err: parseErr, want: OutcomeParseError},
		{name: "closed", err: transport.ErrClosed, want: OutcomeClosed},
		{name: "exited", err: &transport.Error{Op: "receive", Err: transport.ErrProcessExited}, want: OutcomeTransportError},
		{name: "cancelled", err: &transport.Error{Op: "exec", Err: context.Canceled}, want: OutcomeTransportError},
		{name: "other", err: errors.New("x"), want: OutcomeTransportError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.Observe("eval", nil, 10*time.Millisecond)
	c.Observe("eval", nil, 20*time.Millisecond)
	c.Observe("eval", &protocol.EvalError{}, time.Millisecond)
	c.Observe("call", transport.ErrClosed, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("eval", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("eval", OutcomeEvalError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("call", OutcomeClosed)))
	assert.Equal(t, 2, testutil.CollectAndCount(c.RequestDuration))

	c.SessionOpened()
	c.SessionOpened()
	c.SessionClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SessionsOpen))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"quartustcl_requests_total",
		"quartustcl_request_duration_seconds",
		"quartustcl_sessions_open",
	}, names)
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.Observe("eval", nil, time.Second)
		c.SessionOpened()
		c.SessionClosed()
	})
}

func TestNewCollector_Unregistered(t *testing.T) {
	a := NewCollector(nil)
	b := NewCollector(nil)
	a.Observe("eval", nil, 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RequestsTotal.WithLabelValues("eval", OutcomeOK)))
}
