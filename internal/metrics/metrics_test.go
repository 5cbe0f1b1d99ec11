package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveTransition(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveTransition("contact", "friends")
	m.ObserveTransition("contact", "friends")
	m.ObserveTransition("invitation", "accepted")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("contact", "friends")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("invitation", "accepted")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "oneonone_state_transitions_total")
}

func TestObserveTransition_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveTransition("contact", "blocked") })
}
