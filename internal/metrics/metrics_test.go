package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg)
	require.NoError(t, err)

	rec.ObserveRoute("Random", "primary")
	rec.ObserveRoute("Random", "primary")
	rec.ObserveFailure("no alive destinations")
	rec.ObserveProbe("primary", true)
	rec.ObserveProbe("backup", false)
	rec.ObserveEvictions(3)
	rec.SetLive(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.routes.WithLabelValues("Random", "primary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.failures.WithLabelValues("no alive destinations")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.probes.WithLabelValues("primary", "up")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.probes.WithLabelValues("backup", "down")))
	assert.Equal(t, 3.0, testutil.ToFloat64(rec.evictions))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.liveGauge))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder

	rec.ObserveRoute("RoundRobin", "primary")
	rec.ObserveFailure("whatever")
	rec.ObserveProbe("primary", true)
	rec.ObserveEvictions(1)
	rec.SetLive(0)
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)

	_, err = NewRecorder(reg)
	assert.Error(t, err)
}
