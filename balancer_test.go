package loadrouter

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"load-router/internal/common/logging"
	"load-router/internal/config"
	"load-router/internal/probe"
)

// fastConfig returns a config with millisecond cadences for tests.
func fastConfig(strategy string, destinations map[string]string) *config.Config {
	cfg := &config.Config{
		Strategy:          strategy,
		ProbeInterval:     10 * time.Millisecond,
		ProbeInitialDelay: time.Millisecond,
		ProbeTimeout:      time.Second,
		SweepInterval:     10 * time.Millisecond,
		SweepInitialDelay: time.Millisecond,
		LogLevel:          "error",
		Destinations:      destinations,
	}
	cfg.SetAttributeHashLifetimeMinutes(60)
	return cfg
}

// exitCodeRunner maps probe commands to fixed exit codes; unknown
// commands probe dead.
func exitCodeRunner(codes map[string]int) probe.Runner {
	return probe.RunnerFunc(func(_ context.Context, command string) (int, error) {
		if code, ok := codes[command]; ok {
			return code, nil
		}
		return 1, nil
	})
}

func waitLive(t *testing.T, b *Balancer, want []string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(want, b.Live())
	}, 2*time.Second, 5*time.Millisecond, "live set never became %v", want)
}

func TestRandomRoutesOnlyToLiveDestination(t *testing.T) {
	b, err := New(
		fastConfig("Random", map[string]string{"A": "check A", "B": "check B"}),
		WithProbeRunner(exitCodeRunner(map[string]int{"check A": 0, "check B": 1})),
		WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	defer b.Stop()

	waitLive(t, b, []string{"A"})

	for i := 0; i < 100; i++ {
		dest, err := b.Route(MapItem{})
		require.NoError(t, err)
		assert.Equal(t, "A", dest)
	}
}

func TestRoundRobinSequence(t *testing.T) {
	b, err := New(
		fastConfig("RoundRobin", map[string]string{"A": "ok", "B": "ok", "C": "ok"}),
		WithProbeRunner(exitCodeRunner(map[string]int{"ok": 0})),
		WithLogger(logging.NewNopLogger()),
		WithRoundRobinSeed(0),
	)
	require.NoError(t, err)
	defer b.Stop()

	waitLive(t, b, []string{"A", "B", "C"})

	var got []string
	for i := 0; i < 4; i++ {
		dest, err := b.Route(MapItem{})
		require.NoError(t, err)
		got = append(got, dest)
	}
	assert.Equal(t, []string{"B", "C", "A", "B"}, got)
}

func TestNoLiveDestinationsOutcome(t *testing.T) {
	b, err := New(
		fastConfig("Random", map[string]string{"A": "dead"}),
		WithProbeRunner(exitCodeRunner(nil)),
		WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	defer b.Stop()

	_, err = b.Route(MapItem{})
	require.ErrorIs(t, err, ErrNoLiveDestinations)
	assert.Equal(t, "no alive destinations", FailureReason(err))
}

func TestAttributeHashStickiness(t *testing.T) {
	cfg := fastConfig("AttributeHash", map[string]string{"A": "ok", "B": "ok"})
	cfg.AttributeHashField = "user"

	b, err := New(cfg,
		WithProbeRunner(exitCodeRunner(map[string]int{"ok": 0})),
		WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	defer b.Stop()

	waitLive(t, b, []string{"A", "B"})

	first, err := b.Route(MapItem{"user": "alice"})
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond) // across at least one sweep tick
	second, err := b.Route(MapItem{"user": "alice"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDynamicDeclaration(t *testing.T) {
	b, err := New(
		fastConfig("Random", map[string]string{"A": "ok"}),
		WithProbeRunner(exitCodeRunner(map[string]int{"ok": 0})),
		WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	defer b.Stop()

	waitLive(t, b, []string{"A"})

	require.NoError(t, b.Declare("B", "ok"))
	assert.Equal(t, []string{"A", "B"}, b.Destinations())
	waitLive(t, b, []string{"A", "B"})

	// Redeclaration updates the command without a duplicate monitor.
	require.NoError(t, b.Declare("B", "dead"))
	waitLive(t, b, []string{"A"})
}

func TestStopIsFinal(t *testing.T) {
	b, err := New(
		fastConfig("Random", map[string]string{"A": "ok"}),
		WithProbeRunner(exitCodeRunner(map[string]int{"ok": 0})),
		WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)

	b.Stop()
	b.Stop()

	_, err = b.Route(MapItem{})
	assert.ErrorIs(t, err, ErrStopped)
	assert.ErrorIs(t, b.Declare("B", "ok"), ErrStopped)
}

func TestMetricsRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	b, err := New(
		fastConfig("Random", map[string]string{"A": "ok"}),
		WithProbeRunner(exitCodeRunner(map[string]int{"ok": 0})),
		WithLogger(logging.NewNopLogger()),
		WithMetrics(reg),
	)
	require.NoError(t, err)
	defer b.Stop()

	waitLive(t, b, []string{"A"})
	_, err = b.Route(MapItem{})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["loadrouter_routed_items_total"])
	assert.True(t, names["loadrouter_probe_results_total"])
}

func TestInvalidConfigRejected(t *testing.T) {
	cfg := fastConfig("AttributeHash", nil)
	// Missing ATTRIBUTE_HASH_FIELD.
	_, err := New(cfg, WithLogger(logging.NewNopLogger()))
	assert.Error(t, err)
}
