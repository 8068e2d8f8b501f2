package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"load-router/internal/common/errors"
	"load-router/internal/routing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "RoundRobin", cfg.Strategy)
	assert.Equal(t, 5*time.Second, cfg.ProbeInterval)
	assert.Equal(t, 1*time.Second, cfg.ProbeInitialDelay)
	assert.Equal(t, 10*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 5*time.Second, cfg.SweepInterval)
	assert.Equal(t, 60*time.Minute, cfg.AttributeHashLifetime())
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STRATEGY", "AttributeHash")
	t.Setenv("ATTRIBUTE_HASH_FIELD", "user")
	t.Setenv("ATTRIBUTE_HASH_LIFETIME_MINUTES", "5")
	t.Setenv("PROBE_INTERVAL", "250ms")
	t.Setenv("DESTINATION_primary", "curl -fs http://primary/health")
	t.Setenv("DESTINATION_backup", "curl -fs http://backup/health")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "AttributeHash", cfg.Strategy)
	assert.Equal(t, "user", cfg.AttributeHashField)
	assert.Equal(t, 5*time.Minute, cfg.AttributeHashLifetime())
	assert.Equal(t, 250*time.Millisecond, cfg.ProbeInterval)
	assert.Equal(t, map[string]string{
		"primary": "curl -fs http://primary/health",
		"backup":  "curl -fs http://backup/health",
	}, cfg.Destinations)
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	cfg := Load()
	cfg.Strategy = "LeastConnections"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestValidateRequiresAttributeField(t *testing.T) {
	cfg := Load()
	cfg.Strategy = "AttributeHash"
	cfg.AttributeHashField = ""

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNegativeLifetime(t *testing.T) {
	cfg := Load()
	cfg.SetAttributeHashLifetimeMinutes(-1)

	assert.Error(t, cfg.Validate())
}

func TestValidateProbeSchedule(t *testing.T) {
	cfg := Load()
	cfg.ProbeSchedule = "@every 30s"
	require.NoError(t, cfg.Validate())

	sched, err := cfg.CronSchedule()
	require.NoError(t, err)
	assert.NotNil(t, sched)

	cfg.ProbeSchedule = "not a cron spec"
	assert.Error(t, cfg.Validate())
}

func TestLifetimeReconfiguresLive(t *testing.T) {
	cfg := Load()
	assert.Equal(t, 60*time.Minute, cfg.AttributeHashLifetime())

	cfg.SetAttributeHashLifetimeMinutes(0)
	assert.Equal(t, time.Duration(0), cfg.AttributeHashLifetime())

	cfg.SetAttributeHashLifetimeMinutes(2)
	assert.Equal(t, 2*time.Minute, cfg.AttributeHashLifetime())
}

func TestParsedStrategy(t *testing.T) {
	cfg := Load()
	cfg.Strategy = "round_robin"

	strategy, err := cfg.ParsedStrategy()
	require.NoError(t, err)
	assert.Equal(t, routing.RoundRobin, strategy)
}
