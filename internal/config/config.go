// Package config provides configuration management for the routing engine.
// It loads settings from environment variables with sensible defaults and
// validates them before the engine starts.
//
// Environment Variables:
//
//   - STRATEGY: routing strategy - RoundRobin, Random or AttributeHash
//     (default: RoundRobin)
//   - ATTRIBUTE_HASH_FIELD: item attribute hashed for sticky routing
//     (required when STRATEGY=AttributeHash)
//   - ATTRIBUTE_HASH_LIFETIME_MINUTES: affinity bucket TTL in minutes,
//     >= 0 (default: 60); reconfigurable at runtime without restart
//   - PROBE_INTERVAL: fixed probe cadence (default: 5s)
//   - PROBE_INITIAL_DELAY: wait before each destination's first probe
//     (default: 1s)
//   - PROBE_TIMEOUT: bound on one probe execution (default: 10s)
//   - PROBE_SCHEDULE: optional cron spec (e.g. "@every 30s"); overrides
//     PROBE_INTERVAL when set
//   - SWEEP_INTERVAL: affinity eviction cadence (default: 5s)
//   - SWEEP_INITIAL_DELAY: wait before the first sweep (default: 1s)
//   - LOG_LEVEL: debug, info, warn or error (default: info)
//   - DESTINATION_<NAME>: dynamic destination declaration; the value is
//     the probe command whose exit code 0 means "live"
//
// A .env file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"load-router/internal/common/errors"
	"load-router/internal/routing"
)

const (
	// DefaultAttributeHashLifetimeMinutes is the affinity TTL default
	DefaultAttributeHashLifetimeMinutes = 60

	destinationPrefix = "DESTINATION_"
)

// Config holds all configuration values for the routing engine. Build it
// with Load() or fill it directly; call Validate() before use either way.
type Config struct {
	// Strategy selects the routing algorithm
	Strategy string
	// AttributeHashField names the hashed item attribute
	AttributeHashField string
	// ProbeInterval is the fixed probe cadence
	ProbeInterval time.Duration
	// ProbeInitialDelay delays each destination's first probe
	ProbeInitialDelay time.Duration
	// ProbeTimeout bounds a single probe execution
	ProbeTimeout time.Duration
	// ProbeSchedule is an optional cron spec overriding ProbeInterval
	ProbeSchedule string
	// SweepInterval is the affinity eviction cadence
	SweepInterval time.Duration
	// SweepInitialDelay delays the first sweep
	SweepInitialDelay time.Duration
	// LogLevel is the logging verbosity
	LogLevel string
	// Destinations maps destination name to probe command
	Destinations map[string]string

	// lifetimeMinutes backs AttributeHashLifetime; atomic so the host can
	// reconfigure it while the eviction task is running.
	lifetimeMinutes atomic.Int64
	lifetimeSet     atomic.Bool
}

// Load reads configuration from the environment, after loading an optional
// .env file
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Strategy:           getEnv("STRATEGY", string(routing.DefaultStrategy)),
		AttributeHashField: os.Getenv("ATTRIBUTE_HASH_FIELD"),
		ProbeInterval:      getDurationEnv("PROBE_INTERVAL", 5*time.Second),
		ProbeInitialDelay:  getDurationEnv("PROBE_INITIAL_DELAY", 1*time.Second),
		ProbeTimeout:       getDurationEnv("PROBE_TIMEOUT", 10*time.Second),
		ProbeSchedule:      os.Getenv("PROBE_SCHEDULE"),
		SweepInterval:      getDurationEnv("SWEEP_INTERVAL", 5*time.Second),
		SweepInitialDelay:  getDurationEnv("SWEEP_INITIAL_DELAY", 1*time.Second),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Destinations:       loadDestinations(),
	}
	cfg.SetAttributeHashLifetimeMinutes(getIntEnv("ATTRIBUTE_HASH_LIFETIME_MINUTES", DefaultAttributeHashLifetimeMinutes))
	return cfg
}

// loadDestinations scans the environment for DESTINATION_* declarations.
// The destination name is everything after the prefix, kept case-sensitive
// as declared.
func loadDestinations() map[string]string {
	dests := make(map[string]string)
	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, destinationPrefix) {
			continue
		}
		name := strings.TrimPrefix(key, destinationPrefix)
		if name == "" || value == "" {
			continue
		}
		dests[name] = value
	}
	return dests
}

// AttributeHashLifetime returns the current affinity TTL. The eviction
// task reads this on every sweep, so SetAttributeHashLifetimeMinutes takes
// effect without a restart.
func (c *Config) AttributeHashLifetime() time.Duration {
	if !c.lifetimeSet.Load() {
		return DefaultAttributeHashLifetimeMinutes * time.Minute
	}
	return time.Duration(c.lifetimeMinutes.Load()) * time.Minute
}

// SetAttributeHashLifetimeMinutes reconfigures the affinity TTL at runtime
func (c *Config) SetAttributeHashLifetimeMinutes(minutes int) {
	c.lifetimeMinutes.Store(int64(minutes))
	c.lifetimeSet.Store(true)
}

// Validate checks that the configuration can drive the engine safely
func (c *Config) Validate() error {
	strategy, err := routing.ParseStrategy(c.Strategy)
	if err != nil {
		return errors.ConfigError("invalid strategy").WithContext("strategy", c.Strategy)
	}

	if strategy == routing.AttributeHash && c.AttributeHashField == "" {
		return errors.ConfigError("ATTRIBUTE_HASH_FIELD is required when STRATEGY=AttributeHash")
	}

	if c.lifetimeSet.Load() && c.lifetimeMinutes.Load() < 0 {
		return errors.ConfigError("ATTRIBUTE_HASH_LIFETIME_MINUTES must be >= 0")
	}

	if c.ProbeInterval <= 0 {
		return errors.ConfigError("PROBE_INTERVAL must be positive")
	}
	if c.ProbeInitialDelay < 0 {
		return errors.ConfigError("PROBE_INITIAL_DELAY must not be negative")
	}
	if c.SweepInterval <= 0 {
		return errors.ConfigError("SWEEP_INTERVAL must be positive")
	}

	if c.ProbeSchedule != "" {
		if _, err := cron.ParseStandard(c.ProbeSchedule); err != nil {
			return errors.ConfigError("invalid PROBE_SCHEDULE cron spec").
				WithContext("schedule", c.ProbeSchedule).
				WithContext("error", err.Error())
		}
	}

	for name, command := range c.Destinations {
		if command == "" {
			return errors.ConfigError(fmt.Sprintf("destination %q has an empty probe command", name))
		}
	}
	return nil
}

// ParsedStrategy returns the validated Strategy value
func (c *Config) ParsedStrategy() (routing.Strategy, error) {
	return routing.ParseStrategy(c.Strategy)
}

// CronSchedule parses ProbeSchedule; it returns nil when none is set
func (c *Config) CronSchedule() (cron.Schedule, error) {
	if c.ProbeSchedule == "" {
		return nil, nil
	}
	return cron.ParseStandard(c.ProbeSchedule)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
