package health

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"load-router/internal/common/errors"
	"load-router/internal/common/logging"
	"load-router/internal/metrics"
	"load-router/internal/probe"
)

const (
	// DefaultInterval is the probe cadence when none is configured
	DefaultInterval = 5 * time.Second
	// DefaultInitialDelay is the wait before a destination's first probe
	DefaultInitialDelay = 1 * time.Second
	// DefaultProbeTimeout bounds a single probe execution
	DefaultProbeTimeout = 10 * time.Second
)

// Monitor owns one periodic probe loop per watched destination. Each loop
// runs on its own goroutine so a slow or hung probe stalls only its own
// destination's schedule. Probe outcomes are written to the Table; probe
// errors degrade to liveness=false and never escape the loop.
type Monitor struct {
	table  *Table
	runner probe.Runner
	logger logging.Logger
	rec    *metrics.Recorder
	opts   options

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	mu       sync.Mutex
	watching map[string]bool
	stopped  bool
}

type options struct {
	interval     time.Duration
	initialDelay time.Duration
	timeout      time.Duration
	schedule     cron.Schedule
}

// Option configures a Monitor
type Option func(*options)

// WithInterval sets the fixed probe interval
func WithInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// WithInitialDelay sets the delay before each destination's first probe
func WithInitialDelay(d time.Duration) Option {
	return func(o *options) { o.initialDelay = d }
}

// WithProbeTimeout bounds each probe execution
func WithProbeTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithCronSchedule probes on a cron schedule instead of a fixed interval
func WithCronSchedule(schedule cron.Schedule) Option {
	return func(o *options) { o.schedule = schedule }
}

// NewMonitor creates a Monitor writing into table and probing with runner
func NewMonitor(table *Table, runner probe.Runner, logger logging.Logger, rec *metrics.Recorder, opts ...Option) *Monitor {
	o := options{
		interval:     DefaultInterval,
		initialDelay: DefaultInitialDelay,
		timeout:      DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		table:    table,
		runner:   runner,
		logger:   logger,
		rec:      rec,
		opts:     o,
		ctx:      ctx,
		cancel:   cancel,
		group:    &errgroup.Group{},
		watching: make(map[string]bool),
	}
}

// Watch starts the probe loop for a destination. The probe command is read
// through the command func on every tick, so a redeclared destination picks
// up its new command without restarting the loop. Watching the same name
// twice is an error; the caller (the registry) guards start-once semantics
// and this check backs it up.
func (m *Monitor) Watch(name string, command func() string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return errors.InternalError("monitor is stopped", nil).WithContext("destination", name)
	}
	if m.watching[name] {
		return errors.ValidationError("destination is already monitored").WithContext("destination", name)
	}
	m.watching[name] = true

	m.group.Go(func() error {
		m.loop(name, command)
		return nil
	})
	return nil
}

// Stop cancels every probe loop and waits for them to exit. It is
// idempotent and a no-op if nothing was ever watched. In-flight probe
// executions run to completion, but no result is recorded after Stop
// returns and no further tick fires.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.mu.Unlock()

	m.cancel()
	_ = m.group.Wait()
}

func (m *Monitor) loop(name string, command func() string) {
	logger := m.logger.WithFields(logging.String("destination", name))

	// Initial delay before the first probe.
	first := m.opts.initialDelay
	if m.opts.schedule != nil {
		first = time.Until(m.opts.schedule.Next(time.Now()))
	}
	select {
	case <-m.ctx.Done():
		return
	case <-time.After(first):
	}
	m.probeOnce(name, command(), logger)

	if m.opts.schedule != nil {
		m.cronLoop(name, command, logger)
		return
	}

	ticker := time.NewTicker(m.opts.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			logger.Debug("probe loop stopped")
			return
		case <-ticker.C:
			m.probeOnce(name, command(), logger)
		}
	}
}

func (m *Monitor) cronLoop(name string, command func() string, logger logging.Logger) {
	for {
		next := m.opts.schedule.Next(time.Now())
		select {
		case <-m.ctx.Done():
			logger.Debug("probe loop stopped")
			return
		case <-time.After(time.Until(next)):
			m.probeOnce(name, command(), logger)
		}
	}
}

// probeOnce executes one probe synchronously in the loop's own goroutine
// and records the outcome. Any execution failure counts as not-live.
func (m *Monitor) probeOnce(name, command string, logger logging.Logger) {
	ctx, cancel := context.WithTimeout(m.ctx, m.opts.timeout)
	defer cancel()

	start := time.Now()
	code, err := m.runner.Execute(ctx, command)
	alive := err == nil && code == 0

	if err != nil {
		logger.Warn("probe execution failed",
			logging.String("error", err.Error()),
			logging.Duration("elapsed", time.Since(start)),
		)
	} else {
		logger.Debug("probe completed",
			logging.Int("exit_code", code),
			logging.Bool("alive", alive),
			logging.Duration("elapsed", time.Since(start)),
		)
	}

	// A loop that was cancelled mid-probe must not publish a late result.
	select {
	case <-m.ctx.Done():
		return
	default:
	}

	m.table.Set(name, alive)
	m.rec.ObserveProbe(name, alive)
}
