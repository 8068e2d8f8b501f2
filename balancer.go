package loadrouter

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"load-router/internal/affinity"
	"load-router/internal/common/logging"
	"load-router/internal/config"
	"load-router/internal/health"
	"load-router/internal/metrics"
	"load-router/internal/probe"
	"load-router/internal/registry"
	"load-router/internal/routing"
)

// Balancer wires the registry, health monitor, affinity cache, eviction
// task and routing engine together behind one lifecycle. It is safe for
// concurrent use; routing never blocks on probe execution.
type Balancer struct {
	cfg      *config.Config
	table    *health.Table
	cache    *affinity.Cache
	monitor  *health.Monitor
	evictor  *affinity.Evictor
	registry *registry.Registry
	engine   *routing.Engine
	logger   logging.Logger

	stopOnce sync.Once
	stopped  atomic.Bool
}

type balancerOptions struct {
	runner      probe.Runner
	logger      logging.Logger
	registerer  prometheus.Registerer
	counterSeed *uint64
}

// Option configures a Balancer
type Option func(*balancerOptions)

// WithProbeRunner replaces the default shell probe runner. See the probe
// package for the HTTP and Redis runners, or plug your own.
func WithProbeRunner(runner probe.Runner) Option {
	return func(o *balancerOptions) { o.runner = runner }
}

// WithLogger replaces the default zap logger
func WithLogger(logger logging.Logger) Option {
	return func(o *balancerOptions) { o.logger = logger }
}

// WithMetrics registers prometheus collectors with reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *balancerOptions) { o.registerer = reg }
}

// WithRoundRobinSeed seeds the round-robin counter; the default seed is
// the process start time
func WithRoundRobinSeed(seed uint64) Option {
	return func(o *balancerOptions) { o.counterSeed = &seed }
}

// New builds a Balancer from cfg, declares every configured destination
// and starts the eviction task. Monitors start lazily, one per
// destination, as destinations are declared.
func New(cfg *config.Config, opts ...Option) (*Balancer, error) {
	if cfg == nil {
		cfg = config.Load()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o balancerOptions
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.NewZapLogger(logging.LogConfig{
			Level: logging.ParseLevel(cfg.LogLevel),
		})
		if err != nil {
			return nil, err
		}
	}

	var rec *metrics.Recorder
	if o.registerer != nil {
		var err error
		rec, err = metrics.NewRecorder(o.registerer)
		if err != nil {
			return nil, err
		}
	}

	runner := o.runner
	if runner == nil {
		runner = probe.NewCommandRunner()
	}

	strategy, err := cfg.ParsedStrategy()
	if err != nil {
		return nil, err
	}

	table := health.NewTable()
	cache := affinity.NewCache()

	monitorOpts := []health.Option{
		health.WithInterval(cfg.ProbeInterval),
		health.WithInitialDelay(cfg.ProbeInitialDelay),
		health.WithProbeTimeout(cfg.ProbeTimeout),
	}
	schedule, err := cfg.CronSchedule()
	if err != nil {
		return nil, err
	}
	if schedule != nil {
		monitorOpts = append(monitorOpts, health.WithCronSchedule(schedule))
	}
	monitor := health.NewMonitor(table, runner,
		logger.WithFields(logging.String("component", "health-monitor")), rec, monitorOpts...)

	reg := registry.New(monitor,
		logger.WithFields(logging.String("component", "registry")))

	engineOpts := []routing.EngineOption{
		routing.WithLogger(logger.WithFields(logging.String("component", "routing"))),
		routing.WithRecorder(rec),
	}
	if strategy == routing.AttributeHash {
		engineOpts = append(engineOpts, routing.WithAttributeField(cfg.AttributeHashField))
	}
	if o.counterSeed != nil {
		engineOpts = append(engineOpts, routing.WithCounterSeed(*o.counterSeed))
	}
	engine, err := routing.NewEngine(table, cache, strategy, engineOpts...)
	if err != nil {
		monitor.Stop()
		return nil, err
	}

	evictor := affinity.NewEvictor(cache, cfg.AttributeHashLifetime,
		cfg.SweepInterval, cfg.SweepInitialDelay,
		logger.WithFields(logging.String("component", "affinity-evictor")), rec)

	b := &Balancer{
		cfg:      cfg,
		table:    table,
		cache:    cache,
		monitor:  monitor,
		evictor:  evictor,
		registry: reg,
		engine:   engine,
		logger:   logger,
	}

	for name, command := range cfg.Destinations {
		if err := reg.Declare(name, command); err != nil {
			b.Stop()
			return nil, err
		}
	}

	evictor.Start()

	logger.Info("balancer started",
		logging.String("strategy", strategy.String()),
		logging.Int("destinations", len(cfg.Destinations)),
	)
	return b, nil
}

// Route selects a live destination for item. On failure the caller maps
// the error through FailureReason and hands the item to its failure sink;
// the next item re-evaluates the live set fresh.
func (b *Balancer) Route(item Item) (string, error) {
	if b.stopped.Load() {
		return "", ErrStopped
	}
	return b.engine.Route(item)
}

// Declare registers a destination dynamically. First declaration of a
// name starts its probe loop exactly once; redeclaring updates the probe
// command in place.
func (b *Balancer) Declare(name, probeCommand string) error {
	if b.stopped.Load() {
		return ErrStopped
	}
	return b.registry.Declare(name, probeCommand)
}

// Destinations returns all declared destination names, sorted
func (b *Balancer) Destinations() []string {
	return b.registry.List()
}

// Live returns the current live set, sorted. Diagnostic; the snapshot may
// be stale immediately.
func (b *Balancer) Live() []string {
	return b.table.Live()
}

// SetAttributeHashLifetimeMinutes reconfigures the affinity TTL without a
// restart; the next sweep uses the new value
func (b *Balancer) SetAttributeHashLifetimeMinutes(minutes int) {
	b.cfg.SetAttributeHashLifetimeMinutes(minutes)
}

// Stop cancels every probe loop and the eviction task and waits for them.
// Idempotent. A stopped Balancer is torn down for good; build a new one to
// restart.
func (b *Balancer) Stop() {
	b.stopOnce.Do(func() {
		b.stopped.Store(true)
		b.registry.Stop()
		b.evictor.Stop()
		b.logger.Info("balancer stopped")
	})
}
