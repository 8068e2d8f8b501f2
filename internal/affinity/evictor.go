package affinity

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"load-router/internal/common/logging"
	"load-router/internal/metrics"
)

const (
	// DefaultSweepInterval is the eviction cadence when none is configured
	DefaultSweepInterval = 5 * time.Second
	// DefaultSweepInitialDelay is the wait before the first sweep
	DefaultSweepInitialDelay = 1 * time.Second
)

// Evictor periodically sweeps a Cache, removing buckets older than the
// TTL. The TTL is read through a func on every tick so it can be
// reconfigured live without a restart.
type Evictor struct {
	cache        *Cache
	ttl          func() time.Duration
	interval     time.Duration
	initialDelay time.Duration
	logger       logging.Logger
	rec          *metrics.Recorder

	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	started   atomic.Bool
	done      chan struct{}
}

// NewEvictor creates an eviction task for cache. ttl is consulted fresh on
// every sweep.
func NewEvictor(cache *Cache, ttl func() time.Duration, interval, initialDelay time.Duration, logger logging.Logger, rec *metrics.Recorder) *Evictor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if initialDelay <= 0 {
		initialDelay = DefaultSweepInitialDelay
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Evictor{
		cache:        cache,
		ttl:          ttl,
		interval:     interval,
		initialDelay: initialDelay,
		logger:       logger,
		rec:          rec,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
}

// Start launches the sweep loop. Calling it more than once is a no-op.
func (e *Evictor) Start() {
	e.startOnce.Do(func() {
		e.started.Store(true)
		go e.run()
	})
}

// Stop cancels the sweep loop and waits for it to exit. Safe to call
// even if Start was never called, and idempotent.
func (e *Evictor) Stop() {
	e.cancel()
	if e.started.Load() {
		<-e.done
	}
}

func (e *Evictor) run() {
	defer close(e.done)

	select {
	case <-e.ctx.Done():
		return
	case <-time.After(e.initialDelay):
	}
	e.sweep()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Debug("eviction task stopped")
			return
		case <-ticker.C:
			e.sweep()
		}
	}
}

func (e *Evictor) sweep() {
	ttl := e.ttl()
	evicted := e.cache.Sweep(ttl)
	e.rec.ObserveEvictions(evicted)
	if evicted > 0 {
		e.logger.Debug("swept affinity buckets",
			logging.Int("evicted", evicted),
			logging.Duration("ttl", ttl),
		)
	}
}
