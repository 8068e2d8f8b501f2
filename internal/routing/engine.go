package routing

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"load-router/internal/affinity"
	"load-router/internal/common/logging"
	"load-router/internal/health"
	"load-router/internal/metrics"
)

// Item is the work-item boundary: attribute storage supplied by the host
type Item interface {
	// Attribute returns the named attribute value; ok is false if absent
	Attribute(name string) (value string, ok bool)
}

// Engine is the per-item decision function. It is safe for concurrent use
// from any number of goroutines; it holds no locks beyond what the liveness
// table and affinity cache guarantee internally.
type Engine struct {
	table          *health.Table
	cache          *affinity.Cache
	strategy       Strategy
	attributeField string
	counter        atomic.Uint64
	intn           func(n int) int
	logger         logging.Logger
	rec            *metrics.Recorder
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithAttributeField sets the item attribute hashed by AttributeHash
func WithAttributeField(name string) EngineOption {
	return func(e *Engine) { e.attributeField = name }
}

// WithCounterSeed seeds the round-robin counter. The default seed is the
// process start time, so rotations are not aligned across restarts.
func WithCounterSeed(seed uint64) EngineOption {
	return func(e *Engine) { e.counter.Store(seed) }
}

// WithIntn replaces the uniform integer source, for deterministic tests
func WithIntn(intn func(n int) int) EngineOption {
	return func(e *Engine) { e.intn = intn }
}

// WithLogger sets the engine logger
func WithLogger(logger logging.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithRecorder sets the metrics recorder
func WithRecorder(rec *metrics.Recorder) EngineOption {
	return func(e *Engine) { e.rec = rec }
}

// NewEngine creates a routing engine over the given liveness table and
// affinity cache
func NewEngine(table *health.Table, cache *affinity.Cache, strategy Strategy, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		table:    table,
		cache:    cache,
		strategy: strategy,
		intn:     rand.Intn,
		logger:   logging.NewNopLogger(),
	}
	e.counter.Store(uint64(time.Now().UnixNano()))

	for _, opt := range opts {
		opt(e)
	}

	switch strategy {
	case RoundRobin, Random:
	case AttributeHash:
		if e.attributeField == "" {
			return nil, ErrMissingAttributeField
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStrategy, strategy)
	}
	return e, nil
}

// Route selects a live destination for item. It returns
// ErrNoLiveDestinations when the live set is empty and
// ErrUnknownBucketDestination when a sticky bucket points at a destination
// the liveness table has never seen.
func (e *Engine) Route(item Item) (string, error) {
	live := e.table.Live()
	e.rec.SetLive(len(live))

	if len(live) == 0 {
		e.rec.ObserveFailure(ErrNoLiveDestinations.Error())
		return "", ErrNoLiveDestinations
	}

	var (
		destination string
		err         error
	)
	switch e.strategy {
	case Random:
		destination = live[e.intn(len(live))]
	case RoundRobin:
		destination = live[e.counter.Add(1)%uint64(len(live))]
	case AttributeHash:
		destination, err = e.routeSticky(item, live)
	}
	if err != nil {
		e.rec.ObserveFailure(ErrUnknownBucketDestination.Error())
		return "", err
	}

	e.rec.ObserveRoute(e.strategy.String(), destination)
	e.logger.Debug("routed item",
		logging.String("strategy", e.strategy.String()),
		logging.String("destination", destination),
		logging.Int("live_count", len(live)),
	)
	return destination, nil
}

// routeSticky implements AttributeHash: digest the attribute value, reuse
// the bucket's destination while it stays live, otherwise re-pick randomly
// and re-point the bucket.
func (e *Engine) routeSticky(item Item, live []string) (string, error) {
	value, _ := item.Attribute(e.attributeField)
	key := affinity.Key(value)

	if sticky, ok := e.cache.Lookup(key); ok {
		alive, known := e.table.Get(sticky)
		if !known {
			return "", fmt.Errorf("%w: %q", ErrUnknownBucketDestination, sticky)
		}
		if alive {
			return sticky, nil
		}
		e.logger.Debug("sticky destination not live, re-picking",
			logging.String("sticky", sticky),
		)
	}

	fresh := live[e.intn(len(live))]
	e.cache.Assign(key, fresh)
	return fresh, nil
}
