// Package registry holds the authoritative set of configured destinations
// and starts exactly one health-monitor loop per destination.
package registry

import (
	"sort"
	"sync"

	"load-router/internal/common/errors"
	"load-router/internal/common/logging"
)

// Watcher is the monitor-facing contract: start one probe loop for a
// destination, reading the probe command fresh through the func.
type Watcher interface {
	Watch(name string, command func() string) error
	Stop()
}

// destination is one registered target. The command is mutable: a
// redeclaration swaps it in place and the running probe loop reads the new
// value on its next tick.
type destination struct {
	mu      sync.RWMutex
	command string
}

func (d *destination) probeCommand() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.command
}

func (d *destination) setCommand(command string) {
	d.mu.Lock()
	d.command = command
	d.mu.Unlock()
}

// Registry maps destination names to probe commands. Destinations are
// never removed at runtime; there is no un-declare path.
type Registry struct {
	watcher Watcher
	logger  logging.Logger

	mu      sync.Mutex
	dests   map[string]*destination
	stopped bool
}

// New creates a Registry that starts monitors through watcher
func New(watcher Watcher, logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Registry{
		watcher: watcher,
		logger:  logger,
		dests:   make(map[string]*destination),
	}
}

// Declare registers a destination idempotently. The first declaration of a
// name starts its monitor exactly once, even under concurrent declarations;
// a later declaration of the same name only updates the probe command.
func (r *Registry) Declare(name, probeCommand string) error {
	if name == "" {
		return errors.ValidationError("destination name must not be empty")
	}
	if probeCommand == "" {
		return errors.ValidationError("probe command must not be empty").WithContext("destination", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return errors.InternalError("registry is stopped", nil).WithContext("destination", name)
	}

	if d, ok := r.dests[name]; ok {
		d.setCommand(probeCommand)
		r.logger.Info("destination probe command updated",
			logging.String("destination", name),
		)
		return nil
	}

	d := &destination{command: probeCommand}
	r.dests[name] = d

	// Held lock guarantees a single Watch per name; roll back on failure
	// so a later Declare can retry.
	if err := r.watcher.Watch(name, d.probeCommand); err != nil {
		delete(r.dests, name)
		return errors.InternalError("failed to start health monitor", err).WithContext("destination", name)
	}

	r.logger.Info("destination declared",
		logging.String("destination", name),
	)
	return nil
}

// List returns the registered destination names, sorted
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.dests))
	for name := range r.dests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProbeCommand returns the current probe command for a destination
func (r *Registry) ProbeCommand(name string) (string, error) {
	r.mu.Lock()
	d, ok := r.dests[name]
	r.mu.Unlock()

	if !ok {
		return "", errors.NotFoundError("destination").WithContext("destination", name)
	}
	return d.probeCommand(), nil
}

// Stop tears the registry down: all monitors are cancelled and no further
// declarations are accepted. Idempotent. A stopped registry is not
// restartable; build a fresh one instead.
func (r *Registry) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	r.watcher.Stop()
}
