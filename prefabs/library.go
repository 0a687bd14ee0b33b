package prefabs

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/milk9111/statemachine/fsm"
	"github.com/milk9111/statemachine/logging"
)

// ErrUnknownMachine is returned by Instantiate for names never loaded.
var ErrUnknownMachine = errors.New("prefabs: unknown machine")

type entry struct {
	spec    MachineSpec
	machine *fsm.StateMachine
	version int
}

// Library holds compiled machines by name. It is safe for concurrent use so
// a watcher goroutine can reload definitions while a game loop instantiates
// them. Machines already attached keep the version they were cloned from.
type Library struct {
	mu       sync.RWMutex
	compiler compiler
	logger   *bolt.Logger
	entries  map[string]*entry
}

type LibraryOption func(*Library)

// WithDir sets the directory whose files override the embedded definitions.
func WithDir(dir string) LibraryOption {
	return func(l *Library) { l.compiler.dir = dir }
}

func WithLogger(logger *bolt.Logger) LibraryOption {
	return func(l *Library) { l.logger = logger }
}

func NewLibrary(reg *Registry, opts ...LibraryOption) *Library {
	l := &Library{
		compiler: compiler{reg: reg},
		entries:  map[string]*entry{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logging.Get()
	}
	return l
}

// Dir returns the override directory.
func (l *Library) Dir() string { return l.compiler.dir }

// LoadAll loads every embedded definition and every definition in the
// override directory. Failures are joined; good definitions still load.
func (l *Library) LoadAll() error {
	names, err := List(l.compiler.dir)
	if err != nil {
		return fmt.Errorf("prefabs: list %s: %w", l.compiler.dir, err)
	}
	var errs []error
	for _, name := range names {
		if err := l.Load(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Load (re)compiles the machine called name. On failure the previously
// loaded version, if any, stays in place.
func (l *Library) Load(name string) error {
	name = MachineName(name)
	spec, err := LoadSpec(l.compiler.dir, name)
	if err != nil {
		return err
	}
	return l.Add(name, spec)
}

// Add compiles spec and stores it under name.
func (l *Library) Add(name string, spec MachineSpec) error {
	b, err := l.compiler.compile(spec)
	if err != nil {
		return err
	}
	m, err := b.Build()
	if err != nil {
		return fmt.Errorf("prefabs: %s: %w", name, err)
	}

	l.mu.Lock()
	e, ok := l.entries[name]
	if !ok {
		e = &entry{}
		l.entries[name] = e
	}
	e.spec, e.machine = spec, m
	e.version++
	version := e.version
	l.mu.Unlock()

	logging.Log(l.logger.Debug(), "prefabs: machine loaded",
		logging.Machine(name),
		logging.Int("version", version),
		logging.Int("edges", m.Len()),
	)
	return nil
}

// Instantiate returns a fresh copy of the named machine, ready to attach.
func (l *Library) Instantiate(name string) (*fsm.StateMachine, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownMachine, name)
	}
	return e.machine.Clone(), nil
}

// Spec returns the definition the named machine was compiled from.
func (l *Library) Spec(name string) (MachineSpec, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[name]
	if !ok {
		return MachineSpec{}, false
	}
	return e.spec, true
}

// Version counts successful loads of name.
func (l *Library) Version(name string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if e, ok := l.entries[name]; ok {
		return e.version
	}
	return 0
}

// Names returns the loaded machine names in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Sorted(maps.Keys(l.entries))
}

// Reload handles a changed file. A script change recompiles every loaded
// machine since any of them may reference it.
func (l *Library) Reload(path string) error {
	if !isScriptFile(path) {
		return l.Load(path)
	}
	var errs []error
	for _, name := range l.Names() {
		if err := l.Load(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Watch reloads definitions as w reports changes until ctx is cancelled or
// w is closed. notify, when set, is called after each reload attempt.
func (l *Library) Watch(ctx context.Context, w *Watcher, notify func(path string, err error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-w.Events:
			if !ok {
				return
			}
			err := l.Reload(path)
			if err != nil {
				logging.Log(l.logger.Error(), "prefabs: reload failed", logging.Path(path), logging.Err(err))
			} else {
				logging.Log(l.logger.Info(), "prefabs: reloaded", logging.Path(path))
			}
			if notify != nil {
				notify(path, err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logging.Log(l.logger.Warn(), "prefabs: watcher error", logging.Err(err))
		}
	}
}
