package ecs

import (
	"errors"
	"fmt"
	"slices"
)

// ErrScheduleCycle is returned when set ordering constraints form a cycle.
var ErrScheduleCycle = errors.New("ecs: schedule ordering cycle")

type System interface {
	Update(w *World)
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(w *World)

func (f SystemFunc) Update(w *World) {
	f(w)
}

// Set names a group of systems that are ordered together.
type Set string

// DefaultSet receives systems added without an explicit set.
const DefaultSet Set = "default"

// SetOption configures the ordering of a set.
type SetOption func(s *Scheduler, set Set)

// After orders set to run after every one of others.
func After(others ...Set) SetOption {
	return func(s *Scheduler, set Set) {
		e := s.entry(set)
		e.after = append(e.after, others...)
		for _, o := range others {
			s.entry(o)
		}
	}
}

// Before orders set to run before every one of others.
func Before(others ...Set) SetOption {
	return func(s *Scheduler, set Set) {
		for _, o := range others {
			oe := s.entry(o)
			oe.after = append(oe.after, set)
		}
		s.entry(set)
	}
}

type setEntry struct {
	systems []System
	after   []Set
}

// Scheduler runs systems grouped into sets. Sets run in an order satisfying
// every After/Before constraint; ties keep declaration order. Systems inside
// a set run in insertion order.
type Scheduler struct {
	sets    map[Set]*setEntry
	order   []Set
	sorted  []System
	dirty   bool
	lastErr error
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{sets: map[Set]*setEntry{}}
	for _, system := range systems {
		s.Add(system)
	}
	return s
}

func (s *Scheduler) entry(set Set) *setEntry {
	if e, ok := s.sets[set]; ok {
		return e
	}
	e := &setEntry{}
	s.sets[set] = e
	s.order = append(s.order, set)
	s.dirty = true
	return e
}

// Add appends a system to DefaultSet.
func (s *Scheduler) Add(system System) {
	s.AddToSet(DefaultSet, system)
}

// AddToSet appends systems to set.
func (s *Scheduler) AddToSet(set Set, systems ...System) {
	e := s.entry(set)
	for _, system := range systems {
		if system == nil {
			continue
		}
		e.systems = append(e.systems, system)
	}
	s.dirty = true
}

// Configure applies ordering options to set.
func (s *Scheduler) Configure(set Set, opts ...SetOption) {
	s.entry(set)
	for _, opt := range opts {
		opt(s, set)
	}
	s.dirty = true
}

// Build resolves the run order. It is called lazily by Update.
func (s *Scheduler) Build() error {
	if !s.dirty {
		return s.lastErr
	}
	s.dirty = false

	indeg := make(map[Set]int, len(s.order))
	next := make(map[Set][]Set, len(s.order))
	for _, set := range s.order {
		for _, dep := range s.sets[set].after {
			if dep == set {
				s.lastErr = fmt.Errorf("%w: %q runs after itself", ErrScheduleCycle, set)
				return s.lastErr
			}
			indeg[set]++
			next[dep] = append(next[dep], set)
		}
	}

	ready := make([]Set, 0, len(s.order))
	for _, set := range s.order {
		if indeg[set] == 0 {
			ready = append(ready, set)
		}
	}

	resolved := make([]Set, 0, len(s.order))
	for len(ready) > 0 {
		set := ready[0]
		ready = ready[1:]
		resolved = append(resolved, set)
		for _, n := range next[set] {
			indeg[n]--
			if indeg[n] == 0 {
				ready = append(ready, n)
				// keep declaration order among ready sets
				slices.SortStableFunc(ready, func(a, b Set) int {
					return slices.Index(s.order, a) - slices.Index(s.order, b)
				})
			}
		}
	}
	if len(resolved) != len(s.order) {
		s.lastErr = fmt.Errorf("%w: %d sets unresolved", ErrScheduleCycle, len(s.order)-len(resolved))
		return s.lastErr
	}

	s.sorted = s.sorted[:0]
	for _, set := range resolved {
		s.sorted = append(s.sorted, s.sets[set].systems...)
	}
	s.lastErr = nil
	return nil
}

// Update runs every system once in resolved order.
func (s *Scheduler) Update(w *World) error {
	if err := s.Build(); err != nil {
		return err
	}
	for _, system := range s.sorted {
		system.Update(w)
	}
	return nil
}

// Systems returns the resolved run order.
func (s *Scheduler) Systems() []System {
	if err := s.Build(); err != nil {
		return nil
	}
	systems := make([]System, 0, len(s.sorted))
	return append(systems, s.sorted...)
}
