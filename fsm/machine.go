package fsm

import (
	"fmt"
	"slices"
	"time"

	"github.com/milk9111/statemachine/ecs"
	"github.com/milk9111/statemachine/ecs/component"
)

// Hook runs when an entity enters or leaves a state. It may mutate the world,
// including inserting a Done marker, but must not touch the entity's
// StateMachine or state markers.
type Hook func(w World, e ecs.Entity)

type edge struct {
	from    Matcher
	trigger Trigger
	target  Target
}

type hookEntry struct {
	kind component.ComponentID
	fn   Hook
}

// StateMachine is the per-entity transition table component. Build one with
// a Builder and hand it to Engine.Attach; each entity needs its own instance
// (see Clone).
type StateMachine struct {
	name     string
	initial  Target
	current  StateID
	edges    []edge
	known    []component.ComponentID
	progress []uint64
	onEnter  []hookEntry
	onExit   []hookEntry
	requires requirement
	logging  bool

	enteredAt time.Duration
	started   bool
}

var MachineComponent = component.NewComponent[StateMachine]()

var machineKind = MachineComponent.ID()

// Name returns the machine's name, if one was set.
func (m *StateMachine) Name() string { return m.name }

// Current returns the state the entity occupies.
func (m *StateMachine) Current() StateID { return m.current }

// Initial returns the state the machine starts in.
func (m *StateMachine) Initial() StateID { return m.initial.state }

// Len returns the number of edges.
func (m *StateMachine) Len() int { return len(m.edges) }

// Edge describes the i-th edge.
func (m *StateMachine) Edge(i int) (from Matcher, trigger Trigger, to StateID) {
	e := m.edges[i]
	return e.from, e.trigger, e.target.state
}

// EnteredAt returns the tick clock time at which the current state began.
func (m *StateMachine) EnteredAt() time.Duration { return m.enteredAt }

// Clone returns a fresh, unattached copy sharing the immutable edge data.
func (m *StateMachine) Clone() *StateMachine {
	c := *m
	c.current = StateID{}
	c.progress = make([]uint64, len(m.progress))
	c.enteredAt, c.started = 0, false
	return &c
}

// Builder assembles a StateMachine. All validation happens in Build.
type Builder struct {
	name    string
	initial Target
	edges   []edge
	onEnter []hookEntry
	onExit  []hookEntry
	logging bool
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Name labels the machine in logs and errors.
func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

// SetInitialState sets the state inserted when the machine is attached.
func (b *Builder) SetInitialState(t Target) *Builder {
	b.initial = t
	return b
}

// AddTransition appends an edge. Edges are evaluated in the order added.
func (b *Builder) AddTransition(from Matcher, trigger Trigger, to Target) *Builder {
	b.edges = append(b.edges, edge{from: from, trigger: trigger, target: to})
	return b
}

// OnEnter registers fn to run after an entity enters id.
func (b *Builder) OnEnter(id StateID, fn Hook) *Builder {
	b.onEnter = append(b.onEnter, hookEntry{kind: id.kind, fn: fn})
	return b
}

// OnExit registers fn to run before an entity leaves id.
func (b *Builder) OnExit(id StateID, fn Hook) *Builder {
	b.onExit = append(b.onExit, hookEntry{kind: id.kind, fn: fn})
	return b
}

// LogTransitions enables a debug log line per transition.
func (b *Builder) LogTransitions(on bool) *Builder {
	b.logging = on
	return b
}

// Build validates the table and returns a machine ready to attach.
func (b *Builder) Build() (*StateMachine, error) {
	fail := func(edge int, err error) (*StateMachine, error) {
		return nil, &ConfigError{Machine: b.name, Edge: edge, Err: err}
	}
	if b.initial.IsZero() {
		return fail(-1, ErrNoInitialState)
	}
	if b.initial.payload != nil {
		return fail(-1, fmt.Errorf("%w: initial state cannot take a payload", ErrPayloadMismatch))
	}

	m := &StateMachine{
		name:    b.name,
		initial: b.initial,
		edges:   make([]edge, len(b.edges)),
		onEnter: slices.Clone(b.onEnter),
		onExit:  slices.Clone(b.onExit),
		logging: b.logging,
	}

	reachable := map[component.ComponentID]bool{b.initial.state.kind: true}
	m.known = append(m.known, b.initial.state.kind)
	slots := 0
	for i, e := range b.edges {
		if err := e.trigger.validate(); err != nil {
			return fail(i, err)
		}
		if e.target.IsZero() {
			return fail(i, ErrNilTarget)
		}
		if !e.from.IsAny() && e.from.state.IsZero() {
			return fail(i, fmt.Errorf("%w: empty source matcher", ErrUnreachableState))
		}
		if err := e.target.checkPayload(&e.trigger); err != nil {
			return fail(i, err)
		}
		m.edges[i] = edge{from: e.from, target: e.target}
		m.edges[i].trigger, slots = e.trigger.bind(slots)
		m.requires |= e.trigger.requires()

		if !reachable[e.target.state.kind] {
			reachable[e.target.state.kind] = true
			m.known = append(m.known, e.target.state.kind)
		}
	}
	for i, e := range m.edges {
		if !e.from.IsAny() && !reachable[e.from.state.kind] {
			return fail(i, fmt.Errorf("%w: %s", ErrUnreachableState, e.from.state))
		}
	}
	m.progress = make([]uint64, slots)
	return m, nil
}

func (m *StateMachine) runHooks(hooks []hookEntry, kind component.ComponentID, w World, e ecs.Entity) {
	for _, h := range hooks {
		if h.kind == kind && h.fn != nil {
			h.fn(w, e)
		}
	}
}

// markers counts the known state markers present on e and whether the
// current one is among them.
func (m *StateMachine) markers(w Reader, e ecs.Entity) (count int, current bool) {
	for _, k := range m.known {
		if w.HasComponent(e, k) {
			count++
			if k == m.current.kind {
				current = true
			}
		}
	}
	return count, current
}
