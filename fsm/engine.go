package fsm

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/milk9111/statemachine/ecs"
	"github.com/milk9111/statemachine/logging"
)

// EventDelivery decides how many entities may react to one event.
type EventDelivery uint8

const (
	// Broadcast lets every entity the event addresses react to it once.
	Broadcast EventDelivery = iota
	// Exclusive hands each event to the first entity whose edge fires on it.
	Exclusive
)

func (d EventDelivery) String() string {
	if d == Exclusive {
		return "exclusive"
	}
	return "broadcast"
}

// ParseEventDelivery parses "broadcast" or "exclusive".
func ParseEventDelivery(s string) (EventDelivery, error) {
	switch s {
	case "", "broadcast":
		return Broadcast, nil
	case "exclusive":
		return Exclusive, nil
	}
	return Broadcast, fmt.Errorf("fsm: unknown event delivery %q", s)
}

// DefaultTickRate is used by the scheduler systems when no rate is set.
const DefaultTickRate = 60

// Engine evaluates every attached StateMachine once per tick.
type Engine struct {
	delivery EventDelivery
	input    InputSource
	events   *ecs.EventQueue
	onError  func(error)
	logger   *bolt.Logger
	tickRate int

	clock   Tick
	current Tick
	pass    uint64
	visible int
	queue   *ecs.EventQueue

	ctx      Context
	entities []ecs.Entity
	scratch  []ecs.Entity
}

type Option func(*Engine)

// WithEventDelivery pins the event consumption policy.
func WithEventDelivery(d EventDelivery) Option {
	return func(e *Engine) { e.delivery = d }
}

// WithInputSource registers the input snapshot provider. Machines using
// input triggers cannot be attached without one.
func WithInputSource(src InputSource) Option {
	return func(e *Engine) { e.input = src }
}

// WithEventQueue makes the engine read events from q instead of the world.
func WithEventQueue(q *ecs.EventQueue) Option {
	return func(e *Engine) { e.events = q }
}

// WithErrorHandler receives invariant and transition errors. The default
// logs them.
func WithErrorHandler(fn func(error)) Option {
	return func(e *Engine) { e.onError = fn }
}

// WithLogger overrides the default logger.
func WithLogger(l *bolt.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTickRate sets the fixed rate, in ticks per second, used to advance the
// clock when the engine runs from a Scheduler.
func WithTickRate(rate int) Option {
	return func(e *Engine) { e.tickRate = rate }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{tickRate: DefaultTickRate}
	for _, opt := range opts {
		opt(e)
	}
	if e.tickRate <= 0 {
		e.tickRate = DefaultTickRate
	}
	if e.logger == nil {
		e.logger = logging.Get()
	}
	return e
}

// Delivery returns the configured event policy.
func (en *Engine) Delivery() EventDelivery { return en.delivery }

// Clock returns the last tick the engine evaluated.
func (en *Engine) Clock() Tick { return en.clock }

type eventHost interface {
	Events() *ecs.EventQueue
}

// Attach validates m against the resources this engine and w provide,
// inserts the initial state marker and stores m on e.
func (en *Engine) Attach(w World, e ecs.Entity, m *StateMachine) error {
	if m == nil {
		return &ConfigError{Edge: -1, Err: ErrNoInitialState}
	}
	if w.HasComponent(e, machineKind) {
		return &ConfigError{Machine: m.name, Edge: -1, Err: ErrAlreadyAttached}
	}
	if m.started {
		return &ConfigError{Machine: m.name, Edge: -1, Err: ErrMachineInUse}
	}
	if m.requires&needsInput != 0 && en.input == nil {
		return &ConfigError{Machine: m.name, Edge: -1, Err: fmt.Errorf("%w: input source", ErrMissingResource)}
	}
	if m.requires&needsEvents != 0 && en.events == nil {
		if h, ok := w.(eventHost); !ok || h.Events() == nil {
			return &ConfigError{Machine: m.name, Edge: -1, Err: fmt.Errorf("%w: event queue", ErrMissingResource)}
		}
	}

	marker, err := m.initial.build(nil)
	if err != nil {
		return &ConfigError{Machine: m.name, Edge: -1, Err: err}
	}
	if err := w.AddComponent(e, m.initial.state.kind, marker); err != nil {
		return fmt.Errorf("fsm: attach %s: %w", e, err)
	}
	m.current = m.initial.state
	m.enteredAt = en.clock.Elapsed
	m.started = true
	clear(m.progress)
	if err := w.AddComponent(e, machineKind, m); err != nil {
		w.RemoveComponent(e, m.initial.state.kind)
		return fmt.Errorf("fsm: attach %s: %w", e, err)
	}
	m.runHooks(m.onEnter, m.current.kind, w, e)
	return nil
}

// Detach removes the machine and its current state marker from e.
func (en *Engine) Detach(w World, e ecs.Entity) bool {
	v, ok := w.GetComponent(e, machineKind)
	if !ok {
		return false
	}
	if m, ok := v.(*StateMachine); ok {
		if !m.current.IsZero() {
			w.RemoveComponent(e, m.current.kind)
		}
		m.started = false
	}
	return w.RemoveComponent(e, machineKind)
}

// RunTransitionPass evaluates every entity that owns a StateMachine and
// applies at most one transition per entity. Done markers and events that
// exist when the pass starts are visible to it.
func (en *Engine) RunTransitionPass(w World, tick Tick) {
	en.pass++
	en.stampDone(w)
	en.queue = tick.Events
	en.visible = tick.Events.Len()

	en.current = tick
	ctx := &en.ctx
	ctx.World = w
	ctx.Tick = &en.current
	ctx.pass = en.pass
	ctx.visible = en.visible
	ctx.exclusive = en.delivery == Exclusive

	en.entities = append(en.entities[:0], w.EntitiesWith(machineKind)...)
	for _, ent := range en.entities {
		v, ok := w.GetComponent(ent, machineKind)
		if !ok {
			continue
		}
		m, ok := v.(*StateMachine)
		if !ok {
			continue
		}
		en.evaluate(w, ent, m, ctx)
	}

	ctx.World, ctx.Tick, ctx.machine = nil, nil, nil
	en.clock = tick
	en.current = Tick{}
}

func (en *Engine) evaluate(w World, ent ecs.Entity, m *StateMachine, ctx *Context) {
	if !m.started {
		m.enteredAt = ctx.Tick.Elapsed
		m.started = true
	}
	count, present := m.markers(w, ent)
	if count != 1 || !present {
		en.report(&InvariantError{Entity: ent, State: m.current, Markers: count, Present: present})
		return
	}

	ctx.Entity = ent
	ctx.machine = m
	for i := range m.edges {
		e := &m.edges[i]
		if !e.from.Matches(m.current) {
			continue
		}
		ctx.claims = ctx.claims[:0]
		out := evaluate(&e.trigger, ctx)
		if !out.ok {
			continue
		}
		en.apply(w, ent, m, e, out.payload, ctx)
		return
	}
}

// apply swaps the state marker. The new marker is inserted before the old
// one is removed so a failure never leaves the entity without a state; hooks
// only run once the insert succeeded.
func (en *Engine) apply(w World, ent ecs.Entity, m *StateMachine, e *edge, payload any, ctx *Context) {
	from, to := m.current, e.target.state
	marker, err := e.target.build(payload)
	if err != nil {
		en.report(&TransitionError{Entity: ent, From: from, To: to, Err: err})
		return
	}

	if err := w.AddComponent(ent, to.kind, marker); err != nil {
		en.report(&TransitionError{Entity: ent, From: from, To: to, Err: err})
		return
	}
	m.runHooks(m.onExit, from.kind, w, ent)
	if to.kind != from.kind {
		w.RemoveComponent(ent, from.kind)
	}

	m.current = to
	m.enteredAt = ctx.Tick.Elapsed
	clear(m.progress)
	if ctx.exclusive {
		for _, i := range ctx.claims {
			ctx.Tick.Events.Claim(i)
		}
	}

	if m.logging {
		logging.Log(en.logger.Debug(), "fsm: transition",
			logging.Entity(ent),
			logging.Machine(m.name),
			logging.FromState(from.String()),
			logging.ToState(to.String()),
			logging.Tick(ctx.Tick.Number),
		)
	}
	m.runHooks(m.onEnter, to.kind, w, ent)
}

func (en *Engine) report(err error) {
	if en.onError != nil {
		en.onError(err)
		return
	}
	logging.Log(en.logger.Error(), "fsm: entity skipped", logging.Err(err))
}

// FinishTick is the cleanup phase: it removes the Done markers and events
// the last pass could observe. Events raised during the pass survive for the
// next one.
func (en *Engine) FinishTick(w World) {
	en.RemoveDoneMarkers(w)
	if en.queue != nil {
		en.queue.DropFront(en.visible)
	}
	en.queue, en.visible = nil, 0
}

// Step runs both phases of a tick in order.
func (en *Engine) Step(w World, tick Tick) {
	en.RunTransitionPass(w, tick)
	en.FinishTick(w)
}

// NextTick advances the engine clock by one fixed step and returns the tick
// context for it, reading input and events from the configured sources.
func (en *Engine) NextTick(w World) Tick {
	delta := time.Second / time.Duration(en.tickRate)
	t := Tick{
		Number:  en.clock.Number + 1,
		Delta:   delta,
		Elapsed: en.clock.Elapsed + delta,
		Events:  en.events,
	}
	if en.input != nil {
		t.Input = en.input()
	}
	if t.Events == nil {
		if h, ok := w.(eventHost); ok {
			t.Events = h.Events()
		}
	}
	return t
}
