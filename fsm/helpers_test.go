package fsm

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milk9111/statemachine/ecs"
	"github.com/milk9111/statemachine/ecs/component"
	"github.com/milk9111/statemachine/logging"
)

type Idle struct{}

type Attacking struct {
	Target string
}

type StateA struct{}
type StateB struct{}
type StateC struct{}

type fakeInput struct {
	pressed  map[string]bool
	just     map[string]bool
	released map[string]bool
	values   map[string]float64
	axes     map[string]Axis
}

func (f *fakeInput) Pressed(a string) bool      { return f.pressed[a] }
func (f *fakeInput) JustPressed(a string) bool  { return f.just[a] }
func (f *fakeInput) JustReleased(a string) bool { return f.released[a] }
func (f *fakeInput) Value(a string) float64     { return f.values[a] }
func (f *fakeInput) Axis(a string) Axis         { return f.axes[a] }

// plainWorld hides ecs.World's event queue.
type plainWorld struct{ w *ecs.World }

func (p plainWorld) GetComponent(e ecs.Entity, id component.ComponentID) (any, bool) {
	return p.w.GetComponent(e, id)
}
func (p plainWorld) HasComponent(e ecs.Entity, id component.ComponentID) bool {
	return p.w.HasComponent(e, id)
}
func (p plainWorld) AddComponent(e ecs.Entity, id component.ComponentID, v any) error {
	return p.w.AddComponent(e, id, v)
}
func (p plainWorld) RemoveComponent(e ecs.Entity, id component.ComponentID) bool {
	return p.w.RemoveComponent(e, id)
}
func (p plainWorld) EntitiesWith(id component.ComponentID) []ecs.Entity {
	return p.w.EntitiesWith(id)
}

// rejectingWorld refuses to insert one component kind.
type rejectingWorld struct {
	plainWorld
	reject component.ComponentID
}

func (r rejectingWorld) AddComponent(e ecs.Entity, id component.ComponentID, v any) error {
	if id == r.reject {
		return errors.New("insert rejected")
	}
	return r.plainWorld.AddComponent(e, id, v)
}

type harness struct {
	t      *testing.T
	world  *ecs.World
	engine *Engine
	errs   []error
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{t: t, world: ecs.NewWorld()}
	opts = append([]Option{
		WithLogger(logging.New(logging.Config{Output: io.Discard})),
		WithErrorHandler(func(err error) { h.errs = append(h.errs, err) }),
	}, opts...)
	h.engine = NewEngine(opts...)
	return h
}

func (h *harness) spawn(b *Builder) ecs.Entity {
	h.t.Helper()
	m, err := b.Build()
	require.NoError(h.t, err)
	e := h.world.CreateEntity()
	require.NoError(h.t, h.engine.Attach(h.world, e, m))
	return e
}

func (h *harness) step() {
	h.engine.Step(h.world, h.engine.NextTick(h.world))
}

func (h *harness) machine(e ecs.Entity) *StateMachine {
	h.t.Helper()
	m, ok := ecs.Get(h.world, e, MachineComponent)
	require.True(h.t, ok)
	return m
}

func (h *harness) state(e ecs.Entity) StateID {
	return h.machine(e).Current()
}

// markers counts every state marker type used in these tests.
func (h *harness) markers(e ecs.Entity) int {
	n := 0
	for _, id := range []StateID{StateOf[Idle](), StateOf[Attacking](), StateOf[StateA](), StateOf[StateB](), StateOf[StateC]()} {
		if h.world.HasComponent(e, id.Kind()) {
			n++
		}
	}
	return n
}

func (h *harness) hasDone(e ecs.Entity) bool {
	return ecs.Has(h.world, e, DoneComponent)
}
