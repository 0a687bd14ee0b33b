package fsm

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/statemachine/ecs"
	"github.com/milk9111/statemachine/ecs/component"
)

func fighter() *Builder {
	return NewBuilder().
		Name("fighter").
		SetInitialState(To(Idle{})).
		AddTransition(From[Idle](), OnEvent("attack"), To(Attacking{})).
		AddTransition(AnyState, OnDone(), To(Idle{}))
}

func TestIdleAttackDoneScenario(t *testing.T) {
	h := newHarness(t)
	e := h.spawn(fighter())
	require.Equal(t, StateOf[Idle](), h.state(e))

	h.world.Events().Emit("attack", nil)
	h.step()
	assert.Equal(t, StateOf[Attacking](), h.state(e))
	assert.True(t, ecs.Has(h.world, e, component.NewComponent[Attacking]()))
	assert.False(t, ecs.Has(h.world, e, component.NewComponent[Idle]()))

	for i := 0; i < 3; i++ {
		h.step()
		assert.Equal(t, StateOf[Attacking](), h.state(e), "attack event must not fire again")
	}

	require.NoError(t, MarkDone(h.world, e, DoneSuccess, nil))
	h.step()
	assert.Equal(t, StateOf[Idle](), h.state(e))
	assert.False(t, h.hasDone(e))
	assert.Equal(t, 1, h.markers(e))
	assert.Empty(t, h.errs)
}

func TestExactlyOneMarkerAfterEveryPass(t *testing.T) {
	h := newHarness(t)
	b := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), Always(), To(StateB{})).
		AddTransition(From[StateB](), OnEvent("c"), To(StateC{})).
		AddTransition(AnyState, OnDone(), To(StateA{})).
		AddTransition(From[StateC](), Always(), To(StateC{}))
	ents := []ecs.Entity{h.spawn(b), h.spawn(b), h.spawn(b)}

	for tick := 0; tick < 8; tick++ {
		switch tick {
		case 2:
			h.world.Events().EmitTo(ents[1], "c", nil)
		case 4:
			require.NoError(t, MarkDone(h.world, ents[0], DoneFailure, nil))
		}
		h.step()
		for _, e := range ents {
			assert.Equal(t, 1, h.markers(e), "tick %d entity %s", tick, e)
		}
	}
	assert.Empty(t, h.errs)
}

func TestEdgeOrderDecidesPrecedence(t *testing.T) {
	h := newHarness(t)
	var enteredC bool
	b := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), Always(), To(StateB{})).
		AddTransition(From[StateA](), Always(), To(StateC{})).
		OnEnter(StateOf[StateC](), func(World, ecs.Entity) { enteredC = true })
	e := h.spawn(b)

	h.step()
	assert.Equal(t, StateOf[StateB](), h.state(e))
	assert.False(t, enteredC)
	assert.False(t, h.world.HasComponent(e, StateOf[StateC]().Kind()))
}

func TestLaterEdgesAreNotEvaluatedAfterAMatch(t *testing.T) {
	h := newHarness(t)
	evaluated := 0
	b := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(AnyState, Always(), To(StateB{})).
		AddTransition(From[StateA](), Cond(func(*Context) bool { evaluated++; return true }), To(StateC{}))
	h.spawn(b)
	h.step()
	assert.Zero(t, evaluated)
}

func TestWildcardMatchesEveryState(t *testing.T) {
	h := newHarness(t)
	edges := func(initial Target) *Builder {
		return NewBuilder().
			SetInitialState(initial).
			AddTransition(AnyState, OnEvent("go"), To(StateC{}))
	}
	a := h.spawn(edges(To(StateA{})))
	b := h.spawn(edges(To(StateB{})))

	h.step()
	assert.Equal(t, StateOf[StateA](), h.state(a))
	assert.Equal(t, StateOf[StateB](), h.state(b))

	h.world.Events().Emit("go", nil)
	h.step()
	assert.Equal(t, StateOf[StateC](), h.state(a))
	assert.Equal(t, StateOf[StateC](), h.state(b))
	assert.Equal(t, 1, h.markers(a))
	assert.Equal(t, 1, h.markers(b))
}

func TestAlwaysFiresEveryTickNeverNeverFires(t *testing.T) {
	h := newHarness(t)
	entries := 0
	b := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), Never(), To(StateB{})).
		AddTransition(From[StateA](), Always(), To(StateA{})).
		OnEnter(StateOf[StateA](), func(World, ecs.Entity) { entries++ })
	e := h.spawn(b)
	require.Equal(t, 1, entries, "attach enters the initial state")

	for i := 0; i < 5; i++ {
		h.step()
	}
	assert.Equal(t, 6, entries)
	assert.Equal(t, StateOf[StateA](), h.state(e))
	assert.False(t, h.world.HasComponent(e, StateOf[StateB]().Kind()))
}

func TestDoneRoundTripWithoutTransition(t *testing.T) {
	h := newHarness(t)
	var sawDone Done
	seen := false
	b := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), All(
			OnDone(),
			Func(func(ctx *Context) Outcome {
				seen = true
				d, _ := Get[Done](ctx)
				sawDone = *d
				return Satisfied()
			}),
			Never(),
		), To(StateB{}))
	e := h.spawn(b)

	require.NoError(t, MarkDone(h.world, e, DoneSuccess, 42))
	h.step()

	assert.True(t, seen, "done must be visible during evaluation")
	assert.Equal(t, DoneSuccess, sawDone.Status)
	assert.Equal(t, 42, sawDone.Value)
	assert.False(t, h.hasDone(e), "marker must be gone after the tick")
	assert.Equal(t, StateOf[StateA](), h.state(e))

	seen = false
	h.step()
	assert.False(t, seen, "a consumed marker cannot fire twice")
}

func TestDoneStatusFilter(t *testing.T) {
	h := newHarness(t)
	b := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), OnDoneStatus(DoneFailure), To(StateB{})).
		AddTransition(From[StateA](), OnDoneStatus(DoneSuccess), To(StateC{}))
	e := h.spawn(b)

	require.NoError(t, MarkDone(h.world, e, DoneSuccess, nil))
	h.step()
	assert.Equal(t, StateOf[StateC](), h.state(e))
}

func TestDonePayloadParameterizesTarget(t *testing.T) {
	h := newHarness(t)
	b := NewBuilder().
		SetInitialState(To(Idle{})).
		AddTransition(From[Idle](), OnDone(), ToWith(func(d Done) Attacking {
			s, _ := d.Value.(string)
			return Attacking{Target: s}
		}))
	e := h.spawn(b)

	require.NoError(t, MarkDone(h.world, e, DoneSuccess, "goblin"))
	h.step()
	got, ok := ecs.Get(h.world, e, component.NewComponent[Attacking]())
	require.True(t, ok)
	assert.Equal(t, "goblin", got.Target)
}

func TestDoneInsertedDuringPassWaitsForNextTick(t *testing.T) {
	h := newHarness(t)
	b := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), Always(), To(StateB{})).
		AddTransition(From[StateB](), OnDone(), To(StateC{})).
		OnEnter(StateOf[StateB](), func(w World, e ecs.Entity) {
			_ = MarkDone(w, e, DoneSuccess, nil)
		})
	e := h.spawn(b)

	h.step()
	assert.Equal(t, StateOf[StateB](), h.state(e))
	assert.True(t, h.hasDone(e), "same-pass marker survives this tick's cleanup")

	h.step()
	assert.Equal(t, StateOf[StateC](), h.state(e))
	assert.False(t, h.hasDone(e))
}

func TestDoneInsertedOnOtherEntityDuringPassIsNotObserved(t *testing.T) {
	h := newHarness(t)
	var other ecs.Entity
	watcher := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), OnDone(), To(StateB{}))
	poker := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), Always(), To(StateC{})).
		OnEnter(StateOf[StateC](), func(w World, _ ecs.Entity) { _ = MarkDone(w, other, DoneSuccess, nil) })

	h.spawn(poker)
	other = h.spawn(watcher)

	h.step()
	assert.Equal(t, StateOf[StateA](), h.state(other), "marker inserted mid-pass is deferred")
	h.step()
	assert.Equal(t, StateOf[StateB](), h.state(other))
}

func TestNoSatisfiedEdgeLeavesMachineUnchanged(t *testing.T) {
	h := newHarness(t)
	b := NewBuilder().
		SetInitialState(To(Attacking{Target: "x"})).
		AddTransition(From[Attacking](), Never(), To(Idle{})).
		AddTransition(From[Attacking](), OnEvent("nope"), To(Idle{})).
		AddTransition(From[Idle](), Always(), To(Attacking{}))
	e := h.spawn(b)
	m := h.machine(e)

	before := struct {
		current   StateID
		enteredAt time.Duration
		progress  []uint64
		edges     *edge
		n         int
	}{m.current, m.enteredAt, slices.Clone(m.progress), &m.edges[0], len(m.edges)}
	marker, _ := ecs.Get(h.world, e, component.NewComponent[Attacking]())

	for i := 0; i < 3; i++ {
		h.step()
	}

	assert.Equal(t, before.current, m.current)
	assert.Equal(t, before.enteredAt, m.enteredAt)
	assert.Equal(t, before.progress, m.progress)
	assert.Same(t, before.edges, &m.edges[0])
	assert.Equal(t, before.n, len(m.edges))
	after, _ := ecs.Get(h.world, e, component.NewComponent[Attacking]())
	assert.Same(t, marker, after)
	assert.Equal(t, "x", after.Target)
}

func TestEventPayloadParameterizesTarget(t *testing.T) {
	h := newHarness(t)
	b := NewBuilder().
		SetInitialState(To(Idle{})).
		AddTransition(From[Idle](), OnEventOf[string]("attack"), ToWith(func(target string) Attacking {
			return Attacking{Target: target}
		}))
	e := h.spawn(b)

	h.world.Events().Emit("attack", "orc")
	h.step()
	got, ok := ecs.Get(h.world, e, component.NewComponent[Attacking]())
	require.True(t, ok)
	assert.Equal(t, "orc", got.Target)
}

func TestRuntimePayloadMismatchKeepsState(t *testing.T) {
	h := newHarness(t)
	b := NewBuilder().
		SetInitialState(To(Idle{})).
		AddTransition(From[Idle](), OnEvent("attack"), ToWith(func(n int) Attacking {
			return Attacking{}
		}))
	e := h.spawn(b)

	h.world.Events().Emit("attack", "not an int")
	h.step()

	assert.Equal(t, StateOf[Idle](), h.state(e))
	assert.Equal(t, 1, h.markers(e))
	require.Len(t, h.errs, 1)
	var te *TransitionError
	require.ErrorAs(t, h.errs[0], &te)
	assert.ErrorIs(t, te, ErrPayloadMismatch)
	assert.Equal(t, e, te.Entity)
}

func TestInvariantViolationSkipsEntity(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(h *harness, e ecs.Entity)
		markers int
		present bool
	}{
		{
			name: "missing_marker",
			corrupt: func(h *harness, e ecs.Entity) {
				h.world.RemoveComponent(e, StateOf[StateA]().Kind())
			},
			markers: 0,
		},
		{
			name: "duplicate_marker",
			corrupt: func(h *harness, e ecs.Entity) {
				require.NoError(t, ecs.Add(h.world, e, component.NewComponent[StateB](), StateB{}))
			},
			markers: 2,
			present: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			b := NewBuilder().
				SetInitialState(To(StateA{})).
				AddTransition(From[StateA](), Always(), To(StateB{})).
				AddTransition(From[StateB](), Always(), To(StateC{}))
			bad := h.spawn(b)
			good := h.spawn(b)
			tc.corrupt(h, bad)

			require.NotPanics(t, h.step)

			assert.Equal(t, StateOf[StateA](), h.state(bad))
			assert.Equal(t, StateOf[StateB](), h.state(good), "other entities still evaluate")
			require.Len(t, h.errs, 1)
			var ie *InvariantError
			require.ErrorAs(t, h.errs[0], &ie)
			assert.ErrorIs(t, ie, ErrMarkerInvariant)
			assert.Equal(t, bad, ie.Entity)
			assert.Equal(t, tc.markers, ie.Markers)
			assert.Equal(t, tc.present, ie.Present)
		})
	}
}

func TestThenRequiresEarlierTick(t *testing.T) {
	h := newHarness(t)
	b := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), Then(OnEvent("a"), OnEvent("b")), To(StateB{})).
		AddTransition(From[StateB](), OnEvent("reset"), To(StateA{}))
	e := h.spawn(b)

	h.world.Events().Emit("b", nil)
	h.step()
	assert.Equal(t, StateOf[StateA](), h.state(e), "second alone does nothing")

	h.world.Events().Emit("a", nil)
	h.world.Events().Emit("b", nil)
	h.step()
	assert.Equal(t, StateOf[StateA](), h.state(e), "first and second in one tick only arms")

	h.step()
	assert.Equal(t, StateOf[StateA](), h.state(e))

	h.world.Events().Emit("b", nil)
	h.step()
	assert.Equal(t, StateOf[StateB](), h.state(e))

	// progress resets when the state changes
	h.world.Events().Emit("reset", nil)
	h.step()
	require.Equal(t, StateOf[StateA](), h.state(e))
	h.world.Events().Emit("b", nil)
	h.step()
	assert.Equal(t, StateOf[StateA](), h.state(e))
}

func TestThenWithUnnumberedHostTicks(t *testing.T) {
	h := newHarness(t)
	e := h.spawn(NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), Then(Always(), Always()), To(StateB{})))

	tick := Tick{Delta: time.Second / 60}
	h.engine.Step(h.world, tick)
	assert.Equal(t, StateOf[StateA](), h.state(e), "first pass only arms")
	h.engine.Step(h.world, tick)
	assert.Equal(t, StateOf[StateB](), h.state(e))
}

func TestThenProgressIsPerEntity(t *testing.T) {
	h := newHarness(t)
	m, err := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), Then(OnEvent("a"), Always()), To(StateB{})).
		Build()
	require.NoError(t, err)

	e1, e2 := h.world.CreateEntity(), h.world.CreateEntity()
	require.NoError(t, h.engine.Attach(h.world, e1, m.Clone()))
	require.NoError(t, h.engine.Attach(h.world, e2, m.Clone()))

	h.world.Events().EmitTo(e1, "a", nil)
	h.step()
	h.step()
	assert.Equal(t, StateOf[StateB](), h.state(e1))
	assert.Equal(t, StateOf[StateA](), h.state(e2))
}

func TestEventDelivery(t *testing.T) {
	tests := []struct {
		name     string
		delivery EventDelivery
		want     int
	}{
		{"broadcast", Broadcast, 3},
		{"exclusive", Exclusive, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, WithEventDelivery(tc.delivery))
			ents := []ecs.Entity{h.spawn(fighter()), h.spawn(fighter()), h.spawn(fighter())}

			h.world.Events().Emit("attack", nil)
			h.step()

			attacking := 0
			for _, e := range ents {
				if h.state(e) == StateOf[Attacking]() {
					attacking++
				}
			}
			assert.Equal(t, tc.want, attacking)
		})
	}
}

func TestExclusiveClaimIsDroppedWhenEdgeFails(t *testing.T) {
	h := newHarness(t, WithEventDelivery(Exclusive))
	picky := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), All(OnEvent("x"), Never()), To(StateB{}))
	eager := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), OnEvent("x"), To(StateB{}))
	p := h.spawn(picky)
	e := h.spawn(eager)

	h.world.Events().Emit("x", nil)
	h.step()
	assert.Equal(t, StateOf[StateA](), h.state(p))
	assert.Equal(t, StateOf[StateB](), h.state(e))
}

func TestTargetedEvent(t *testing.T) {
	h := newHarness(t)
	e1, e2 := h.spawn(fighter()), h.spawn(fighter())

	h.world.Events().EmitTo(e2, "attack", nil)
	h.step()
	assert.Equal(t, StateOf[Idle](), h.state(e1))
	assert.Equal(t, StateOf[Attacking](), h.state(e2))
}

func TestEventsRaisedDuringPassAreSeenNextTick(t *testing.T) {
	h := newHarness(t)
	b := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), Always(), To(StateB{})).
		AddTransition(From[StateB](), OnEvent("echo"), To(StateC{})).
		OnEnter(StateOf[StateB](), func(World, ecs.Entity) { h.world.Events().Emit("echo", nil) })
	e := h.spawn(b)

	h.step()
	assert.Equal(t, StateOf[StateB](), h.state(e))
	assert.Equal(t, 1, h.world.Events().Len())
	h.step()
	assert.Equal(t, StateOf[StateC](), h.state(e))
	assert.Zero(t, h.world.Events().Len())
}

func TestAfterUsesStateTime(t *testing.T) {
	h := newHarness(t, WithTickRate(10))
	b := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), After(250*time.Millisecond), To(StateB{})).
		AddTransition(From[StateB](), After(100*time.Millisecond), To(StateC{}))
	e := h.spawn(b)

	h.step()
	h.step()
	assert.Equal(t, StateOf[StateA](), h.state(e))
	h.step()
	assert.Equal(t, StateOf[StateB](), h.state(e))
	assert.Equal(t, 300*time.Millisecond, h.machine(e).EnteredAt())
	h.step()
	assert.Equal(t, StateOf[StateC](), h.state(e))
}

func TestExitAndEnterHooksOrder(t *testing.T) {
	h := newHarness(t)
	var calls []string
	b := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), Always(), To(StateB{})).
		OnExit(StateOf[StateA](), func(w World, e ecs.Entity) {
			calls = append(calls, "exit A")
			assert.True(t, w.HasComponent(e, StateOf[StateA]().Kind()), "exit runs before the old marker is removed")
		}).
		OnEnter(StateOf[StateB](), func(w World, e ecs.Entity) {
			calls = append(calls, "enter B")
			assert.False(t, w.HasComponent(e, StateOf[StateA]().Kind()))
		})
	h.spawn(b)
	h.step()
	assert.Equal(t, []string{"exit A", "enter B"}, calls)
}

func TestFailedInsertSkipsHooks(t *testing.T) {
	h := newHarness(t)
	var calls []string
	e := h.spawn(NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), Always(), To(StateB{})).
		OnExit(StateOf[StateA](), func(World, ecs.Entity) { calls = append(calls, "exit A") }).
		OnEnter(StateOf[StateB](), func(World, ecs.Entity) { calls = append(calls, "enter B") }))

	w := rejectingWorld{plainWorld: plainWorld{h.world}, reject: StateOf[StateB]().Kind()}
	h.engine.Step(w, h.engine.NextTick(h.world))

	assert.Empty(t, calls)
	assert.Equal(t, StateOf[StateA](), h.state(e))
	assert.Equal(t, 1, h.markers(e))
	require.Len(t, h.errs, 1)
	var te *TransitionError
	require.ErrorAs(t, h.errs[0], &te)
	assert.Equal(t, StateOf[StateB](), te.To)
}

func TestMissingInputDegrades(t *testing.T) {
	h := newHarness(t, WithInputSource(func() InputSnapshot { return nil }))
	b := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), Not(Pressed("jump")).And(Never()), To(StateC{})).
		AddTransition(From[StateA](), Pressed("jump"), To(StateB{}))
	e := h.spawn(b)

	require.NotPanics(t, h.step)
	assert.Equal(t, StateOf[StateA](), h.state(e))
}

func TestInputTriggers(t *testing.T) {
	in := &fakeInput{
		pressed: map[string]bool{"block": true},
		values:  map[string]float64{"throttle": 0.7},
	}
	h := newHarness(t, WithInputSource(func() InputSnapshot { return in }))
	b := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), JustPressed("jump"), To(StateC{})).
		AddTransition(From[StateA](), Pressed("block").And(Value("throttle", 0.5, 1)), ToWith(func(v float64) StateB {
			return StateB{}
		}))
	e := h.spawn(b)

	h.step()
	assert.Equal(t, StateOf[StateB](), h.state(e))
}

func TestAttachErrors(t *testing.T) {
	needsInput, err := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), Pressed("jump"), To(StateB{})).
		Build()
	require.NoError(t, err)
	needsEvents, err := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), AnyOf(Never(), OnEvent("x")), To(StateB{})).
		Build()
	require.NoError(t, err)

	h := newHarness(t)
	e := h.world.CreateEntity()
	err = h.engine.Attach(h.world, e, needsInput)
	assert.ErrorIs(t, err, ErrMissingResource)
	assert.False(t, h.world.HasComponent(e, StateOf[StateA]().Kind()), "failed attach inserts nothing")

	err = h.engine.Attach(plainWorld{h.world}, e, needsEvents)
	assert.ErrorIs(t, err, ErrMissingResource)
	require.NoError(t, h.engine.Attach(h.world, e, needsEvents.Clone()))
	assert.ErrorIs(t, h.engine.Attach(h.world, e, needsEvents.Clone()), ErrAlreadyAttached)

	withQueue := NewEngine(WithEventQueue(&ecs.EventQueue{}), WithErrorHandler(func(error) {}))
	require.NoError(t, withQueue.Attach(plainWorld{h.world}, h.world.CreateEntity(), needsEvents.Clone()))

	dead := h.world.CreateEntity()
	h.world.DestroyEntity(dead)
	assert.ErrorIs(t, h.engine.Attach(h.world, dead, needsEvents.Clone()), component.ErrEntityNotAlive)
}

func TestAttachRejectsSharedMachine(t *testing.T) {
	h := newHarness(t)
	m, err := NewBuilder().
		SetInitialState(To(StateA{})).
		AddTransition(From[StateA](), Always(), To(StateB{})).
		Build()
	require.NoError(t, err)

	e1, e2 := h.world.CreateEntity(), h.world.CreateEntity()
	require.NoError(t, h.engine.Attach(h.world, e1, m))
	err = h.engine.Attach(h.world, e2, m)
	assert.ErrorIs(t, err, ErrMachineInUse)
	assert.Zero(t, h.markers(e2))
	assert.False(t, h.world.HasComponent(e2, MachineComponent.ID()))

	h.step()
	assert.Empty(t, h.errs)
	assert.Equal(t, StateOf[StateB](), h.state(e1))

	require.True(t, h.engine.Detach(h.world, e1))
	require.NoError(t, h.engine.Attach(h.world, e2, m), "a detached machine can be reused")
	assert.Equal(t, StateOf[StateA](), h.state(e2))
}

func TestDetach(t *testing.T) {
	h := newHarness(t)
	e := h.spawn(fighter())
	assert.True(t, h.engine.Detach(h.world, e))
	assert.Zero(t, h.markers(e))
	assert.False(t, h.engine.Detach(h.world, e))
	h.step()
	assert.Empty(t, h.errs)
}

func TestDestroyedEntityDropsMachine(t *testing.T) {
	h := newHarness(t)
	e := h.spawn(fighter())
	h.world.DestroyEntity(e)
	assert.Empty(t, h.world.EntitiesWith(MachineComponent.ID()))
	require.NotPanics(t, h.step)
}

func TestDefaultErrorHandlerLogs(t *testing.T) {
	h := newHarness(t)
	h.engine.onError = nil
	e := h.spawn(fighter())
	h.world.RemoveComponent(e, StateOf[Idle]().Kind())
	require.NotPanics(t, h.step)
}

func TestParseEventDelivery(t *testing.T) {
	d, err := ParseEventDelivery("exclusive")
	require.NoError(t, err)
	assert.Equal(t, Exclusive, d)
	d, err = ParseEventDelivery("")
	require.NoError(t, err)
	assert.Equal(t, Broadcast, d)
	_, err = ParseEventDelivery("sometimes")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrMissingResource))
}
