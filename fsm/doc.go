// Package fsm attaches per-entity finite state machines to an ECS world.
//
// Every entity that owns a StateMachine component occupies exactly one state.
// A state is any Go type; the value is stored on the entity as a component of
// that type (the state marker). Each tick the Engine walks the machine's edges
// in declared order and applies the first edge whose source matches the
// current state and whose Trigger is satisfied, swapping the old marker for
// the one produced by the edge's Target.
//
// A tick has two phases that must run in order:
//
//	engine.RunTransitionPass(world, tick) // evaluate triggers, swap markers
//	engine.FinishTick(world)              // drop consumed Done markers and events
//
// Engine.Step runs both. Engine.Install registers them as ordered sets on an
// ecs.Scheduler.
//
// Example:
//
//	type Idle struct{}
//	type Attacking struct{ Target string }
//
//	m, err := fsm.NewBuilder().
//		SetInitialState(fsm.To(Idle{})).
//		AddTransition(fsm.From[Idle](), fsm.OnEvent("attack"), fsm.To(Attacking{})).
//		AddTransition(fsm.AnyState, fsm.OnDone(), fsm.To(Idle{})).
//		Build()
//	if err != nil {
//		return err
//	}
//	if err := engine.Attach(world, ent, m); err != nil {
//		return err
//	}
package fsm
