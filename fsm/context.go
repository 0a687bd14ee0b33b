package fsm

import (
	"time"

	"github.com/milk9111/statemachine/ecs"
	"github.com/milk9111/statemachine/ecs/component"
)

// Reader is the read-only part of World that triggers may use.
type Reader interface {
	GetComponent(e ecs.Entity, id component.ComponentID) (any, bool)
	HasComponent(e ecs.Entity, id component.ComponentID) bool
}

// World is the component storage the engine needs from its host.
type World interface {
	Reader
	AddComponent(e ecs.Entity, id component.ComponentID, v any) error
	RemoveComponent(e ecs.Entity, id component.ComponentID) bool
	EntitiesWith(id component.ComponentID) []ecs.Entity
}

// Tick is the host context for one transition pass. Input and Events are
// optional; triggers that need a missing one are simply not satisfied.
type Tick struct {
	Number  uint64
	Delta   time.Duration
	Elapsed time.Duration
	Input   InputSnapshot
	Events  *ecs.EventQueue
}

// Context is what a trigger is evaluated against. The engine reuses one
// Context for a whole pass; triggers must not retain it.
type Context struct {
	World  Reader
	Entity ecs.Entity
	Tick   *Tick

	machine   *StateMachine
	pass      uint64
	visible   int
	exclusive bool
	claims    []int
}

// State returns the entity's current state.
func (c *Context) State() StateID {
	return c.machine.current
}

// StateTime returns how long the entity has been in its current state.
func (c *Context) StateTime() time.Duration {
	if c.Tick == nil {
		return 0
	}
	return c.Tick.Elapsed - c.machine.enteredAt
}

// Input returns the tick's input snapshot, or nil.
func (c *Context) Input() InputSnapshot {
	if c.Tick == nil {
		return nil
	}
	return c.Tick.Input
}

// Get reads a component of the evaluated entity.
func Get[T any](c *Context) (*T, bool) {
	v, ok := c.World.GetComponent(c.Entity, component.NewComponent[T]().ID())
	if !ok {
		return nil, false
	}
	p, ok := v.(*T)
	return p, ok
}

// findEvent returns the index of the first visible, unclaimed event named
// name addressed to the evaluated entity.
func (c *Context) findEvent(name string) int {
	if c.Tick == nil || c.Tick.Events == nil {
		return -1
	}
	q := c.Tick.Events
	n := min(c.visible, q.Len())
	for i := 0; i < n; i++ {
		ev := q.At(i)
		if !ev.Matches(name, c.Entity) {
			continue
		}
		if c.exclusive && (ev.Claimed() || c.claimed(i)) {
			continue
		}
		return i
	}
	return -1
}

func (c *Context) claimed(i int) bool {
	for _, j := range c.claims {
		if j == i {
			return true
		}
	}
	return false
}
