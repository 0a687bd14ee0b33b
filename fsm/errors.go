package fsm

import (
	"errors"
	"fmt"

	"github.com/milk9111/statemachine/ecs"
)

var (
	ErrNoInitialState   = errors.New("fsm: initial state not set")
	ErrNilTrigger       = errors.New("fsm: edge has no trigger")
	ErrNilTarget        = errors.New("fsm: edge has no target")
	ErrInvalidTrigger   = errors.New("fsm: invalid trigger")
	ErrUnreachableState = errors.New("fsm: source state is never entered")
	ErrPayloadMismatch  = errors.New("fsm: target cannot be built from trigger payload")
	ErrMissingResource  = errors.New("fsm: trigger needs a resource the host does not provide")
	ErrAlreadyAttached  = errors.New("fsm: entity already has a state machine")
	ErrMachineInUse     = errors.New("fsm: state machine is attached to another entity; attach a Clone")
	ErrMarkerInvariant  = errors.New("fsm: state marker invariant violated")
)

// ConfigError describes a table that cannot be built. Edge is the index of
// the offending edge, or -1 when the problem is not tied to one edge.
type ConfigError struct {
	Machine string
	Edge    int
	Err     error
}

func (e *ConfigError) Error() string {
	name := e.Machine
	if name == "" {
		name = "machine"
	}
	if e.Edge < 0 {
		return fmt.Sprintf("fsm: %s: %v", name, e.Err)
	}
	return fmt.Sprintf("fsm: %s: edge %d: %v", name, e.Edge, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// InvariantError reports an entity whose state markers do not match its
// machine. The entity is skipped for the tick.
type InvariantError struct {
	Entity  ecs.Entity
	State   StateID
	Markers int
	Present bool
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("fsm: entity %s: current state %s present=%t, %d state markers",
		e.Entity, e.State, e.Present, e.Markers)
}

func (e *InvariantError) Unwrap() error { return ErrMarkerInvariant }

// TransitionError reports an edge that fired but could not be applied. The
// entity keeps its current state.
type TransitionError struct {
	Entity ecs.Entity
	From   StateID
	To     StateID
	Err    error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("fsm: entity %s: transition %s -> %s: %v", e.Entity, e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }
