package fsm

import (
	"fmt"
	"reflect"
)

// Target produces the marker value for the state an edge enters.
type Target struct {
	state   StateID
	build   func(payload any) (any, error)
	payload reflect.Type
}

// IsZero reports whether t was never constructed.
func (t Target) IsZero() bool { return t.build == nil }

// State returns the identity of the state t enters.
func (t Target) State() StateID { return t.state }

// To enters state S with a copy of value.
func To[S any](value S) Target {
	return Target{
		state: StateOf[S](),
		build: func(any) (any, error) {
			v := value
			return &v, nil
		},
	}
}

// ToFunc enters state S with the value returned by fn.
func ToFunc[S any](fn func() S) Target {
	if fn == nil {
		return Target{}
	}
	return Target{
		state: StateOf[S](),
		build: func(any) (any, error) {
			v := fn()
			return &v, nil
		},
	}
}

// ToWith enters state S built from the trigger payload. Build rejects edges
// whose trigger statically carries no payload or one not assignable to P.
func ToWith[P, S any](fn func(P) S) Target {
	if fn == nil {
		return Target{}
	}
	return Target{
		state:   StateOf[S](),
		payload: reflect.TypeFor[P](),
		build: func(payload any) (any, error) {
			p, ok := payload.(P)
			if !ok {
				return nil, fmt.Errorf("%w: got %T, want %s", ErrPayloadMismatch, payload, reflect.TypeFor[P]())
			}
			v := fn(p)
			return &v, nil
		},
	}
}

// ToNamed enters the runtime state called name. See Named.
func ToNamed(name string) Target {
	id := Named(name)
	return Target{
		state: id,
		build: func(any) (any, error) {
			v := reflect.New(id.typ)
			v.Elem().Field(0).SetString(name)
			return v.Interface(), nil
		},
	}
}

// checkPayload verifies at build time that trig can feed t.
func (t Target) checkPayload(trig *Trigger) error {
	if t.payload == nil {
		return nil
	}
	if trig.bare {
		return fmt.Errorf("%w: %s carries no payload, target wants %s", ErrPayloadMismatch, trig, t.payload)
	}
	if trig.payload != nil && !trig.payload.AssignableTo(t.payload) {
		return fmt.Errorf("%w: %s carries %s, target wants %s", ErrPayloadMismatch, trig, trig.payload, t.payload)
	}
	return nil
}
