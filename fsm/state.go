package fsm

import (
	"reflect"
	"sync"

	"github.com/milk9111/statemachine/ecs/component"
)

// StateID identifies a state by the Go type of its marker component.
type StateID struct {
	kind component.ComponentID
	typ  reflect.Type
	name string
}

// StateOf returns the identity of state type S.
func StateOf[S any]() StateID {
	return stateOfType(reflect.TypeFor[S](), "")
}

func stateOfType(t reflect.Type, name string) StateID {
	if name == "" {
		name = t.String()
	}
	return StateID{kind: component.KindOf(t), typ: t, name: name}
}

// Kind returns the component kind of the state marker.
func (id StateID) Kind() component.ComponentID { return id.kind }

// Type returns the Go type of the state marker.
func (id StateID) Type() reflect.Type { return id.typ }

func (id StateID) IsZero() bool { return id.kind == 0 }

// Equal compares identities by marker kind.
func (id StateID) Equal(other StateID) bool { return id.kind == other.kind }

func (id StateID) String() string {
	if id.IsZero() {
		return "<none>"
	}
	return id.name
}

// Matcher selects the source states an edge applies to.
type Matcher struct {
	state    StateID
	wildcard bool
}

// AnyState matches every current state.
var AnyState = Matcher{wildcard: true}

// From matches exactly state S.
func From[S any]() Matcher {
	return Matcher{state: StateOf[S]()}
}

// FromID matches exactly id.
func FromID(id StateID) Matcher {
	return Matcher{state: id}
}

// Matches reports whether an entity in state id is covered.
func (m Matcher) Matches(id StateID) bool {
	return m.wildcard || (!m.state.IsZero() && m.state.Equal(id))
}

// IsAny reports whether m is the wildcard.
func (m Matcher) IsAny() bool { return m.wildcard }

// State returns the exact state, zero for the wildcard.
func (m Matcher) State() StateID { return m.state }

func (m Matcher) String() string {
	if m.wildcard {
		return "*"
	}
	return m.state.String()
}

// Named states let data-driven machines declare states that have no Go type.
// Each name gets its own struct type built at runtime, so named states keep
// per-type identity like any other state.

// NamedState is the value stored on an entity occupying a named state.
type NamedState interface {
	StateName() string
}

var named = struct {
	sync.Mutex
	types map[string]reflect.Type
}{types: map[string]reflect.Type{}}

var stringType = reflect.TypeFor[string]()

// Named returns the identity of the runtime state called name.
func Named(name string) StateID {
	named.Lock()
	defer named.Unlock()
	t, ok := named.types[name]
	if !ok {
		t = reflect.StructOf([]reflect.StructField{{
			Name: "Name",
			Type: stringType,
			Tag:  reflect.StructTag(`state:"` + name + `"`),
		}})
		named.types[name] = t
	}
	return stateOfType(t, name)
}

// StateName returns the name of a marker value built by a named target, or
// the Go type name for anything else.
func StateName(marker any) string {
	if marker == nil {
		return ""
	}
	v := reflect.ValueOf(marker)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct && v.NumField() == 1 {
		if tag, ok := v.Type().Field(0).Tag.Lookup("state"); ok {
			return tag
		}
	}
	if n, ok := marker.(NamedState); ok {
		return n.StateName()
	}
	return v.Type().String()
}
