package component

import (
	"errors"
	"reflect"
	"sync"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

// ComponentID identifies a component kind. Every Go type maps to exactly one
// id for the lifetime of the process.
type ComponentID uint32

type ComponentKind[T any] struct {
	id ComponentID
}

func NewComponentKind[T any]() ComponentKind[T] {
	return ComponentKind[T]{id: KindOf(reflect.TypeFor[T]())}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

// NewComponent returns the handle for T. Calling it twice for the same T
// yields handles with the same kind.
func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}

func (h ComponentHandle[T]) ID() ComponentID {
	return h.kind.id
}

var registry = struct {
	sync.RWMutex
	ids   map[reflect.Type]ComponentID
	types []reflect.Type
}{ids: map[reflect.Type]ComponentID{}}

// KindOf returns the component id for t, assigning one on first use.
func KindOf(t reflect.Type) ComponentID {
	if t == nil {
		return 0
	}
	registry.RLock()
	id, ok := registry.ids[t]
	registry.RUnlock()
	if ok {
		return id
	}

	registry.Lock()
	defer registry.Unlock()
	if id, ok := registry.ids[t]; ok {
		return id
	}
	registry.types = append(registry.types, t)
	id = ComponentID(len(registry.types))
	registry.ids[t] = id
	return id
}

// TypeOf returns the Go type registered for id, or nil.
func TypeOf(id ComponentID) reflect.Type {
	registry.RLock()
	defer registry.RUnlock()
	if id == 0 || int(id) > len(registry.types) {
		return nil
	}
	return registry.types[id-1]
}
