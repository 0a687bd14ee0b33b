package ecs

import "github.com/milk9111/statemachine/ecs/component"

// Add stores a copy of value on e.
func Add[T any](w *World, e Entity, handle component.ComponentHandle[T], value T) error {
	return w.AddComponent(e, handle.ID(), &value)
}

func Remove[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.RemoveComponent(e, handle.ID())
}

func Has[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.HasComponent(e, handle.ID())
}

// Get returns a pointer to the stored component so callers can mutate it.
func Get[T any](w *World, e Entity, handle component.ComponentHandle[T]) (*T, bool) {
	value, ok := w.GetComponent(e, handle.ID())
	if !ok {
		return nil, false
	}
	cast, ok := value.(*T)
	return cast, ok
}

// ForEach calls fn for every entity carrying T. fn must not add or remove
// components of kind T.
func ForEach[T any](w *World, handle component.ComponentHandle[T], fn func(Entity, *T)) {
	s := w.Storage(handle.ID())
	if s == nil {
		return
	}
	ents := s.Entities()
	vals := s.Values()
	for i := range ents {
		if v, ok := vals[i].(*T); ok {
			fn(ents[i], v)
		}
	}
}
