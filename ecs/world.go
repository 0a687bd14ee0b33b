package ecs

import "github.com/milk9111/statemachine/ecs/component"

// World owns entities and their components.
type World struct {
	entities entityStore
	stores   []*SparseSet
	events   EventQueue
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity removes every component of e and marks it dead. It reports
// whether e was alive.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.Remove(e)
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Len returns the number of live entities.
func (w *World) Len() int {
	if w == nil {
		return 0
	}
	return w.entities.live
}

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	if id == 0 {
		return nil
	}
	idx := int(id) - 1
	if idx >= len(w.stores) {
		if !create {
			return nil
		}
		w.stores = append(w.stores, make([]*SparseSet, idx+1-len(w.stores))...)
	}
	if w.stores[idx] == nil && create {
		w.stores[idx] = &SparseSet{}
	}
	return w.stores[idx]
}

// AddComponent inserts or replaces the component of kind id on e.
func (w *World) AddComponent(e Entity, id component.ComponentID, v any) error {
	if w == nil || !w.entities.isAlive(e) {
		return component.ErrEntityNotAlive
	}
	if id == 0 {
		return component.ErrInvalidComponentKind
	}
	if v == nil {
		return component.ErrNilComponent
	}
	w.store(id, true).Set(e, v)
	return nil
}

// RemoveComponent deletes the component of kind id from e.
func (w *World) RemoveComponent(e Entity, id component.ComponentID) bool {
	if w == nil {
		return false
	}
	return w.store(id, false).Remove(e)
}

// HasComponent reports whether e carries a component of kind id.
func (w *World) HasComponent(e Entity, id component.ComponentID) bool {
	if w == nil {
		return false
	}
	return w.store(id, false).Has(e)
}

// GetComponent returns the component of kind id stored on e.
func (w *World) GetComponent(e Entity, id component.ComponentID) (any, bool) {
	if w == nil {
		return nil, false
	}
	return w.store(id, false).Get(e)
}

// EntitiesWith returns the entities carrying kind id. The slice is owned by
// the world and must not be held across component mutations.
func (w *World) EntitiesWith(id component.ComponentID) []Entity {
	if w == nil {
		return nil
	}
	return w.store(id, false).Entities()
}

// Storage returns the raw set for kind id, or nil if nothing was ever stored.
func (w *World) Storage(id component.ComponentID) *SparseSet {
	if w == nil {
		return nil
	}
	return w.store(id, false)
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}
