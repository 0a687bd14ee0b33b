package fsm

import (
	"reflect"

	"github.com/milk9111/statemachine/ecs"
	"github.com/milk9111/statemachine/ecs/component"
)

// DoneStatus qualifies a Done marker.
type DoneStatus uint8

const (
	DoneSuccess DoneStatus = iota + 1
	DoneFailure
)

func (s DoneStatus) String() string {
	switch s {
	case DoneSuccess:
		return "success"
	case DoneFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Done is a one-shot signal that the current state's work is finished.
// Markers present when a pass starts are visible to OnDone during that pass
// and removed by the cleanup that follows it. A marker inserted during a pass
// waits for the next one.
type Done struct {
	Status DoneStatus
	Value  any

	pass uint64
}

var DoneComponent = component.NewComponent[Done]()

var (
	doneKind = DoneComponent.ID()
	doneType = reflect.TypeFor[Done]()
)

// MarkDone inserts a Done marker on e, replacing any pending one.
func MarkDone(w World, e ecs.Entity, status DoneStatus, value any) error {
	return w.AddComponent(e, doneKind, &Done{Status: status, Value: value})
}

// stampDone makes every existing marker visible to the pass.
func (en *Engine) stampDone(w World) {
	for _, ent := range w.EntitiesWith(doneKind) {
		if v, ok := w.GetComponent(ent, doneKind); ok {
			if d, ok := v.(*Done); ok {
				d.pass = en.pass
			}
		}
	}
}

// RemoveDoneMarkers removes every Done marker that was visible to the last
// transition pass. It must run after RunTransitionPass has finished for all
// entities.
func (en *Engine) RemoveDoneMarkers(w World) {
	en.scratch = append(en.scratch[:0], w.EntitiesWith(doneKind)...)
	for _, ent := range en.scratch {
		v, ok := w.GetComponent(ent, doneKind)
		if !ok {
			continue
		}
		if d, ok := v.(*Done); ok && d.pass == en.pass && en.pass != 0 {
			w.RemoveComponent(ent, doneKind)
		}
	}
}
