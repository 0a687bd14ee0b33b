package fsm

import (
	"fmt"
	"math"
	"reflect"
)

// InputSnapshot is a read-only view of the active input state for one tick.
// Mapping devices to actions is the host's job.
type InputSnapshot interface {
	Pressed(action string) bool
	JustPressed(action string) bool
	JustReleased(action string) bool
	Value(action string) float64
	Axis(action string) Axis
}

// InputSource returns the snapshot for the tick about to be evaluated.
type InputSource func() InputSnapshot

// Axis is a two-dimensional input value such as a stick.
type Axis struct {
	X, Y float64
}

// Length returns the magnitude of a.
func (a Axis) Length() float64 { return math.Hypot(a.X, a.Y) }

var (
	floatType = reflect.TypeFor[float64]()
	axisType  = reflect.TypeFor[Axis]()
)

func inputLeaf(kind triggerKind, action string) Trigger {
	t := Trigger{kind: kind, name: action, bare: true}
	if action == "" {
		t.err = fmt.Errorf("%w: empty input action", ErrInvalidTrigger)
	}
	return t
}

// Pressed is satisfied while action is held.
func Pressed(action string) Trigger { return inputLeaf(kindPressed, action) }

// JustPressed is satisfied on the tick action went down.
func JustPressed(action string) Trigger { return inputLeaf(kindJustPressed, action) }

// JustReleased is satisfied on the tick action went up.
func JustReleased(action string) Trigger { return inputLeaf(kindJustReleased, action) }

// Value is satisfied while the analog value of action lies in [min, max].
// Use math.Inf for an open bound. The payload is the float64 value.
func Value(action string, min, max float64) Trigger {
	t := inputLeaf(kindValue, action)
	t.min, t.max, t.bare, t.payload = min, max, false, floatType
	if t.err == nil && min > max {
		t.err = fmt.Errorf("%w: value bounds %g > %g", ErrInvalidTrigger, min, max)
	}
	return t
}

// AxisLength is satisfied while the length of the axis pair of action lies
// in [min, max]. The payload is the Axis.
func AxisLength(action string, min, max float64) Trigger {
	t := inputLeaf(kindAxis, action)
	t.min, t.max, t.bare, t.payload = min, max, false, axisType
	if t.err == nil && (min > max || max < 0) {
		t.err = fmt.Errorf("%w: axis bounds %g..%g", ErrInvalidTrigger, min, max)
	}
	return t
}
