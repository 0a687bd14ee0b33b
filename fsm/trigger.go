package fsm

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/milk9111/statemachine/ecs/component"
)

// Outcome is the result of evaluating a trigger.
type Outcome struct {
	ok      bool
	payload any
}

// NotSatisfied is the zero Outcome.
var NotSatisfied = Outcome{}

// Satisfied reports success without a payload.
func Satisfied() Outcome { return Outcome{ok: true} }

// SatisfiedWith reports success carrying payload.
func SatisfiedWith(payload any) Outcome { return Outcome{ok: true, payload: payload} }

// Ok reports whether the trigger was satisfied.
func (o Outcome) Ok() bool { return o.ok }

// Payload returns the payload of a satisfied outcome, if any.
func (o Outcome) Payload() any { return o.payload }

type triggerKind uint8

const (
	kindInvalid triggerKind = iota
	kindAlways
	kindNever
	kindDone
	kindEvent
	kindPressed
	kindJustPressed
	kindJustReleased
	kindValue
	kindAxis
	kindAfter
	kindComponent
	kindFunc
	kindScript
	kindNot
	kindAll
	kindAny
	kindThen
)

var kindNames = [...]string{
	kindInvalid:      "invalid",
	kindAlways:       "always",
	kindNever:        "never",
	kindDone:         "done",
	kindEvent:        "event",
	kindPressed:      "pressed",
	kindJustPressed:  "just_pressed",
	kindJustReleased: "just_released",
	kindValue:        "value",
	kindAxis:         "axis",
	kindAfter:        "after",
	kindComponent:    "component",
	kindFunc:         "func",
	kindScript:       "script",
	kindNot:          "not",
	kindAll:          "all",
	kindAny:          "any",
	kindThen:         "then",
}

// requirement is a bit set of host resources a trigger reads.
type requirement uint8

const (
	needsInput requirement = 1 << iota
	needsEvents
)

// Trigger is an immutable guard predicate. Leaves and combinators share one
// tagged representation evaluated by a single recursive function, so
// evaluation cost is bounded by the size of the tree.
//
// The zero Trigger is invalid and rejected by Builder.Build.
type Trigger struct {
	kind     triggerKind
	name     string
	status   DoneStatus
	min, max float64
	dur      time.Duration
	comp     component.ComponentID
	pred     func(any) bool
	fn       func(*Context) Outcome
	script   *script
	children []Trigger
	slot     int

	// payload is the static payload type, nil when unknown. bare marks
	// triggers that never carry a payload.
	payload reflect.Type
	bare    bool
	err     error
}

// IsZero reports whether t was never constructed.
func (t Trigger) IsZero() bool { return t.kind == kindInvalid }

// Always is satisfied on every tick it is evaluated.
func Always() Trigger { return Trigger{kind: kindAlways, bare: true} }

// Never is never satisfied.
func Never() Trigger { return Trigger{kind: kindNever, bare: true} }

// OnDone is satisfied while the entity carries a visible Done marker. The
// payload is the Done value.
func OnDone() Trigger {
	return Trigger{kind: kindDone, payload: doneType}
}

// OnDoneStatus is OnDone restricted to markers with status.
func OnDoneStatus(status DoneStatus) Trigger {
	return Trigger{kind: kindDone, status: status, payload: doneType}
}

// OnEvent is satisfied when an event called name, addressed to the entity or
// broadcast, was raised before this tick's pass. The payload is the event
// data.
func OnEvent(name string) Trigger {
	t := Trigger{kind: kindEvent, name: name}
	if name == "" {
		t.err = fmt.Errorf("%w: empty event name", ErrInvalidTrigger)
	}
	return t
}

// OnEventOf is OnEvent with a statically known payload type, letting Build
// verify that the edge's target accepts it.
func OnEventOf[P any](name string) Trigger {
	t := OnEvent(name)
	t.payload = reflect.TypeFor[P]()
	return t
}

// After is satisfied once the entity has spent at least d in its current
// state, measured on the tick clock.
func After(d time.Duration) Trigger {
	t := Trigger{kind: kindAfter, dur: d, bare: true}
	if d < 0 {
		t.err = fmt.Errorf("%w: negative duration %s", ErrInvalidTrigger, d)
	}
	return t
}

// Has is satisfied while the entity carries a T component. The payload is
// the *T.
func Has[T any]() Trigger {
	return Component[T](nil)
}

// Component is satisfied while the entity carries a T component for which
// pred returns true. A nil pred accepts any value. The payload is the *T.
func Component[T any](pred func(*T) bool) Trigger {
	t := Trigger{
		kind:    kindComponent,
		comp:    component.NewComponent[T]().ID(),
		name:    reflect.TypeFor[T]().String(),
		payload: reflect.TypeFor[*T](),
	}
	if pred != nil {
		t.pred = func(v any) bool {
			p, ok := v.(*T)
			return ok && pred(p)
		}
	}
	return t
}

// Func wraps a host predicate. fn must only read through ctx.
func Func(fn func(ctx *Context) Outcome) Trigger {
	t := Trigger{kind: kindFunc, fn: fn}
	if fn == nil {
		t.err = fmt.Errorf("%w: nil func", ErrInvalidTrigger)
	}
	return t
}

// Cond wraps a boolean host predicate.
func Cond(fn func(ctx *Context) bool) Trigger {
	if fn == nil {
		return Func(nil)
	}
	t := Func(func(ctx *Context) Outcome {
		if fn(ctx) {
			return Satisfied()
		}
		return NotSatisfied
	})
	t.bare = true
	return t
}

// Not inverts t. The payload is dropped.
func Not(t Trigger) Trigger {
	return Trigger{kind: kindNot, children: []Trigger{t}, bare: true}
}

// All is satisfied when every child is, evaluated left to right and stopping
// at the first failure. The payload is the last child's.
func All(ts ...Trigger) Trigger {
	out := Trigger{kind: kindAll, children: ts}
	if len(ts) == 0 {
		out.err = fmt.Errorf("%w: all() needs at least one trigger", ErrInvalidTrigger)
		return out
	}
	last := ts[len(ts)-1]
	out.payload, out.bare = last.payload, last.bare
	return out
}

// AnyOf is satisfied when some child is, evaluated left to right and stopping
// at the first success. The payload is that child's.
func AnyOf(ts ...Trigger) Trigger {
	out := Trigger{kind: kindAny, children: ts}
	if len(ts) == 0 {
		out.err = fmt.Errorf("%w: any() needs at least one trigger", ErrInvalidTrigger)
		return out
	}
	out.payload, out.bare = ts[0].payload, ts[0].bare
	for _, c := range ts[1:] {
		if c.payload != out.payload {
			out.payload = nil
		}
		out.bare = out.bare && c.bare
	}
	return out
}

// Then is satisfied once first has been satisfied on an earlier tick and
// second is satisfied now. Progress belongs to the StateMachine instance and
// resets whenever the entity changes state. The payload is second's.
func Then(first, second Trigger) Trigger {
	return Trigger{
		kind:     kindThen,
		children: []Trigger{first, second},
		payload:  second.payload,
		bare:     second.bare,
	}
}

// And is shorthand for All(t, other).
func (t Trigger) And(other Trigger) Trigger { return All(t, other) }

// Or is shorthand for AnyOf(t, other).
func (t Trigger) Or(other Trigger) Trigger { return AnyOf(t, other) }

// Not is shorthand for Not(t).
func (t Trigger) Not() Trigger { return Not(t) }

// Then is shorthand for Then(t, next).
func (t Trigger) Then(next Trigger) Trigger { return Then(t, next) }

// validate walks the tree and returns the first construction error.
func (t *Trigger) validate() error {
	if t.kind == kindInvalid {
		return ErrNilTrigger
	}
	if t.err != nil {
		return t.err
	}
	for i := range t.children {
		if err := t.children[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

// requires reports the host resources t reads.
func (t Trigger) requires() requirement {
	var r requirement
	switch t.kind {
	case kindEvent:
		r |= needsEvents
	case kindPressed, kindJustPressed, kindJustReleased, kindValue, kindAxis:
		r |= needsInput
	case kindScript:
		r |= t.script.requires
	}
	for i := range t.children {
		r |= t.children[i].requires()
	}
	return r
}

// bind deep-copies t and assigns sequence slots starting at next. It returns
// the copy and the next free slot.
func (t Trigger) bind(next int) (Trigger, int) {
	if len(t.children) > 0 {
		children := make([]Trigger, len(t.children))
		for i, c := range t.children {
			children[i], next = c.bind(next)
		}
		t.children = children
	}
	if t.kind == kindThen {
		t.slot = next
		next++
	}
	return t, next
}

func (t Trigger) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t Trigger) write(b *strings.Builder) {
	if int(t.kind) < len(kindNames) {
		b.WriteString(kindNames[t.kind])
	}
	switch t.kind {
	case kindEvent, kindPressed, kindJustPressed, kindJustReleased, kindComponent:
		fmt.Fprintf(b, "(%s)", t.name)
	case kindValue, kindAxis:
		fmt.Fprintf(b, "(%s,%g,%g)", t.name, t.min, t.max)
	case kindAfter:
		fmt.Fprintf(b, "(%s)", t.dur)
	case kindDone:
		if t.status != 0 {
			fmt.Fprintf(b, "(%s)", t.status)
		}
	case kindScript:
		fmt.Fprintf(b, "(%q)", t.script.src)
	}
	if len(t.children) == 0 {
		return
	}
	b.WriteByte('(')
	for i, c := range t.children {
		if i > 0 {
			b.WriteString(", ")
		}
		c.write(b)
	}
	b.WriteByte(')')
}
