package logging

import (
	"github.com/felixgeelhaar/bolt/v3"

	"github.com/milk9111/statemachine/ecs"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Apply adds fields to e and returns it for chaining.
func Apply(e *bolt.Event, fields ...Field) *bolt.Event {
	if e == nil {
		return nil
	}
	for _, f := range fields {
		e = f(e)
	}
	return e
}

// Log applies fields and writes msg. A nil event, as returned for a
// disabled level, is ignored.
func Log(e *bolt.Event, msg string, fields ...Field) {
	if e = Apply(e, fields...); e != nil {
		e.Msg(msg)
	}
}

// Entity adds an entity field.
func Entity(ent ecs.Entity) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("entity", ent.String())
	}
}

// Machine adds the machine name field.
func Machine(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		if name == "" {
			return e
		}
		return e.Str("machine", name)
	}
}

// FromState adds a from_state field for transitions.
func FromState(s string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("from_state", s)
	}
}

// ToState adds a to_state field for transitions.
func ToState(s string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("to_state", s)
	}
}

// Tick adds the tick number.
func Tick(n uint64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("tick", int64(n))
	}
}

// Path adds a file path field.
func Path(p string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("path", p)
	}
}

// Str adds an arbitrary string field.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// Int adds an arbitrary int field.
func Int(key string, value int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, value)
	}
}

// Err adds an error field.
func Err(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}
