package ecs

// Event is a generic ECS event payload. A zero Target addresses every entity.
type Event struct {
	Type   string
	Target Entity
	Data   any

	claimed bool
}

// Claimed reports whether an exclusive consumer already took the event.
func (e Event) Claimed() bool {
	return e.claimed
}

// Matches reports whether the event has the given type and is visible to ent.
func (e Event) Matches(typ string, ent Entity) bool {
	return e.Type == typ && (e.Target == 0 || e.Target == ent)
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	evt.claimed = false
	q.items = append(q.items, evt)
}

// Emit adds a broadcast event.
func (q *EventQueue) Emit(typ string, data any) {
	q.Push(Event{Type: typ, Data: data})
}

// EmitTo adds an event visible only to target.
func (q *EventQueue) EmitTo(target Entity, typ string, data any) {
	q.Push(Event{Type: typ, Target: target, Data: data})
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// At returns the i-th queued event.
func (q *EventQueue) At(i int) Event {
	return q.items[i]
}

// Claim marks the i-th event as taken. It reports false if it already was.
func (q *EventQueue) Claim(i int) bool {
	if q == nil || i < 0 || i >= len(q.items) || q.items[i].claimed {
		return false
	}
	q.items[i].claimed = true
	return true
}

// DropFront discards the first n events and keeps the rest in order. The
// backing array is reused.
func (q *EventQueue) DropFront(n int) {
	if q == nil || n <= 0 {
		return
	}
	if n >= len(q.items) {
		clear(q.items)
		q.items = q.items[:0]
		return
	}
	kept := copy(q.items, q.items[n:])
	clear(q.items[kept:])
	q.items = q.items[:kept]
}

// Flush discards every queued event.
func (q *EventQueue) Flush() {
	q.DropFront(q.Len())
}
