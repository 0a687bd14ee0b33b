// Package input keeps per-action button and analog state and exposes it to
// state machines as an fsm.InputSnapshot.
package input

import (
	"maps"
	"slices"

	"github.com/milk9111/statemachine/fsm"
)

// State is a mutable action map. The host writes it while polling devices,
// the engine reads it during the transition pass and Advance closes the tick.
type State struct {
	pressed map[string]bool
	prev    map[string]bool
	values  map[string]float64
	axes    map[string]fsm.Axis
}

var _ fsm.InputSnapshot = (*State)(nil)

func New() *State {
	return &State{
		pressed: map[string]bool{},
		prev:    map[string]bool{},
		values:  map[string]float64{},
		axes:    map[string]fsm.Axis{},
	}
}

// Set records whether action is held this tick.
func (s *State) Set(action string, down bool) {
	if down {
		s.pressed[action] = true
		return
	}
	delete(s.pressed, action)
}

func (s *State) Press(action string)   { s.Set(action, true) }
func (s *State) Release(action string) { s.Set(action, false) }

// SetValue records an analog reading for action.
func (s *State) SetValue(action string, v float64) {
	s.values[action] = v
}

// SetAxis records a two-dimensional reading for action.
func (s *State) SetAxis(action string, x, y float64) {
	s.axes[action] = fsm.Axis{X: x, Y: y}
}

// Advance ends the tick. Edges reported by JustPressed and JustReleased are
// relative to the state at the last Advance.
func (s *State) Advance() {
	clear(s.prev)
	maps.Copy(s.prev, s.pressed)
}

// Reset releases everything.
func (s *State) Reset() {
	clear(s.pressed)
	clear(s.prev)
	clear(s.values)
	clear(s.axes)
}

// Held returns the held actions in sorted order.
func (s *State) Held() []string {
	return slices.Sorted(maps.Keys(s.pressed))
}

func (s *State) Pressed(action string) bool { return s.pressed[action] }

func (s *State) JustPressed(action string) bool {
	return s.pressed[action] && !s.prev[action]
}

func (s *State) JustReleased(action string) bool {
	return !s.pressed[action] && s.prev[action]
}

// Value returns the analog reading for action. Buttons without one read as
// 1 while held.
func (s *State) Value(action string) float64 {
	if v, ok := s.values[action]; ok {
		return v
	}
	if s.pressed[action] {
		return 1
	}
	return 0
}

func (s *State) Axis(action string) fsm.Axis { return s.axes[action] }

// Source adapts s for fsm.WithInputSource.
func (s *State) Source() fsm.InputSource {
	return func() fsm.InputSnapshot { return s }
}
