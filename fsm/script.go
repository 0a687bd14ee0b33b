package fsm

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
)

const scriptResult = "__result"

// script is a compiled tengo boolean expression. One compiled program is
// shared by every copy of the trigger; the engine evaluates entities one at a
// time, so the current context is swapped in before each run.
type script struct {
	src      string
	compiled *tengo.Compiled
	ctx      *Context
	requires requirement
}

// Script is satisfied when the tengo expression src evaluates to true.
//
// The expression can read state_time and elapsed (seconds), tick, and call
// pressed(action), just_pressed(action), value(action) and event(name).
// Compile errors surface from Builder.Build; runtime errors make the trigger
// unsatisfied.
func Script(src string) Trigger {
	s := &script{src: strings.TrimSpace(src)}
	t := Trigger{kind: kindScript, script: s, bare: true}
	if s.src == "" {
		t.err = fmt.Errorf("%w: empty script", ErrInvalidTrigger)
		return t
	}
	if err := s.compile(); err != nil {
		t.err = fmt.Errorf("%w: script %q: %v", ErrInvalidTrigger, s.src, err)
	}
	if strings.Contains(s.src, "pressed(") || strings.Contains(s.src, "value(") {
		s.requires |= needsInput
	}
	if strings.Contains(s.src, "event(") {
		s.requires |= needsEvents
	}
	return t
}

func (s *script) compile() error {
	sc := tengo.NewScript([]byte(scriptResult + " := (" + s.src + ")"))
	vars := map[string]any{
		"state_time":   0.0,
		"elapsed":      0.0,
		"tick":         0,
		"pressed":      s.inputFunc("pressed", func(in InputSnapshot, a string) tengo.Object { return boolObject(in.Pressed(a)) }),
		"just_pressed": s.inputFunc("just_pressed", func(in InputSnapshot, a string) tengo.Object { return boolObject(in.JustPressed(a)) }),
		"value":        s.inputFunc("value", func(in InputSnapshot, a string) tengo.Object { return &tengo.Float{Value: in.Value(a)} }),
		"event": &tengo.UserFunction{Name: "event", Value: func(args ...tengo.Object) (tengo.Object, error) {
			if s.ctx == nil || len(args) < 1 {
				return tengo.FalseValue, nil
			}
			name, _ := tengo.ToString(args[0])
			i := s.ctx.findEvent(name)
			if i < 0 {
				return tengo.FalseValue, nil
			}
			if s.ctx.exclusive {
				s.ctx.claims = append(s.ctx.claims, i)
			}
			return tengo.TrueValue, nil
		}},
	}
	for name, v := range vars {
		if err := sc.Add(name, v); err != nil {
			return err
		}
	}
	compiled, err := sc.Compile()
	if err != nil {
		return err
	}
	s.compiled = compiled
	return nil
}

func (s *script) inputFunc(name string, read func(InputSnapshot, string) tengo.Object) *tengo.UserFunction {
	return &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
		if s.ctx == nil || len(args) < 1 {
			return tengo.FalseValue, nil
		}
		in := s.ctx.Input()
		if in == nil {
			return tengo.FalseValue, nil
		}
		action, _ := tengo.ToString(args[0])
		return read(in, action), nil
	}}
}

func (s *script) evaluate(ctx *Context) Outcome {
	if s == nil || s.compiled == nil {
		return NotSatisfied
	}
	s.ctx = ctx
	defer func() { s.ctx = nil }()

	var tick uint64
	var elapsed float64
	if ctx.Tick != nil {
		tick = ctx.Tick.Number
		elapsed = ctx.Tick.Elapsed.Seconds()
	}
	if err := s.compiled.Set("state_time", ctx.StateTime().Seconds()); err != nil {
		return NotSatisfied
	}
	if err := s.compiled.Set("elapsed", elapsed); err != nil {
		return NotSatisfied
	}
	if err := s.compiled.Set("tick", int64(tick)); err != nil {
		return NotSatisfied
	}
	if err := s.compiled.Run(); err != nil {
		return NotSatisfied
	}
	ok, _ := s.compiled.Get(scriptResult).Value().(bool)
	return boolOutcome(ok)
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}
