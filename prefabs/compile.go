package prefabs

import (
	"fmt"
	"maps"
	"slices"

	"github.com/milk9111/statemachine/fsm"
)

// Compile turns a definition into a Builder. Scripts referenced with
// script_file are read from the embedded set.
func Compile(spec MachineSpec, reg *Registry) (*fsm.Builder, error) {
	return compiler{reg: reg}.compile(spec)
}

type compiler struct {
	reg *Registry
	dir string
}

func (c compiler) compile(spec MachineSpec) (*fsm.Builder, error) {
	if c.reg == nil {
		c.reg = NewRegistry()
	}
	fail := func(format string, args ...any) (*fsm.Builder, error) {
		return nil, fmt.Errorf("prefabs: %s: "+format, append([]any{spec.Name}, args...)...)
	}

	if spec.Initial == "" {
		return fail("%w", fsm.ErrNoInitialState)
	}
	initial, err := c.reg.State(spec.Initial)
	if err != nil {
		return fail("initial: %w", err)
	}
	b := fsm.NewBuilder().
		Name(spec.Name).
		SetInitialState(initial).
		LogTransitions(spec.LogTransitions)

	for _, name := range slices.Sorted(maps.Keys(spec.States)) {
		st := spec.States[name]
		target, err := c.reg.State(name)
		if err != nil {
			return fail("states: %w", err)
		}
		for _, a := range st.OnEnter {
			hook, err := c.action(a)
			if err != nil {
				return fail("state %s: on_enter: %w", name, err)
			}
			b.OnEnter(target.State(), hook)
		}
		for _, a := range st.OnExit {
			hook, err := c.action(a)
			if err != nil {
				return fail("state %s: on_exit: %w", name, err)
			}
			b.OnExit(target.State(), hook)
		}
	}

	for i, tr := range spec.Transitions {
		from := fsm.AnyState
		if tr.From != "any" && tr.From != "*" {
			src, err := c.reg.State(tr.From)
			if err != nil {
				return fail("transition %d: from: %w", i, err)
			}
			from = fsm.FromID(src.State())
		}
		to, err := c.reg.State(tr.To)
		if err != nil {
			return fail("transition %d: to: %w", i, err)
		}
		trig, err := c.trigger(tr.When)
		if err != nil {
			return fail("transition %d: %w", i, err)
		}
		b.AddTransition(from, trig, to)
	}
	return b, nil
}

func (c compiler) trigger(t TriggerSpec) (fsm.Trigger, error) {
	children := func() ([]fsm.Trigger, error) {
		out := make([]fsm.Trigger, len(t.Children))
		for i, child := range t.Children {
			tr, err := c.trigger(child)
			if err != nil {
				return nil, err
			}
			out[i] = tr
		}
		return out, nil
	}

	switch t.Kind {
	case "always":
		return fsm.Always(), nil
	case "never":
		return fsm.Never(), nil
	case "done":
		status, err := parseStatus(t.Arg)
		if err != nil {
			return fsm.Trigger{}, fmt.Errorf("line %d: %w", t.Line, err)
		}
		if status == 0 {
			return fsm.OnDone(), nil
		}
		return fsm.OnDoneStatus(status), nil
	case "event":
		return fsm.OnEvent(t.Arg), nil
	case "pressed":
		return fsm.Pressed(t.Arg), nil
	case "just_pressed":
		return fsm.JustPressed(t.Arg), nil
	case "just_released":
		return fsm.JustReleased(t.Arg), nil
	case "value":
		return fsm.Value(t.Arg, t.Min, t.Max), nil
	case "axis":
		return fsm.AxisLength(t.Arg, t.Min, t.Max), nil
	case "after":
		return fsm.After(t.After), nil
	case "script":
		return fsm.Script(t.Arg), nil
	case "script_file":
		src, err := Load(c.dir, t.Arg)
		if err != nil {
			return fsm.Trigger{}, fmt.Errorf("line %d: script %s: %w", t.Line, t.Arg, err)
		}
		return fsm.Script(string(src)), nil
	case "not", "all", "any", "then":
		cs, err := children()
		if err != nil {
			return fsm.Trigger{}, err
		}
		if (t.Kind == "not" && len(cs) != 1) || (t.Kind == "then" && len(cs) != 2) {
			return fsm.Trigger{}, fmt.Errorf("line %d: %s: wrong number of triggers (%d)", t.Line, t.Kind, len(cs))
		}
		switch t.Kind {
		case "not":
			return fsm.Not(cs[0]), nil
		case "all":
			return fsm.All(cs...), nil
		case "any":
			return fsm.AnyOf(cs...), nil
		default:
			return fsm.Then(cs[0], cs[1]), nil
		}
	}

	f, ok := c.reg.triggers[t.Kind]
	if !ok {
		return fsm.Trigger{}, fmt.Errorf("line %d: %w %q", t.Line, ErrUnknownTrigger, t.Kind)
	}
	tr, err := f(t.Raw)
	if err != nil {
		return fsm.Trigger{}, fmt.Errorf("line %d: %s: %w", t.Line, t.Kind, err)
	}
	return tr, nil
}

func (c compiler) action(a ActionSpec) (fsm.Hook, error) {
	f, ok := c.reg.actions[a.Name]
	if !ok {
		return nil, fmt.Errorf("line %d: %w %q", a.Line, ErrUnknownAction, a.Name)
	}
	hook, err := f(a.Arg)
	if err != nil {
		return nil, fmt.Errorf("line %d: %s: %w", a.Line, a.Name, err)
	}
	return hook, nil
}
