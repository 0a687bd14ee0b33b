package prefabs

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/statemachine/ecs"
	"github.com/milk9111/statemachine/fsm"
	"github.com/milk9111/statemachine/logging"
)

var (
	ErrUnknownState   = errors.New("prefabs: unknown state")
	ErrUnknownTrigger = errors.New("prefabs: unknown trigger")
	ErrUnknownAction  = errors.New("prefabs: unknown action")
)

// TriggerFactory builds a host trigger from its YAML argument. arg is nil
// when the trigger is written as a bare name.
type TriggerFactory func(arg *yaml.Node) (fsm.Trigger, error)

// ActionFactory builds a state hook from its YAML argument.
type ActionFactory func(arg *yaml.Node) (fsm.Hook, error)

// Registry maps the names used in definitions to states, triggers and
// actions.
type Registry struct {
	states   map[string]fsm.Target
	triggers map[string]TriggerFactory
	actions  map[string]ActionFactory
	dynamic  bool
}

func NewRegistry() *Registry {
	r := &Registry{
		states:   map[string]fsm.Target{},
		triggers: map[string]TriggerFactory{},
		actions:  map[string]ActionFactory{},
	}
	for name, f := range builtinActions {
		r.actions[name] = f
	}
	return r
}

// RegisterState binds name to the Go state type S, entered with value.
func RegisterState[S any](r *Registry, name string, value S) *Registry {
	return r.RegisterTarget(name, fsm.To(value))
}

// RegisterTarget binds name to an arbitrary target.
func (r *Registry) RegisterTarget(name string, t fsm.Target) *Registry {
	r.states[name] = t
	return r
}

// RegisterTrigger makes name usable as a trigger leaf.
func (r *Registry) RegisterTrigger(name string, f TriggerFactory) *Registry {
	r.triggers[name] = f
	return r
}

// RegisterAction makes name usable in on_enter and on_exit lists.
func (r *Registry) RegisterAction(name string, f ActionFactory) *Registry {
	r.actions[name] = f
	return r
}

// AllowDynamic resolves unregistered state names to runtime named states
// instead of failing.
func (r *Registry) AllowDynamic(on bool) *Registry {
	r.dynamic = on
	return r
}

// State resolves a state name.
func (r *Registry) State(name string) (fsm.Target, error) {
	if t, ok := r.states[name]; ok {
		return t, nil
	}
	if r.dynamic && name != "" {
		return fsm.ToNamed(name), nil
	}
	return fsm.Target{}, fmt.Errorf("%w %q", ErrUnknownState, name)
}

type eventHost interface {
	Events() *ecs.EventQueue
}

var builtinActions = map[string]ActionFactory{
	// emit raises a broadcast event carrying the entity.
	"emit": func(arg *yaml.Node) (fsm.Hook, error) {
		name, err := stringArg(arg)
		if err != nil {
			return nil, err
		}
		return func(w fsm.World, e ecs.Entity) {
			if h, ok := w.(eventHost); ok {
				h.Events().Emit(name, e)
			}
		}, nil
	},
	// signal raises an event addressed to the entity itself.
	"signal": func(arg *yaml.Node) (fsm.Hook, error) {
		name, err := stringArg(arg)
		if err != nil {
			return nil, err
		}
		return func(w fsm.World, e ecs.Entity) {
			if h, ok := w.(eventHost); ok {
				h.Events().EmitTo(e, name, nil)
			}
		}, nil
	},
	"done": func(arg *yaml.Node) (fsm.Hook, error) {
		status := fsm.DoneSuccess
		if arg != nil {
			s, err := parseStatus(arg.Value)
			if err != nil {
				return nil, err
			}
			if s != 0 {
				status = s
			}
		}
		return func(w fsm.World, e ecs.Entity) {
			_ = fsm.MarkDone(w, e, status, nil)
		}, nil
	},
	"log": func(arg *yaml.Node) (fsm.Hook, error) {
		msg, err := stringArg(arg)
		if err != nil {
			return nil, err
		}
		return func(_ fsm.World, e ecs.Entity) {
			logging.Log(logging.Get().Info(), msg, logging.Entity(e))
		}, nil
	},
}

func stringArg(arg *yaml.Node) (string, error) {
	if arg == nil || arg.Kind != yaml.ScalarNode || arg.Value == "" {
		return "", errors.New("expects a non-empty string")
	}
	return arg.Value, nil
}

func parseStatus(s string) (fsm.DoneStatus, error) {
	switch s {
	case "":
		return 0, nil
	case "success":
		return fsm.DoneSuccess, nil
	case "failure":
		return fsm.DoneFailure, nil
	}
	return 0, fmt.Errorf("unknown done status %q", s)
}
