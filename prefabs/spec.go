package prefabs

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSpec is returned for definitions that do not parse.
var ErrInvalidSpec = errors.New("prefabs: invalid machine definition")

// MachineSpec is the YAML form of a state machine.
type MachineSpec struct {
	Name           string               `yaml:"name"`
	Initial        string               `yaml:"initial"`
	LogTransitions bool                 `yaml:"log_transitions"`
	States         map[string]StateSpec `yaml:"states"`
	Transitions    []TransitionSpec     `yaml:"transitions"`
}

// StateSpec holds per-state settings. States only referenced by transitions
// need no entry.
type StateSpec struct {
	Color   *YAMLColor   `yaml:"color"`
	OnEnter []ActionSpec `yaml:"on_enter"`
	OnExit  []ActionSpec `yaml:"on_exit"`
}

// TransitionSpec is one edge. From may be "any" or "*".
type TransitionSpec struct {
	From string      `yaml:"from"`
	To   string      `yaml:"to"`
	When TriggerSpec `yaml:"when"`
}

// TriggerSpec is a trigger tree. A leaf is either a bare name ("always",
// "done") or a single-key map whose value is the argument
// ({event: hit}, {after: 2s}, {value: {action: x, min: 0.5}}). Combinators
// take a list ({all: [...]}) or, for not, a single trigger.
type TriggerSpec struct {
	Kind     string
	Arg      string
	Min, Max float64
	After    time.Duration
	Children []TriggerSpec

	// Raw is the argument of a trigger resolved through the Registry.
	Raw  *yaml.Node
	Line int
}

func (t *TriggerSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value == "" {
			return fmt.Errorf("%w: line %d: empty trigger", ErrInvalidSpec, value.Line)
		}
		*t = TriggerSpec{Kind: value.Value, Line: value.Line}
		return nil
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("%w: line %d: trigger must have exactly one key", ErrInvalidSpec, value.Line)
		}
		key, arg := value.Content[0], value.Content[1]
		*t = TriggerSpec{Kind: key.Value, Line: key.Line}
		if err := t.decodeArg(arg); err != nil {
			return fmt.Errorf("%w: line %d: %s: %v", ErrInvalidSpec, key.Line, key.Value, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: line %d: trigger must be a name or a map", ErrInvalidSpec, value.Line)
	}
}

type rangeArg struct {
	Action string   `yaml:"action"`
	Min    *float64 `yaml:"min"`
	Max    *float64 `yaml:"max"`
}

func (t *TriggerSpec) decodeArg(arg *yaml.Node) error {
	switch t.Kind {
	case "event", "pressed", "just_pressed", "just_released", "script", "script_file":
		if arg.Kind != yaml.ScalarNode || arg.Value == "" {
			return errors.New("expects a non-empty string")
		}
		t.Arg = arg.Value
	case "done":
		t.Arg = arg.Value
	case "after":
		d, err := time.ParseDuration(arg.Value)
		if err != nil {
			return err
		}
		t.After = d
	case "value", "axis":
		var r rangeArg
		if err := arg.Decode(&r); err != nil {
			return err
		}
		t.Arg, t.Min, t.Max = r.Action, math.Inf(-1), math.Inf(1)
		if t.Kind == "axis" {
			t.Min = 0
		}
		if r.Min != nil {
			t.Min = *r.Min
		}
		if r.Max != nil {
			t.Max = *r.Max
		}
	case "not":
		var child TriggerSpec
		if err := arg.Decode(&child); err != nil {
			return err
		}
		t.Children = []TriggerSpec{child}
	case "all", "any", "then":
		if arg.Kind != yaml.SequenceNode {
			return errors.New("expects a list of triggers")
		}
		if err := arg.Decode(&t.Children); err != nil {
			return err
		}
		if t.Kind == "then" && len(t.Children) != 2 {
			return fmt.Errorf("expects 2 triggers, got %d", len(t.Children))
		}
	case "always", "never":
	default:
		t.Raw = arg
	}
	return nil
}

func (t TriggerSpec) String() string {
	switch {
	case len(t.Children) > 0:
		parts := make([]string, len(t.Children))
		for i, c := range t.Children {
			parts[i] = c.String()
		}
		return t.Kind + "(" + strings.Join(parts, ", ") + ")"
	case t.Arg != "":
		return t.Kind + "(" + t.Arg + ")"
	case t.After != 0:
		return t.Kind + "(" + t.After.String() + ")"
	default:
		return t.Kind
	}
}

// ActionSpec is a hook action, a single-key map such as {emit: swing}.
type ActionSpec struct {
	Name string
	Arg  *yaml.Node
	Line int
}

func (a *ActionSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*a = ActionSpec{Name: value.Value, Line: value.Line}
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("%w: line %d: action must have exactly one key", ErrInvalidSpec, value.Line)
		}
		*a = ActionSpec{Name: value.Content[0].Value, Arg: value.Content[1], Line: value.Line}
	default:
		return fmt.Errorf("%w: line %d: action must be a name or a map", ErrInvalidSpec, value.Line)
	}
	return nil
}

// Parse decodes one machine definition. Unknown fields are rejected.
func Parse(data []byte) (MachineSpec, error) {
	var spec MachineSpec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		if errors.Is(err, ErrInvalidSpec) {
			return MachineSpec{}, err
		}
		return MachineSpec{}, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	return spec, nil
}

// LoadSpec reads and parses the machine called name, preferring dir over the
// embedded copy.
func LoadSpec(dir, name string) (MachineSpec, error) {
	data, err := Load(dir, name)
	if err != nil {
		return MachineSpec{}, fmt.Errorf("prefabs: load %s: %w", name, err)
	}
	spec, err := Parse(data)
	if err != nil {
		return MachineSpec{}, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	if spec.Name == "" {
		spec.Name = MachineName(name)
	}
	return spec, nil
}

// YAMLColor is a "#rrggbb" or "#rrggbbaa" colour.
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	var rgba [4]uint8
	rgba[3] = 255
	for i := 0; i < len(s)/2; i++ {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return fmt.Errorf("invalid color format: %s", value.Value)
		}
		rgba[i] = uint8(v)
	}
	c.Color = color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	return nil
}
