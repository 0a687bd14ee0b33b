package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/milk9111/statemachine/fsm"
	"github.com/milk9111/statemachine/prefabs"
)

// ErrInvalidMachines is returned when validate finds broken definitions.
var ErrInvalidMachines = errors.New("invalid machine definitions")

func (a *App) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [name|file ...]",
		Short: "Compile definitions and report configuration errors",
		Long: `Validate compiles each named definition, or every available one when no
names are given, and reports unknown states and triggers, unreachable
source states, payload mismatches and script syntax errors.

Examples:
  fsmctl validate
  fsmctl validate fighter door
  fsmctl validate ./machines/turret.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validate(args)
		},
	}
}

func (a *App) validate(args []string) error {
	if len(args) == 0 {
		names, err := prefabs.List(a.cfg.MachineDir)
		if err != nil {
			return err
		}
		args = names
	}

	reg := prefabs.NewRegistry().AllowDynamic(true)
	failed := 0
	for _, arg := range args {
		m, err := a.compile(reg, arg)
		if err != nil {
			failed++
			fmt.Fprintf(a.stdout, "✗ %s\n    %v\n", arg, err)
			continue
		}
		fmt.Fprintf(a.stdout, "✓ %s: initial %s, %d transitions\n", arg, m.Initial(), m.Len())
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidMachines, failed, len(args))
	}
	return nil
}

// compile accepts a machine name or a path to a definition file.
func (a *App) compile(reg *prefabs.Registry, arg string) (*fsm.StateMachine, error) {
	var spec prefabs.MachineSpec
	if data, err := os.ReadFile(arg); err == nil {
		spec, err = prefabs.Parse(data)
		if err != nil {
			return nil, err
		}
		if spec.Name == "" {
			spec.Name = prefabs.MachineName(arg)
		}
	} else {
		spec, err = prefabs.LoadSpec(a.cfg.MachineDir, arg)
		if err != nil {
			return nil, err
		}
	}
	b, err := prefabs.Compile(spec, reg)
	if err != nil {
		return nil, err
	}
	return b.Build()
}
