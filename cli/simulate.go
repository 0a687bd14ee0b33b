package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/milk9111/statemachine/ecs"
	"github.com/milk9111/statemachine/fsm"
	"github.com/milk9111/statemachine/input"
	"github.com/milk9111/statemachine/logging"
	"github.com/milk9111/statemachine/prefabs"
)

type simulateOptions struct {
	ticks    int
	entities int
	rate     int
	delivery string
	events   []string
	presses  []string
	releases []string
	done     []string
}

// cue is one scripted host action.
type cue struct {
	tick uint64
	name string
	arg  string
}

func (a *App) newSimulateCmd() *cobra.Command {
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate <name>",
		Short: "Run a machine headlessly and print its state every tick",
		Long: `Simulate attaches the named machine to one or more entities and runs the
transition pass for a fixed number of ticks. Host activity is scripted with
tick-prefixed cues, applied before the pass of that tick.

Examples:
  fsmctl simulate fighter --ticks 12 --event 2:attack --done 5
  fsmctl simulate combo --press 1:attack --release 2:attack --press 3:attack
  fsmctl simulate door --event 1:interact=player --entities 3 --delivery exclusive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.simulate(args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.ticks, "ticks", "n", 10, "number of ticks to run")
	cmd.Flags().IntVar(&opts.entities, "entities", 1, "number of entities running the machine")
	cmd.Flags().IntVar(&opts.rate, "rate", 0, "ticks per second (default $FSM_TICK_RATE)")
	cmd.Flags().StringVar(&opts.delivery, "delivery", "", "event delivery, broadcast or exclusive (default $FSM_EVENT_DELIVERY)")
	cmd.Flags().StringArrayVar(&opts.events, "event", nil, "raise an event, tick:name[=data]")
	cmd.Flags().StringArrayVar(&opts.presses, "press", nil, "press an action, tick:action")
	cmd.Flags().StringArrayVar(&opts.releases, "release", nil, "release an action, tick:action")
	cmd.Flags().StringArrayVar(&opts.done, "done", nil, "mark every entity done, tick[:success|failure]")

	return cmd
}

func parseCues(flag string, values []string, needName bool) ([]cue, error) {
	out := make([]cue, 0, len(values))
	for _, v := range values {
		tickStr, rest, _ := strings.Cut(v, ":")
		n, err := strconv.ParseUint(tickStr, 10, 64)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("--%s %q: tick must be a positive integer", flag, v)
		}
		name, arg, _ := strings.Cut(rest, "=")
		if needName && name == "" {
			return nil, fmt.Errorf("--%s %q: missing name", flag, v)
		}
		out = append(out, cue{tick: n, name: name, arg: arg})
	}
	return out, nil
}

func (a *App) simulate(name string, opts *simulateOptions) error {
	if opts.entities < 1 {
		return fmt.Errorf("--entities must be at least 1")
	}
	events, err := parseCues("event", opts.events, true)
	if err != nil {
		return err
	}
	presses, err := parseCues("press", opts.presses, true)
	if err != nil {
		return err
	}
	releases, err := parseCues("release", opts.releases, true)
	if err != nil {
		return err
	}
	dones, err := parseCues("done", opts.done, false)
	if err != nil {
		return err
	}

	lib := prefabs.NewLibrary(prefabs.NewRegistry().AllowDynamic(true), prefabs.WithDir(a.cfg.MachineDir))
	if err := lib.Load(name); err != nil {
		return err
	}

	cfg := a.cfg
	if opts.rate > 0 {
		cfg.TickRate = opts.rate
	}
	if opts.delivery != "" {
		cfg.EventDelivery = opts.delivery
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	w := ecs.NewWorld()
	in := input.New()
	en := fsm.NewEngine(cfg.EngineOptions(
		fsm.WithInputSource(in.Source()),
		fsm.WithErrorHandler(func(err error) {
			fmt.Fprintf(a.stdout, "  ! %v\n", err)
		}),
	)...)

	ents := make([]ecs.Entity, opts.entities)
	machines := make([]*fsm.StateMachine, opts.entities)
	for i := range ents {
		m, err := lib.Instantiate(prefabs.MachineName(name))
		if err != nil {
			return err
		}
		ents[i] = w.CreateEntity()
		if err := en.Attach(w, ents[i], m); err != nil {
			return err
		}
		machines[i] = m
	}

	prev := make([]fsm.StateID, len(machines))
	a.printStates(0, ents, machines, prev)

	for i := 0; i < opts.ticks; i++ {
		tick := en.Clock().Number + 1
		for _, c := range presses {
			if c.tick == tick {
				in.Press(c.name)
			}
		}
		for _, c := range releases {
			if c.tick == tick {
				in.Release(c.name)
			}
		}
		for _, c := range events {
			if c.tick == tick {
				var data any
				if c.arg != "" {
					data = c.arg
				}
				w.Events().Emit(c.name, data)
			}
		}
		for _, c := range dones {
			if c.tick != tick {
				continue
			}
			status := fsm.DoneSuccess
			if c.name == "failure" {
				status = fsm.DoneFailure
			}
			var markErr error
			ecs.ForEach(w, fsm.MachineComponent, func(e ecs.Entity, _ *fsm.StateMachine) {
				if err := fsm.MarkDone(w, e, status, nil); err != nil && markErr == nil {
					markErr = err
				}
			})
			if markErr != nil {
				return markErr
			}
		}

		en.Step(w, en.NextTick(w))
		in.Advance()
		a.printStates(tick, ents, machines, prev)
	}

	logging.Log(logging.Get().Debug(), "simulation finished",
		logging.Machine(name),
		logging.Tick(en.Clock().Number),
	)
	return nil
}

// printStates writes one line per tick, marking entities that changed state.
func (a *App) printStates(tick uint64, ents []ecs.Entity, machines []*fsm.StateMachine, prev []fsm.StateID) {
	var b strings.Builder
	fmt.Fprintf(&b, "%4d", tick)
	for i, m := range machines {
		cur := m.Current()
		mark := " "
		if !prev[i].IsZero() && !prev[i].Equal(cur) {
			mark = "*"
		}
		fmt.Fprintf(&b, "  %s %s%s", ents[i], cur, mark)
		prev[i] = cur
	}
	fmt.Fprintln(a.stdout, b.String())
}
