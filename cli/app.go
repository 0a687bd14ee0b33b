// Package cli implements fsmctl, a command-line tool for checking and
// simulating machine definitions.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/milk9111/statemachine/config"
	"github.com/milk9111/statemachine/logging"
	"github.com/milk9111/statemachine/prefabs"
)

// Version information set at build time.
var Version = "dev"

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	cfg config.Config
	dir string
}

func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "fsmctl",
		Short: "Validate and simulate entity state machines",
		Long: `fsmctl loads state machine definitions, the embedded ones plus any found
in the machine directory, and checks or runs them without a game loop.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}
	app.root.PersistentFlags().StringVar(&app.dir, "dir", "", "machine directory (default $FSM_MACHINE_DIR)")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newListCmd(),
		app.newValidateCmd(),
		app.newSimulateCmd(),
		app.newGraphCmd(),
	)
	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments.
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("dir") {
		cfg.MachineDir = a.dir
	}
	lc := cfg.Logging()
	lc.Output = a.stderr
	logging.Init(lc)
	a.cfg = cfg
	return nil
}

// library loads every definition. Failures are returned alongside the
// library so callers can still use the good ones.
func (a *App) library() (*prefabs.Library, error) {
	lib := prefabs.NewLibrary(prefabs.NewRegistry().AllowDynamic(true), prefabs.WithDir(a.cfg.MachineDir))
	return lib, lib.LoadAll()
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "fsmctl version %s\n", Version)
		},
	}
}

func (a *App) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available machine definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := prefabs.List(a.cfg.MachineDir)
			if err != nil {
				return err
			}
			for _, name := range names {
				source := "embedded"
				if _, ok := prefabs.ModTime(a.cfg.MachineDir, name); ok {
					source = a.cfg.MachineDir
				}
				fmt.Fprintf(a.stdout, "%-16s %s\n", name, source)
			}
			return nil
		},
	}
}
