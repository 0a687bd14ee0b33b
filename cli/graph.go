package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *App) newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph <name>",
		Short: "Print a machine as a Graphviz digraph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.graph(args[0])
		},
	}
}

func (a *App) graph(name string) error {
	lib, err := a.library()
	m, ierr := lib.Instantiate(name)
	if ierr != nil {
		if err != nil {
			return err
		}
		return ierr
	}

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", name)
	fmt.Fprintf(&b, "  %q [shape=doublecircle];\n", m.Initial().String())
	for i := 0; i < m.Len(); i++ {
		from, trig, to := m.Edge(i)
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", from.String(), to.String(), fmt.Sprintf("%d: %s", i, trig))
	}
	b.WriteString("}\n")
	_, err = fmt.Fprint(a.stdout, b.String())
	return err
}
