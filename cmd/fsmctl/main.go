// Command fsmctl validates and simulates state machine definitions.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/milk9111/statemachine/cli"
)

func main() {
	app := cli.New()

	if err := app.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
