// Command kpidash computes dashboard KPI reports from an event store.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/kpidash/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil && !cli.Reported(err) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
