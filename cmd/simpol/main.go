// Command simpol is the command line client of the SIMPOL.1 estimator.
package main

import (
	"os"

	"github.com/turtacn/simpol/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
