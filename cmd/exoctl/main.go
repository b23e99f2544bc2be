// exoctl compares exoplanets with Earth from the command line, against a
// running API server or a local catalog database.
package main

import (
	"os"

	"github.com/turtacn/ExoMetrics/internal/interfaces/cli"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = gitCommit
	cli.BuildDate = buildDate

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
