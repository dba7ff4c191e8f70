// Package main is the entry point for the plasmid CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tOgg1/plasmid-browser/internal/cli"
)

// Version information (set via -ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(fmt.Sprintf("%s (%s, %s)", version, commit, date)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
