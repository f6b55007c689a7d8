// Package main implements the pyflow CLI.
// It simulates Python programs from their entry function and renders the
// resulting execution-flow graph.
package main

import (
	"os"

	"github.com/l3aro/pyflow/cmd/pyflow/commands"
)

var (
	version   = "dev"
	buildTime = ""
)

func main() {
	commands.RootCmd.Version = version
	if buildTime != "" {
		commands.RootCmd.Version = version + " (" + buildTime + ")"
	}
	commands.RootCmd.SetVersionTemplate(`pyflow version {{.Version}}
`)

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
