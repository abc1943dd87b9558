package main

import (
	"os"

	"github.com/mattsolo1/grove-core/cli"
	"github.com/mattsolo1/grove-widget/cmd"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"widget",
		"Chat and callback widget for clinic websites",
	)

	cmd.AddCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
