// Package cmd holds the widget command line.
package cmd

import (
	grovelogging "github.com/mattsolo1/grove-core/logging"
	"github.com/spf13/cobra"
)

var log = grovelogging.NewLogger("grove-widget.cmd")

// AddCommands registers every widget subcommand on root.
func AddCommands(root *cobra.Command) {
	root.AddCommand(
		newChatCmd(),
		newSendCmd(),
		newLeadCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
}
