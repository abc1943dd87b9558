package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/mattsolo1/grove-widget/cmd/widget_tui"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var flags widgetFlags

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the chat widget in the terminal",
		Long: `Open the interactive chat widget.

Press ctrl+o to open the panel, enter to send, alt+enter for a new line,
ctrl+b to open the booking page and ctrl+l to request a callback.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("widget chat requires an interactive terminal; use 'widget send' instead")
			}
			cfg, err := flags.resolveConfig(cmd)
			if err != nil {
				return err
			}
			opts, err := cfg.WidgetOptions()
			if err != nil {
				return err
			}
			return widget_tui.Run(opts)
		},
	}

	flags.register(cmd)
	return cmd
}
