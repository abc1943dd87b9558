package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattsolo1/grove-core/cli"
	"github.com/mattsolo1/grove-widget/pkg/lead"
	"github.com/mattsolo1/grove-widget/pkg/widget"
	"github.com/spf13/cobra"
)

func newLeadCmd() *cobra.Command {
	var flags widgetFlags
	var fields lead.Fields

	cmd := &cobra.Command{
		Use:   "lead",
		Short: "Request a callback from the clinic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolveConfig(cmd)
			if err != nil {
				return err
			}
			opts, err := cfg.WidgetOptions()
			if err != nil {
				return err
			}
			// nothing waits for the modal to close in a one-shot command
			w, err := widget.New(opts, newLineSurface(),
				widget.WithLeadOptions(lead.WithScheduler(func(d time.Duration, f func()) { f() })))
			if err != nil {
				return fmt.Errorf("cannot start widget: %w", err)
			}

			w.OpenLead()
			res, err := w.SubmitLead(context.Background(), fields)
			if err != nil {
				return err
			}

			if cli.GetOptions(cmd).JSONOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(map[string]any{"ok": res.OK, "status": res.Status}); err != nil {
					return err
				}
			} else if res.OK {
				fmt.Println(color.GreenString("✓ %s", res.Status))
			} else {
				fmt.Fprintln(os.Stderr, color.RedString("✗ %s", res.Status))
			}

			if !res.OK {
				return fmt.Errorf("lead not sent: %w", res.Err)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&fields.Name, "name", "", "Your name")
	cmd.Flags().StringVar(&fields.Phone, "phone", "", "Phone number to call back")
	cmd.Flags().StringVarP(&fields.Message, "message", "m", "", "Optional message for the clinic")
	return cmd
}
