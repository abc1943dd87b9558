package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattsolo1/grove-core/cli"
	"github.com/mattsolo1/grove-widget/pkg/chat"
	"github.com/mattsolo1/grove-widget/pkg/transcript"
	"github.com/mattsolo1/grove-widget/pkg/widget"
	"github.com/spf13/cobra"
)

// sendResult is the --json output of 'widget send'.
type sendResult struct {
	Outcome    string `json:"outcome"`
	Reply      string `json:"reply"`
	SessionID  string `json:"session_id,omitempty"`
	BookingURL string `json:"booking_url,omitempty"`
	Handoff    bool   `json:"handoff,omitempty"`
}

func newSendCmd() *cobra.Command {
	var flags widgetFlags
	var book bool

	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send one message and print the reply",
		Long: `Send one message to the chat service and print the assistant's reply.

The session id assigned by the service is printed so a later call can
continue the conversation with --session.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolveConfig(cmd)
			if err != nil {
				return err
			}
			opts, err := cfg.WidgetOptions()
			if err != nil {
				return err
			}
			w, err := widget.New(opts, newLineSurface())
			if err != nil {
				return fmt.Errorf("cannot start widget: %w (set clinic_id in grove.yml, %sCLINIC_ID or --clinic)", err, envPrefix)
			}

			res, err := w.Send(context.Background(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			if cli.GetOptions(cmd).JSONOutput {
				out := sendResult{
					Outcome:    res.Outcome.String(),
					Reply:      res.BotText,
					SessionID:  w.Session().SessionID(),
					BookingURL: w.Session().BookingURL(),
				}
				if res.Response != nil {
					out.Handoff = res.Response.Handoff
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(out); err != nil {
					return err
				}
			} else {
				printSendResult(w, res)
			}

			if res.Outcome != chat.OutcomeReplied {
				return fmt.Errorf("send failed: %s", res.Outcome)
			}
			if book {
				return w.ClickAction(w.Transcript().LastBot(), transcript.ActionBookAppointment)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&book, "book", false, "Open the booking page after the reply")
	return cmd
}

func printSendResult(w *widget.Widget, res chat.Result) {
	if res.Outcome != chat.OutcomeReplied {
		fmt.Fprintln(os.Stderr, color.RedString("✗ %s", res.BotText))
		return
	}
	fmt.Println(res.BotText)
	fmt.Println()
	if res.Response != nil && res.Response.Handoff {
		fmt.Println(color.YellowString("! handed off: %s", res.Response.HandoffReason))
	}
	if id := w.Session().SessionID(); id != "" {
		fmt.Printf("%s %s\n", color.New(color.Faint).Sprint("session:"), id)
	}
	if url := w.Session().BookingURL(); url != "" {
		fmt.Printf("%s %s\n", color.New(color.Faint).Sprint("book:"), color.CyanString(url))
	}
}
