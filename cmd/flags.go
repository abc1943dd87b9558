package cmd

import (
	"github.com/spf13/cobra"
)

// widgetFlags are the per-invocation overrides shared by the client commands.
type widgetFlags struct {
	apiURL    string
	clinicID  string
	sessionID string
	theme     string
	timeout   string
}

func (f *widgetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.apiURL, "api-url", "", "Base URL of the chat service")
	cmd.Flags().StringVarP(&f.clinicID, "clinic", "c", "", "Clinic identifier")
	cmd.Flags().StringVar(&f.sessionID, "session", "", "Resume an existing session id")
	cmd.Flags().StringVar(&f.theme, "theme", "", "Accent colour for the panel header")
	cmd.Flags().StringVar(&f.timeout, "timeout", "", "Per-request timeout (e.g. 10s)")
}

// apply overrides cfg with the flags the user actually set.
func (f *widgetFlags) apply(cmd *cobra.Command, cfg *WidgetConfig) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("api-url", &cfg.APIURL, f.apiURL)
	set("clinic", &cfg.ClinicID, f.clinicID)
	set("session", &cfg.SessionID, f.sessionID)
	set("theme", &cfg.Theme, f.theme)
	set("timeout", &cfg.Timeout, f.timeout)
}

// resolveConfig loads the layered config and applies flags on top.
func (f *widgetFlags) resolveConfig(cmd *cobra.Command) (*WidgetConfig, error) {
	cfg, err := loadWidgetConfig()
	if err != nil {
		return nil, err
	}
	f.apply(cmd, cfg)
	return cfg, nil
}
