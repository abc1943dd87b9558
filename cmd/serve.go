package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattsolo1/grove-widget/pkg/devserver"
	"github.com/spf13/cobra"
)

const defaultServeAddr = ":8000"

func newServeCmd() *cobra.Command {
	var addr, clinicsFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local development chat service",
		Long: `Run a local stand-in for the chat service on --addr.

Replies come from OpenAI when OPENAI_API_KEY is set, otherwise from an
offline echo assistant. Clinic profiles are read from --clinics; without
it the demo clinic "` + devserver.DemoClinicID + `" is served.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWidgetConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") || cfg.Server.Addr == "" {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("clinics") {
				cfg.Server.ClinicsFile = clinicsFile
			}

			clinics := devserver.DemoDirectory()
			if cfg.Server.ClinicsFile != "" {
				clinics, err = devserver.LoadDirectory(cfg.Server.ClinicsFile)
				if err != nil {
					return err
				}
			}

			var assistant devserver.Assistant = devserver.EchoAssistant{}
			if key := os.Getenv("OPENAI_API_KEY"); key != "" {
				assistant = devserver.NewOpenAIAssistant(key, cfg.Server.OpenAIModel, cfg.Server.OpenAIBaseURL)
				log.WithField("model", cfg.Server.OpenAIModel).Info("Using OpenAI assistant")
			} else {
				log.Info("OPENAI_API_KEY not set, using offline echo assistant")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return devserver.New(cfg.DevServerConfig(), clinics, assistant).ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr, "Listen address")
	cmd.Flags().StringVar(&clinicsFile, "clinics", "", "YAML file of clinic profiles")
	return cmd
}
