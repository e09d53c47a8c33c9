package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tobyjamez/UDA/internal/app"
	"github.com/tobyjamez/UDA/internal/config"
	"github.com/tobyjamez/UDA/internal/observability"
)

var (
	configPath string
	source     string

	cfg    *config.Config
	wire   *app.Wire
	logger *zap.Logger
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "uda",
		Short:        "Read, plot and inspect data from a UDA data server",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg)

			logger, err = observability.SetupLogger(cfg.Log)
			if err != nil {
				return err
			}
			wire, err = app.NewWire(cmd.Context(), cfg, logger)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if wire != nil {
				_ = wire.Close()
			}
			if logger != nil {
				_ = logger.Sync()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: uda.yaml in ., ./configs or ~/.uda)")
	root.PersistentFlags().String("server", "", "data server base URL (overrides client.base_url)")
	root.PersistentFlags().String("backend", "", "plot backend: auto, octave or chart (overrides render.backend)")

	root.AddCommand(getCmd(), plotCmd(), widgetCmd(), serveCmd())
	return root
}

// applyFlags lets explicit flags win over file and environment settings.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if f := cmd.Flags().Lookup("server"); f != nil && f.Changed {
		cfg.Client.BaseURL = f.Value.String()
	}
	if f := cmd.Flags().Lookup("backend"); f != nil && f.Changed {
		cfg.Render.Backend = f.Value.String()
	}
}
