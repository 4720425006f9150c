package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aikawam/vcwatch/internal/config"
	"github.com/aikawam/vcwatch/internal/logging"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to the gateway and watch the target voice channel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.New())
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.WithLevel(cfg.LogLevel))
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			app, err := wireApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			return app.run(cmd.Context())
		},
	}
}
