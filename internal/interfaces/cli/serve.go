package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/claimtrack/internal/bootstrap"
	"github.com/turtacn/claimtrack/internal/config"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
)

func NewServeCmd() *cobra.Command {
	var (
		port  int
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP API",
		Long:  "Connects to the claim store and cache from configuration and serves the dashboard API until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg, err := cliCtx.LoadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			logger, err := bootstrap.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap.New(ctx, cfg, logger, Version)
			if err != nil {
				return err
			}

			if watch && cliCtx.ConfigPath() != "" {
				watchConfig(cliCtx.ConfigPath(), logger)
			}

			logger.Info("starting claimtrack API",
				logging.String("version", Version),
				logging.String("addr", cfg.Server.Address()),
				logging.Bool("kafka", cfg.Kafka.Enabled),
				logging.Bool("minio", cfg.MinIO.Enabled))
			return app.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	cmd.Flags().BoolVar(&watch, "watch-config", false, "log when the config file changes on disk")
	return cmd
}

// watchConfig reports edits to the running configuration. The server keeps
// its startup settings, so a valid edit is a restart reminder.
func watchConfig(path string, logger logging.Logger) {
	err := config.Watch(path,
		func(c *config.Config) {
			logger.Warn("configuration file changed; restart to apply",
				logging.String("path", path),
				logging.String("log_level", c.Log.Level),
				logging.String("timezone", c.Dashboard.Timezone))
		},
		func(err error) {
			logger.Error("changed configuration file is invalid", logging.String("path", path), logging.Err(err))
		})
	if err != nil {
		logger.Warn("config watch not started", logging.Err(err))
	}
}
