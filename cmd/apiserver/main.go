// Command apiserver serves the claimtrack dashboard API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "time/tzdata"

	"github.com/turtacn/claimtrack/internal/bootstrap"
	"github.com/turtacn/claimtrack/internal/config"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
)

const defaultConfigPath = "configs/config.yaml"

var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *httpPort); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, httpPort int) error {
	cfg, err := config.Load(config.WithConfigPath(configPath))
	if err != nil {
		return err
	}
	if httpPort > 0 {
		cfg.Server.Port = httpPort
	}

	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting claimtrack API server",
		logging.String("version", version),
		logging.String("config", configPath),
		logging.String("address", cfg.Server.Address()))

	app, err := bootstrap.New(ctx, cfg, logger, version)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
