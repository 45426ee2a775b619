// Command worker applies claim record updates from kafka to the claim store.
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

var version = "dev"

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	healthPort := flag.Int("health-port", 0, "health and metrics port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *healthPort); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, healthPort int) error {
	cfg, err := config.Load(config.WithConfigPath(configPath))
	if err != nil {
		return err
	}
	if healthPort > 0 {
		cfg.Worker.HealthPort = healthPort
	}

	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting claimtrack sync worker",
		logging.String("version", version),
		logging.String("config", configPath),
		logging.Any("brokers", cfg.Kafka.Brokers))

	w, err := bootstrap.NewWorker(ctx, cfg, logger, version)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
