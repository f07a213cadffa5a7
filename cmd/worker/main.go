// worker runs the background processes: the severity estimation loop and
// the Kafka notification consumer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/safeharbor-io/safeharbor/internal/config"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/postgres"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/postgres/repositories"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/messaging/kafka"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/monitoring/logging"
	"github.com/safeharbor-io/safeharbor/internal/intelligence/severity"
	"github.com/safeharbor-io/safeharbor/internal/worker"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		return err
	}

	conn, err := postgres.NewConnection(cfg.Database, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Intelligence.Enabled {
		estimator, err := severity.NewGeminiEstimator(cfg.Intelligence, log)
		if err != nil {
			return err
		}
		runner := worker.NewRunner(
			repositories.NewPostgresReportRepo(conn, log),
			estimator,
			nil,
			cfg.Worker,
			log,
		)
		g.Go(func() error { return runner.Run(ctx) })
	} else {
		log.Info("severity estimation disabled")
	}

	if cfg.Notifier.Enabled {
		notifier := worker.NewNotifier(worker.NewSMTPMailer(cfg.Notifier), log)
		consumer, err := kafka.NewConsumer(cfg.Kafka, notifier.Handle, log)
		if err != nil {
			return err
		}
		g.Go(func() error {
			defer consumer.Close()
			return consumer.Run(ctx)
		})
	} else {
		log.Info("email notifications disabled")
	}

	return g.Wait()
}

//Personal.AI order the ending
