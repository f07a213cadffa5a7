package cli

import (
	"github.com/spf13/cobra"

	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/postgres"
	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/postgres/repositories"
	"github.com/safeharbor-io/safeharbor/internal/intelligence/severity"
	"github.com/safeharbor-io/safeharbor/internal/worker"
)

func newEstimateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "estimate",
		Short: "Run one severity estimation pass over unrated reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			conn, err := postgres.NewConnection(cfg.Database, log)
			if err != nil {
				return err
			}
			defer conn.Close()

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
			runner.RunOnce(cmd.Context())
			return nil
		},
	}
}

//Personal.AI order the ending
