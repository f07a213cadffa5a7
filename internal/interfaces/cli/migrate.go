package cli

import (
	"github.com/spf13/cobra"

	"github.com/safeharbor-io/safeharbor/internal/infrastructure/database/postgres"
)

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	var migrationsDir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
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

			dir := migrationsDir
			if dir == "" {
				dir = cfg.Database.MigrationPath
			}
			return conn.RunMigrations(dir)
		},
	}

	cmd.Flags().StringVar(&migrationsDir, "dir", "",
		"migrations directory (default: database.migration_path from config)")
	return cmd
}

//Personal.AI order the ending
