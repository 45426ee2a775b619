package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/claimtrack/internal/bootstrap"
	"github.com/turtacn/claimtrack/internal/infrastructure/database/postgres"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/claimtrack/pkg/errors"
)

type schemaMigrator interface {
	Up() error
	Down(steps int) error
	Status() (postgres.MigrationState, error)
	Force(version int) error
	Close() error
}

// openMigrator is replaced in tests.
var openMigrator = func(dsn, migrationsPath string, log logging.Logger) (schemaMigrator, error) {
	return postgres.NewMigrator(dsn, migrationsPath, log)
}

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the claim store schema",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last --steps migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m schemaMigrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				return printMigrationState(cmd, m)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m schemaMigrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					return printMigrationState(cmd, m)
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m schemaMigrator) error {
					return printMigrationState(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Mark the schema as VERSION without running migrations (clears a dirty state)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return errors.InvalidParam("VERSION must be an integer").WithDetail("version=" + args[0])
				}
				return withMigrator(cmd, func(m schemaMigrator) error {
					if err := m.Force(version); err != nil {
						return err
					}
					return printMigrationState(cmd, m)
				})
			},
		},
	)
	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(schemaMigrator) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg, err := cliCtx.LoadConfig()
	if err != nil {
		return err
	}

	dsn := bootstrap.PostgresConfig(cfg.Database).DSN()
	m, err := openMigrator(dsn, cfg.Database.MigrationsPath, cliCtx.Logger.Named("migrate"))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "cannot open migrator")
	}
	defer m.Close()
	return fn(m)
}

func printMigrationState(cmd *cobra.Command, m schemaMigrator) error {
	st, err := m.Status()
	if err != nil {
		return err
	}
	return PrintResult(cmd, st, func() string {
		dirty := ""
		if st.Dirty {
			dirty = " (dirty)"
		}
		return fmt.Sprintf("schema version %d%s\n", st.Version, dirty)
	})
}
