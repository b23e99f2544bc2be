package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/ExoMetrics/internal/infrastructure/database/postgres"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// NewMigrateCmd manages the database schema.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, m Migrator, args []string) error {
			if err := m.Down(steps); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("rolled back %d migration(s)", steps))
			return nil
		}),
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, m Migrator, args []string) error {
				if err := m.Up(); err != nil {
					return err
				}
				PrintSuccess(cmd, "schema is up to date")
				return nil
			}),
		},
		down,
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version and clear the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, m Migrator, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return errors.InvalidParam(fmt.Sprintf("invalid version %q", args[0]))
				}
				if err := m.Force(v); err != nil {
					return err
				}
				PrintSuccess(cmd, fmt.Sprintf("forced schema version %d", v))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the applied schema version",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, m Migrator, args []string) error {
				st, err := m.Status(ctx)
				if err != nil {
					return err
				}
				return PrintResult(cmd, cc.OutputFormat, statusView(st))
			}),
		},
	)
	return cmd
}

func withMigrator(fn func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, m Migrator, args []string) error) func(*cobra.Command, []string) error {
	return run(func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, args []string) error {
		if cc.deps.OpenMigrator == nil {
			return errors.Unavailable("migrations are not available")
		}
		m, err := cc.deps.OpenMigrator(cc.Config.Database, cc.Logger)
		if err != nil {
			return err
		}
		return fn(ctx, cmd, cc, m, args)
	})
}

type statusView postgres.MigrationStatus

func (v statusView) WriteText(w io.Writer) {
	switch {
	case !v.Applied:
		fmt.Fprintln(w, "No migrations applied")
	case v.Dirty:
		fmt.Fprintf(w, "Schema version %d (dirty)\n", v.Version)
	default:
		fmt.Fprintf(w, "Schema version %d\n", v.Version)
	}
}

//Personal.AI order the ending
