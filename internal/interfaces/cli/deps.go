package cli

import (
	"context"

	"github.com/turtacn/ExoMetrics/internal/app"
	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/database/postgres"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
)

// DefaultDependencies opens the real stores named by the configuration.
func DefaultDependencies() Dependencies {
	return Dependencies{
		OpenLocal: openLocal,
		OpenMigrator: func(cfg config.DatabaseConfig, logger logging.Logger) (Migrator, error) {
			return postgres.NewMigrator(cfg, cfg.MigrationPath, logger)
		},
	}
}

func openLocal(ctx context.Context, cfg *config.Config, logger logging.Logger) (Backend, func(), error) {
	// The CLI is short-lived; it neither serves nor pushes metrics.
	local := *cfg
	local.Metrics.Enabled = false

	infra, err := app.Open(ctx, &local, logger, "exoctl")
	if err != nil {
		return nil, nil, err
	}
	svcs, err := infra.NewServices(ctx)
	if err != nil {
		infra.Close()
		return nil, nil, err
	}
	return NewLocalBackend(svcs.Catalog, svcs.Comparison), infra.Close, nil
}

//Personal.AI order the ending
