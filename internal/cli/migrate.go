package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"quiz-admin-service/internal/config"
	"quiz-admin-service/internal/infra/bunstore"
	"quiz-admin-service/internal/logging"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Storage.Driver == config.DriverMemory {
		return fmt.Errorf("storage driver %q has no schema to migrate", cfg.Storage.Driver)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	ctx = logging.NewContext(ctx, logrus.NewEntry(logger))

	db, err := openSQL(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return bunstore.Migrate(ctx, db)
}
