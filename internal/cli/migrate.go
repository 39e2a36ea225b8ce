package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/localguide/internal/control"
	"github.com/vietddude/localguide/internal/core/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the bundled schema migrations to the SQL backend",
	Run:   runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if cfg.Backend.Driver != config.DriverPostgres && cfg.Backend.Driver != config.DriverSQLite {
		slog.Error("Migrations need a postgres or sqlite backend", "driver", cfg.Backend.Driver)
		os.Exit(1)
	}

	ctx := context.Background()
	cfg.Backend.AutoMigrate = false
	_, store, err := control.OpenBackend(ctx, cfg.Backend, cfg.Request.Timeout)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close()
	}()

	version, err := store.Migrate(ctx)
	if err != nil {
		slog.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Database %s at version %d\n", store.Dialect(), version)
}
