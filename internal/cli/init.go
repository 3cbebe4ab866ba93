package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/retaildwh/retail-etl/internal/db"
	"github.com/retaildwh/retail-etl/internal/logging"
	"github.com/retaildwh/retail-etl/internal/warehouse"
)

var initDropExisting bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the star schema in the warehouse",
	Long: `Create the star-schema tables (dimensions first, then the fact
table with its foreign keys) in the destination warehouse.

Example:
  retail-etl init --connection "postgres://..."
  retail-etl init --connection "postgres://..." --drop-existing`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing star-schema tables before creating them")
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateInit(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	names := tableNames()

	// Surface prior loads so re-initialization is visible in the logs.
	if metadata, err := db.GetAllMetadata(ctx, pool); err == nil && len(metadata) > 0 {
		logging.Info().
			Str("last_run_at", metadata["last_run_at"]).
			Str("version", metadata["version"]).
			Msg("Warehouse previously loaded")
	}

	if initDropExisting {
		logging.Warn().Msg("Dropping existing star-schema tables")
		if err := warehouse.DropSchema(ctx, pool, names); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
		if err := db.DropMetadata(ctx, pool); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
	}

	if err := warehouse.CreateSchema(ctx, pool, names); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	logging.Info().Msg("Warehouse initialization complete")
	return nil
}
