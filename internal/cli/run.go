package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/retaildwh/retail-etl/internal/db"
	"github.com/retaildwh/retail-etl/internal/etl"
	"github.com/retaildwh/retail-etl/internal/logging"
	"github.com/retaildwh/retail-etl/internal/source"
	"github.com/retaildwh/retail-etl/internal/warehouse"
)

var (
	runTransactions string
	runProducts     string
	runCustomers    string
	runEncoding     string
	runBatchSize    int
	runDryRun       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ETL batch from extracts into the warehouse",
	Long: `Run one ETL batch: read the transactions extract, normalize and
reject bad rows, build the star schema in memory, and load it into the
warehouse created by 'init'. Existing table contents are replaced.

Example:
  retail-etl run --transactions transactions.csv --connection "postgres://..."
  retail-etl run --transactions tx.csv --products products.json --customers customers.json`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runTransactions, "transactions", "",
		"path of the transactions extract (.csv or .json)")
	runCmd.Flags().StringVar(&runProducts, "products", "",
		"path of the product catalog (optional)")
	runCmd.Flags().StringVar(&runCustomers, "customers", "",
		"path of the customer catalog (optional)")
	runCmd.Flags().StringVar(&runEncoding, "encoding", "",
		"transactions extract encoding: utf-8, latin1, windows-1252")
	runCmd.Flags().IntVar(&runBatchSize, "batch-size", 0,
		"rows per batched insert")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false,
		"transform and report without touching the warehouse")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if runTransactions != "" {
		cfg.Source.Transactions = runTransactions
	}
	if runProducts != "" {
		cfg.Source.Products = runProducts
	}
	if runCustomers != "" {
		cfg.Source.Customers = runCustomers
	}
	if runEncoding != "" {
		cfg.Source.Encoding = runEncoding
	}
	if runBatchSize > 0 {
		cfg.Load.BatchSize = runBatchSize
	}

	// Dry runs never touch the warehouse, so no connection is needed.
	if runDryRun {
		if err := cfg.ValidateDryRun(); err != nil {
			return err
		}
	} else if err := cfg.ValidateRun(); err != nil {
		return err
	}

	catalogs, err := loadCatalogs()
	if err != nil {
		return fmt.Errorf("read phase: %w", err)
	}

	src, err := source.Open(cfg.Source.Transactions, cfg.Source.Encoding)
	if err != nil {
		return fmt.Errorf("read phase: %w", err)
	}
	defer src.Close()

	logging.Info().
		Str("transactions", cfg.Source.Transactions).
		Str("encoding", cfg.Source.Encoding).
		Bool("dry_run", runDryRun).
		Msg("Starting ETL run")

	ctx := context.Background()
	names := tableNames()

	if runDryRun {
		pipeline := &etl.Pipeline{Writer: discardWriter{}, Tables: names, Catalogs: catalogs}
		report, err := pipeline.Run(ctx, src)
		if err != nil {
			return err
		}
		logReport(report)
		return nil
	}

	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Replace semantics: each run reloads the full star schema.
	if lastRun, err := db.GetMetadataValue(ctx, pool, "last_run_at"); err == nil {
		logging.Debug().Str("last_run_at", lastRun).Msg("Replacing previous load")
	}
	if err := warehouse.TruncateTables(ctx, pool, names); err != nil {
		return fmt.Errorf("write phase: %w", err)
	}

	pipeline := &etl.Pipeline{
		Writer:   warehouse.NewWriter(pool, cfg.Load.BatchSize),
		Tables:   names,
		Catalogs: catalogs,
	}

	report, err := pipeline.Run(ctx, src)
	if err != nil {
		return err
	}

	summary := db.RunSummary{
		RowsRead:     report.RowsRead,
		RowsAccepted: report.Accepted,
		RowsRejected: report.Rejected,
		RowsWritten:  report.RowsWritten,
		Elapsed:      report.Elapsed,
	}
	if err := db.SaveRunMetadata(ctx, pool, summary); err != nil {
		logging.Warn().Err(err).Msg("Could not persist run metadata")
	}

	logReport(report)
	return nil
}

func loadCatalogs() (etl.Catalogs, error) {
	catalogs := etl.Catalogs{}

	if cfg.Source.Products != "" {
		src, err := source.Open(cfg.Source.Products, "")
		if err != nil {
			return catalogs, err
		}
		defer src.Close()
		catalogs.Products, err = etl.LoadProductCatalog(src)
		if err != nil {
			return catalogs, err
		}
	}

	if cfg.Source.Customers != "" {
		src, err := source.Open(cfg.Source.Customers, "")
		if err != nil {
			return catalogs, err
		}
		defer src.Close()
		catalogs.Customers, err = etl.LoadCustomerCatalog(src)
		if err != nil {
			return catalogs, err
		}
	}

	return catalogs, nil
}

func logReport(report *etl.Report) {
	event := logging.Info().
		Int64("rows_read", report.RowsRead).
		Int64("accepted", report.Accepted).
		Int64("rejected", report.Rejected).
		Dur("elapsed", report.Elapsed)
	for table, rows := range report.RowsWritten {
		event = event.Int64("written_"+table, rows)
	}
	event.Msg("ETL run complete")

	for reason, count := range report.RejectedByReason {
		logging.Warn().
			Str("reason", reason).
			Int64("count", count).
			Msg("Rows rejected")
	}
}

// discardWriter satisfies etl.Writer for dry runs.
type discardWriter struct{}

func (discardWriter) WriteTable(ctx context.Context, table etl.Table) (int64, error) {
	return int64(len(table.Rows)), nil
}
