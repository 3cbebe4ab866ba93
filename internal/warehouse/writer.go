//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// Copyright (c) 2026, the retail-etl authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retaildwh/retail-etl/internal/etl"
	"github.com/retaildwh/retail-etl/internal/logging"
)

// Writer loads tables into PostgreSQL with batched multi-row inserts.
// It implements etl.Writer.
type Writer struct {
	pool      *pgxpool.Pool
	batchSize int
}

// NewWriter creates a Writer. batchSize is the number of rows per
// INSERT statement.
func NewWriter(pool *pgxpool.Pool, batchSize int) *Writer {
	if batchSize < 1 {
		batchSize = 1000
	}
	return &Writer{pool: pool, batchSize: batchSize}
}

// WriteTable inserts all rows of the table and returns the number
// written. Each batch is one parameterized statement; a failure leaves
// previously written tables intact and surfaces as a run-level error.
func (w *Writer) WriteTable(ctx context.Context, table etl.Table) (int64, error) {
	var written int64
	for start := 0; start < len(table.Rows); start += w.batchSize {
		end := min(start+w.batchSize, len(table.Rows))
		batch := table.Rows[start:end]

		if err := w.insertBatch(ctx, table.Name, table.Columns, batch); err != nil {
			return written, err
		}
		written += int64(len(batch))

		logging.Debug().
			Str("table", table.Name).
			Int64("rows", written).
			Int("total", len(table.Rows)).
			Msg("Loading table")
	}

	logging.Info().
		Str("table", table.Name).
		Int64("rows", written).
		Msg("Table loaded")
	return written, nil
}

func (w *Writer) insertBatch(ctx context.Context, table string, columns []string, rows [][]any) error {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ",
		quoteIdent(table), strings.Join(quoted, ", "))

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("table %s row %d has %d values for %d columns",
				table, i, len(row), len(columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", len(args)+j+1)
		}
		sb.WriteByte(')')
		args = append(args, row...)
	}

	if _, err := w.pool.Exec(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}
