//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// Copyright (c) 2026, the retail-etl authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retaildwh/retail-etl/internal/logging"
	"github.com/retaildwh/retail-etl/pkg/version"
)

const metadataTable = "etl_run_metadata"

// createMetadataTableSQL creates the metadata table if it doesn't exist.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS etl_run_metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

// RunSummary is the subset of the run report persisted for monitoring.
type RunSummary struct {
	RowsRead     int64
	RowsAccepted int64
	RowsRejected int64
	RowsWritten  map[string]int64
	Elapsed      time.Duration
}

// SaveRunMetadata records the outcome of an ETL run in the warehouse so
// downstream monitoring can see when and how the tables were last loaded.
func SaveRunMetadata(ctx context.Context, pool *pgxpool.Pool, summary RunSummary) error {
	_, err := pool.Exec(ctx, createMetadataTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	metadata := map[string]string{
		"version":       version.Short(),
		"last_run_at":   time.Now().UTC().Format(time.RFC3339),
		"elapsed":       summary.Elapsed.String(),
		"rows_read":     strconv.FormatInt(summary.RowsRead, 10),
		"rows_accepted": strconv.FormatInt(summary.RowsAccepted, 10),
		"rows_rejected": strconv.FormatInt(summary.RowsRejected, 10),
	}
	for table, rows := range summary.RowsWritten {
		metadata["rows_written_"+table] = strconv.FormatInt(rows, 10)
	}

	for key, value := range metadata {
		_, err := pool.Exec(ctx, `
            INSERT INTO etl_run_metadata (key, value) VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        `, key, value)
		if err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	logging.Debug().
		Int64("rows_read", summary.RowsRead).
		Int64("rows_accepted", summary.RowsAccepted).
		Msg("Saved run metadata")

	return nil
}

// GetMetadataValue retrieves a single metadata value by key.
func GetMetadataValue(ctx context.Context, pool *pgxpool.Pool, key string) (string, error) {
	var value string
	err := pool.QueryRow(ctx, `
        SELECT value FROM etl_run_metadata WHERE key = $1
    `, key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// GetAllMetadata retrieves all metadata as a map.
func GetAllMetadata(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	rows, err := pool.Query(ctx, `SELECT key, value FROM etl_run_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// DropMetadata drops the metadata table.
func DropMetadata(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable))
	return err
}
