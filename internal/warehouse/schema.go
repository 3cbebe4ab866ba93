//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// Copyright (c) 2026, the retail-etl authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse implements the PostgreSQL destination: star-schema
// DDL and the batched table writer the pipeline loads through.
package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retaildwh/retail-etl/internal/etl"
	"github.com/retaildwh/retail-etl/internal/logging"
)

// DDL templates for the star schema. Table names are configurable, so
// the statements are rendered per run rather than held as plain consts.
const (
	createDimDateSQL = `
CREATE TABLE IF NOT EXISTS %s (
    date_key    INTEGER PRIMARY KEY,
    full_date   DATE NOT NULL,
    year        INTEGER NOT NULL,
    month       INTEGER NOT NULL,
    day         INTEGER NOT NULL,
    quarter     INTEGER NOT NULL,
    weekday     VARCHAR(9) NOT NULL
)`

	createDimCustomerSQL = `
CREATE TABLE IF NOT EXISTS %s (
    customer_key      INTEGER PRIMARY KEY,
    customer_id       VARCHAR(32) NOT NULL UNIQUE,
    country           VARCHAR(64),
    registration_date DATE,
    segment           VARCHAR(32)
)`

	createDimProductSQL = `
CREATE TABLE IF NOT EXISTS %s (
    product_key  INTEGER PRIMARY KEY,
    description  VARCHAR(256) NOT NULL UNIQUE,
    stock_code   VARCHAR(32),
    category     VARCHAR(64),
    brand        VARCHAR(64)
)`

	createFactSalesSQL = `
CREATE TABLE IF NOT EXISTS %s (
    invoice_no   VARCHAR(32) NOT NULL,
    date_key     INTEGER NOT NULL REFERENCES %s (date_key),
    customer_key INTEGER NOT NULL REFERENCES %s (customer_key),
    product_key  INTEGER NOT NULL REFERENCES %s (product_key),
    quantity     BIGINT NOT NULL,
    unit_price   NUMERIC(10,2) NOT NULL,
    revenue      NUMERIC(12,2) NOT NULL
)`

	createFactDateIndexSQL = `
CREATE INDEX IF NOT EXISTS %s ON %s (date_key)`
)

// CreateSchema creates the star-schema tables. Dimensions are created
// before the fact table so its foreign keys have targets.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool, names etl.TableNames) error {
	statements := []string{
		fmt.Sprintf(createDimDateSQL, quoteIdent(names.DimDate)),
		fmt.Sprintf(createDimCustomerSQL, quoteIdent(names.DimCustomer)),
		fmt.Sprintf(createDimProductSQL, quoteIdent(names.DimProduct)),
		fmt.Sprintf(createFactSalesSQL,
			quoteIdent(names.FactSales),
			quoteIdent(names.DimDate),
			quoteIdent(names.DimCustomer),
			quoteIdent(names.DimProduct)),
		fmt.Sprintf(createFactDateIndexSQL,
			quoteIdent(indexName(names.FactSales, "date_key")),
			quoteIdent(names.FactSales)),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	logging.Info().
		Str("fact_table", names.FactSales).
		Msg("Star schema created")
	return nil
}

// DropSchema drops the star-schema tables, fact table first.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, names etl.TableNames) error {
	tables := []string{names.FactSales, names.DimDate, names.DimCustomer, names.DimProduct}
	for _, table := range tables {
		stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", quoteIdent(table))
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}

// TruncateTables empties the star-schema tables before a load, fact
// table first so foreign keys never dangle mid-truncate.
func TruncateTables(ctx context.Context, pool *pgxpool.Pool, names etl.TableNames) error {
	tables := []string{names.FactSales, names.DimDate, names.DimCustomer, names.DimProduct}
	for _, table := range tables {
		stmt := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", quoteIdent(table))
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func indexName(table, column string) string {
	return fmt.Sprintf("idx_%s_%s", strings.ToLower(table), column)
}
