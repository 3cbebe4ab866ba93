//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// Copyright (c) 2026, the retail-etl authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/retaildwh/retail-etl/internal/logging"
	"github.com/retaildwh/retail-etl/internal/source"
)

// Pipeline runs one ETL batch: normalize, build dimensions and facts in
// a single pass over the source, verify referential integrity, then
// write the star schema through the injected Writer. Dimensions are
// written strictly before facts.
type Pipeline struct {
	Writer   Writer
	Tables   TableNames
	Catalogs Catalogs
}

// Report summarizes one run for external logging and monitoring.
type Report struct {
	RowsRead         int64
	Accepted         int64
	Rejected         int64
	RejectedByReason map[string]int64
	RowsWritten      map[string]int64
	Elapsed          time.Duration
}

// Run processes one bounded batch of records to completion. It returns
// the run report on success, or a single error identifying the failing
// phase (read, build, write) and the underlying cause.
func (p *Pipeline) Run(ctx context.Context, src source.Source) (*Report, error) {
	start := time.Now()

	normalizer := NewNormalizer()
	dims := NewDimensionBuilder(p.Catalogs)
	facts := &FactBuilder{}

	for {
		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read phase: %w", err)
		}

		tx, ok := normalizer.Normalize(rec)
		if !ok {
			continue
		}
		customerKey, productKey, dateKey := dims.Assign(tx)
		facts.Append(tx, customerKey, productKey, dateKey)
	}

	// A fact referencing a key with no dimension row is a builder
	// defect, not a data defect, and must abort before write.
	if err := verifyIntegrity(dims, facts.Facts); err != nil {
		return nil, fmt.Errorf("build phase: %w", err)
	}

	logging.Info().
		Int64("rows_read", normalizer.Read).
		Int64("accepted", normalizer.Accepted).
		Int64("rejected", normalizer.Rejected).
		Int("customers", len(dims.Customers)).
		Int("products", len(dims.Products)).
		Int("dates", len(dims.Dates)).
		Msg("Transform complete")

	report := &Report{
		RowsRead:         normalizer.Read,
		Accepted:         normalizer.Accepted,
		Rejected:         normalizer.Rejected,
		RejectedByReason: normalizer.Reasons,
		RowsWritten:      make(map[string]int64),
	}

	if err := p.write(ctx, dims, facts, report); err != nil {
		return nil, fmt.Errorf("write phase: %w", err)
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

// write loads the three dimension tables concurrently (they have no
// cross-references), then the fact table.
func (p *Pipeline) write(ctx context.Context, dims *DimensionBuilder, facts *FactBuilder, report *Report) error {
	var mu sync.Mutex
	record := func(name string, rows int64) {
		mu.Lock()
		report.RowsWritten[name] = rows
		mu.Unlock()
	}

	dimTables := []Table{
		DateTable(p.Tables.DimDate, dims.Dates),
		CustomerTable(p.Tables.DimCustomer, dims.Customers),
		ProductTable(p.Tables.DimProduct, dims.Products),
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, table := range dimTables {
		g.Go(func() error {
			rows, err := p.Writer.WriteTable(gctx, table)
			if err != nil {
				return fmt.Errorf("table %s: %w", table.Name, err)
			}
			record(table.Name, rows)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	factTable := FactTable(p.Tables.FactSales, facts.Facts)
	rows, err := p.Writer.WriteTable(ctx, factTable)
	if err != nil {
		return fmt.Errorf("table %s: %w", factTable.Name, err)
	}
	record(factTable.Name, rows)
	return nil
}

// verifyIntegrity checks that every fact foreign key resolves to a
// dimension row built in this run.
func verifyIntegrity(dims *DimensionBuilder, facts []FactSale) error {
	customers := make(map[int64]struct{}, len(dims.Customers))
	for _, c := range dims.Customers {
		customers[c.CustomerKey] = struct{}{}
	}
	products := make(map[int64]struct{}, len(dims.Products))
	for _, p := range dims.Products {
		products[p.ProductKey] = struct{}{}
	}
	dates := make(map[int]struct{}, len(dims.Dates))
	for _, d := range dims.Dates {
		dates[d.DateKey] = struct{}{}
	}

	for i, f := range facts {
		if _, ok := customers[f.CustomerKey]; !ok {
			return fmt.Errorf("fact row %d references missing customer key %d", i, f.CustomerKey)
		}
		if _, ok := products[f.ProductKey]; !ok {
			return fmt.Errorf("fact row %d references missing product key %d", i, f.ProductKey)
		}
		if _, ok := dates[f.DateKey]; !ok {
			return fmt.Errorf("fact row %d references missing date key %d", i, f.DateKey)
		}
	}
	return nil
}

// DateTable converts date dimension rows to a writable table.
func DateTable(name string, dates []DimDate) Table {
	rows := make([][]any, len(dates))
	for i, d := range dates {
		rows[i] = []any{d.DateKey, d.Date.Format("2006-01-02"), d.Year, d.Month, d.Day, d.Quarter, d.Weekday}
	}
	return Table{
		Name:    name,
		Columns: []string{"date_key", "full_date", "year", "month", "day", "quarter", "weekday"},
		Rows:    rows,
	}
}

// CustomerTable converts customer dimension rows to a writable table.
func CustomerTable(name string, customers []DimCustomer) Table {
	rows := make([][]any, len(customers))
	for i, c := range customers {
		var registered any
		if !c.Registered.IsZero() {
			registered = c.Registered.Format("2006-01-02")
		}
		rows[i] = []any{c.CustomerKey, c.CustomerID, c.Country, registered, c.Segment}
	}
	return Table{
		Name:    name,
		Columns: []string{"customer_key", "customer_id", "country", "registration_date", "segment"},
		Rows:    rows,
	}
}

// ProductTable converts product dimension rows to a writable table.
func ProductTable(name string, products []DimProduct) Table {
	rows := make([][]any, len(products))
	for i, p := range products {
		rows[i] = []any{p.ProductKey, p.Description, p.StockCode, p.Category, p.Brand}
	}
	return Table{
		Name:    name,
		Columns: []string{"product_key", "description", "stock_code", "category", "brand"},
		Rows:    rows,
	}
}

// FactTable converts fact rows to a writable table. Prices and revenue
// are carried as decimal strings to preserve precision.
func FactTable(name string, facts []FactSale) Table {
	rows := make([][]any, len(facts))
	for i, f := range facts {
		rows[i] = []any{f.InvoiceNo, f.DateKey, f.CustomerKey, f.ProductKey, f.Quantity, f.UnitPrice.String(), f.Revenue.String()}
	}
	return Table{
		Name:    name,
		Columns: []string{"invoice_no", "date_key", "customer_key", "product_key", "quantity", "unit_price", "revenue"},
		Rows:    rows,
	}
}
