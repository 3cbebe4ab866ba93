// Package etl implements the transformation core: raw transaction records
// are normalized, reshaped into a star schema with surrogate keys, and
// handed to an injected warehouse writer.
package etl

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// GuestCustomerID is the sentinel natural key used when a transaction
// carries no customer identifier.
const GuestCustomerID = "GUEST"

// UnknownAttribute fills dimension attributes that have no catalog entry.
const UnknownAttribute = "Unknown"

// Transaction is a cleaned source row ready for dimensional modeling.
// Quantity may be negative (returns); unit price is never negative.
type Transaction struct {
	InvoiceNo   string
	StockCode   string
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	InvoiceDate time.Time
	CustomerID  string
	Country     string
}

// DimCustomer is one customer dimension row. Rows are immutable once
// created within a run; first-seen attributes win.
type DimCustomer struct {
	CustomerKey int64
	CustomerID  string
	Country     string
	Registered  time.Time
	Segment     string
}

// DimProduct is one product dimension row, keyed naturally by description.
type DimProduct struct {
	ProductKey  int64
	Description string
	StockCode   string
	Category    string
	Brand       string
}

// DimDate is one calendar-date dimension row. The surrogate key is the
// YYYYMMDD encoding of the date rather than a sequential counter.
type DimDate struct {
	DateKey int
	Date    time.Time
	Year    int
	Month   int
	Day     int
	Quarter int
	Weekday string
}

// FactSale is one sales fact row with resolved surrogate keys.
type FactSale struct {
	InvoiceNo   string
	DateKey     int
	CustomerKey int64
	ProductKey  int64
	Quantity    int64
	UnitPrice   decimal.Decimal
	Revenue     decimal.Decimal
}

// Table is a named, column-ordered result set handed to a Writer.
// Decimal values are carried as strings so the table stays driver-agnostic.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Writer loads one table into the destination warehouse. A failed write
// for one table must not corrupt tables already written.
type Writer interface {
	WriteTable(ctx context.Context, table Table) (int64, error)
}

// TableNames holds the destination name of each star-schema table.
type TableNames struct {
	DimDate     string
	DimCustomer string
	DimProduct  string
	FactSales   string
}

// DefaultTableNames returns the conventional warehouse table names.
func DefaultTableNames() TableNames {
	return TableNames{
		DimDate:     "DimDate",
		DimCustomer: "DimCustomer",
		DimProduct:  "DimProduct",
		FactSales:   "FactSales",
	}
}
