//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// Copyright (c) 2026, the retail-etl authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import "time"

// DimensionBuilder assigns surrogate keys and accumulates the three
// dimension tables in first-seen order. Customer and product keys are
// sequential starting at 1; date keys are YYYYMMDD encodings. A natural
// key maps to exactly one surrogate key for the lifetime of a run.
type DimensionBuilder struct {
	catalogs Catalogs

	customerKeys map[string]int64
	productKeys  map[string]int64
	dateKeys     map[int]struct{}

	Customers []DimCustomer
	Products  []DimProduct
	Dates     []DimDate
}

// NewDimensionBuilder creates a builder with empty key-assignment
// mappings for a new run.
func NewDimensionBuilder(catalogs Catalogs) *DimensionBuilder {
	return &DimensionBuilder{
		catalogs:     catalogs,
		customerKeys: make(map[string]int64),
		productKeys:  make(map[string]int64),
		dateKeys:     make(map[int]struct{}),
	}
}

// Assign resolves surrogate keys for tx, inserting a dimension row on
// first sight of each natural key. Lookups are idempotent within a run.
func (b *DimensionBuilder) Assign(tx Transaction) (customerKey, productKey int64, dateKey int) {
	return b.customerKey(tx), b.productKey(tx), b.dateKey(tx.InvoiceDate)
}

func (b *DimensionBuilder) customerKey(tx Transaction) int64 {
	if key, ok := b.customerKeys[tx.CustomerID]; ok {
		return key
	}

	key := int64(len(b.Customers) + 1)
	b.customerKeys[tx.CustomerID] = key

	info := b.catalogs.Customers[tx.CustomerID]
	segment := info.Segment
	if segment == "" {
		segment = UnknownAttribute
	}

	b.Customers = append(b.Customers, DimCustomer{
		CustomerKey: key,
		CustomerID:  tx.CustomerID,
		Country:     tx.Country,
		Registered:  info.Registered,
		Segment:     segment,
	})
	return key
}

func (b *DimensionBuilder) productKey(tx Transaction) int64 {
	if key, ok := b.productKeys[tx.Description]; ok {
		return key
	}

	key := int64(len(b.Products) + 1)
	b.productKeys[tx.Description] = key

	info := b.catalogs.Products[tx.Description]
	category := info.Category
	if category == "" {
		category = UnknownAttribute
	}
	brand := info.Brand
	if brand == "" {
		brand = UnknownAttribute
	}
	stockCode := tx.StockCode
	if stockCode == "" {
		stockCode = info.StockCode
	}

	b.Products = append(b.Products, DimProduct{
		ProductKey:  key,
		Description: tx.Description,
		StockCode:   stockCode,
		Category:    category,
		Brand:       brand,
	})
	return key
}

func (b *DimensionBuilder) dateKey(t time.Time) int {
	key := DateKey(t)
	if _, ok := b.dateKeys[key]; ok {
		return key
	}
	b.dateKeys[key] = struct{}{}

	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	b.Dates = append(b.Dates, DimDate{
		DateKey: key,
		Date:    day,
		Year:    t.Year(),
		Month:   int(t.Month()),
		Day:     t.Day(),
		Quarter: (int(t.Month())-1)/3 + 1,
		Weekday: t.Weekday().String(),
	})
	return key
}

// DateKey returns the deterministic YYYYMMDD surrogate key for a date.
func DateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
