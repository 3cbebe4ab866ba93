//-------------------------------------------------------------------------
//
// Retail Warehouse ETL
//
// Copyright (c) 2026, the retail-etl authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/retaildwh/retail-etl/internal/logging"
)

// Reference data
var categories = []string{"Electronics", "Clothing", "Home", "Garden", "Sports", "Toys", "Books", "Music", "Food", "Health"}
var brands = []string{"Brand A", "Brand B", "Brand C", "Brand D", "Brand E", "Brand F", "Brand G", "Brand H"}
var segments = []string{"Consumer", "Corporate", "Home Office", "Wholesale"}

// SampleConfig controls sample extract generation.
type SampleConfig struct {
	// Dir is the output directory.
	Dir string

	// Transactions is the number of transaction rows to generate.
	Transactions int

	// Customers is the number of distinct customers.
	Customers int

	// Products is the number of distinct products.
	Products int

	// Seed makes generation reproducible when non-zero.
	Seed uint64
}

// DefaultSampleConfig returns sensible sample sizes.
func DefaultSampleConfig() SampleConfig {
	return SampleConfig{
		Dir:          ".",
		Transactions: 10000,
		Customers:    400,
		Products:     150,
	}
}

type sampleProduct struct {
	StockCode   string `json:"StockCode"`
	Description string `json:"Description"`
	Category    string `json:"Category"`
	Brand       string `json:"Brand"`
}

type sampleCustomer struct {
	CustomerID       string `json:"CustomerID"`
	RegistrationDate string `json:"RegistrationDate"`
	Segment          string `json:"Segment"`
}

// WriteSampleData writes transactions.csv, products.json and
// customers.json into cfg.Dir, shaped like the original extracts.
// Roughly 5% of transactions are returns (negative quantity) and a
// small share are guest purchases with no customer identifier.
func WriteSampleData(cfg SampleConfig) error {
	faker := NewFaker()
	if cfg.Seed != 0 {
		faker = NewFakerWithSeed(cfg.Seed)
	}

	products := make([]sampleProduct, cfg.Products)
	for i := range products {
		products[i] = sampleProduct{
			StockCode:   fmt.Sprintf("SKU%05d", i+1),
			Description: fmt.Sprintf("%s #%d", faker.ProductName(), i+1),
			Category:    faker.RandomString(categories),
			Brand:       faker.RandomString(brands),
		}
	}

	start := start2024()

	customers := make([]sampleCustomer, cfg.Customers)
	for i := range customers {
		registered := faker.DateRange(start.AddDate(-3, 0, 0), start)
		customers[i] = sampleCustomer{
			CustomerID:       strconv.Itoa(12000 + i),
			RegistrationDate: registered.Format("2006-01-02"),
			Segment:          faker.RandomString(segments),
		}
	}

	if err := writeJSON(filepath.Join(cfg.Dir, "products.json"), products); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(cfg.Dir, "customers.json"), customers); err != nil {
		return err
	}
	if err := writeTransactions(filepath.Join(cfg.Dir, "transactions.csv"), faker, cfg, products, customers); err != nil {
		return err
	}

	logging.Info().
		Str("dir", cfg.Dir).
		Int("transactions", cfg.Transactions).
		Int("customers", cfg.Customers).
		Int("products", cfg.Products).
		Msg("Sample extracts written")
	return nil
}

func writeTransactions(path string, faker *Faker, cfg SampleConfig, products []sampleProduct, customers []sampleCustomer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"InvoiceNo", "StockCode", "Description", "Quantity", "InvoiceDate", "UnitPrice", "CustomerID", "Country"}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < cfg.Transactions; i++ {
		product := products[faker.Number(0, len(products)-1)]

		quantity := faker.Number(1, 24)
		if faker.Number(1, 100) <= 5 {
			quantity = -faker.Number(1, 6)
		}

		customerID := ""
		if faker.Number(1, 100) > 8 {
			customerID = customers[faker.Number(0, len(customers)-1)].CustomerID
		}

		row := []string{
			fmt.Sprintf("INV%06d", 500000+i),
			product.StockCode,
			product.Description,
			strconv.Itoa(quantity),
			faker.DateRange(start2024(), end2024()).Format("2006-01-02 15:04"),
			fmt.Sprintf("%.2f", faker.Price(0.5, 250)),
			customerID,
			faker.Country(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func start2024() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
func end2024() time.Time   { return time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC) }
