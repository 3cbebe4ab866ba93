package etl

import (
	"io"
	"testing"

	"github.com/retaildwh/retail-etl/internal/source"
)

type catalogSource struct {
	records []source.Record
	pos     int
}

func (s *catalogSource) Next() (source.Record, error) {
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

func (s *catalogSource) Close() error { return nil }

func TestLoadProductCatalog(t *testing.T) {
	src := &catalogSource{records: []source.Record{
		{"Description": "MUG", "StockCode": "SKU1", "Category": "Home", "Brand": "Brand A"},
		{"Description": "MUG", "StockCode": "SKU2", "Category": "Garden", "Brand": "Brand B"},
		{"Description": "", "StockCode": "SKU3", "Category": "Toys", "Brand": "Brand C"},
		{"Description": " PLATE ", "StockCode": "SKU4", "Category": "Home", "Brand": "Brand D"},
	}}

	products, err := LoadProductCatalog(src)
	if err != nil {
		t.Fatalf("LoadProductCatalog failed: %v", err)
	}

	if len(products) != 2 {
		t.Errorf("Expected 2 catalog entries, got %d", len(products))
	}
	// First-seen wins for the duplicate description.
	if products["MUG"].Category != "Home" {
		t.Errorf("Expected first-seen category Home, got %s", products["MUG"].Category)
	}
	// Keys and attributes are trimmed.
	if _, ok := products["PLATE"]; !ok {
		t.Error("Expected trimmed key PLATE in catalog")
	}
}

func TestLoadCustomerCatalog(t *testing.T) {
	src := &catalogSource{records: []source.Record{
		{"CustomerID": "100", "RegistrationDate": "2022-03-01", "Segment": "Consumer"},
		{"CustomerID": "101", "RegistrationDate": "not a date", "Segment": "Corporate"},
		{"CustomerID": "", "RegistrationDate": "2022-01-01", "Segment": "Consumer"},
	}}

	customers, err := LoadCustomerCatalog(src)
	if err != nil {
		t.Fatalf("LoadCustomerCatalog failed: %v", err)
	}

	if len(customers) != 2 {
		t.Errorf("Expected 2 catalog entries, got %d", len(customers))
	}
	if customers["100"].Registered.IsZero() {
		t.Error("Expected registration date to parse for customer 100")
	}
	// Lenient policy: a bad registration date keeps the entry.
	if customers["101"].Segment != "Corporate" {
		t.Errorf("Expected entry kept despite bad date, got %+v", customers["101"])
	}
	if !customers["101"].Registered.IsZero() {
		t.Errorf("Expected zero registration date, got %v", customers["101"].Registered)
	}
}
