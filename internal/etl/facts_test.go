package etl

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRevenueIsExactProduct(t *testing.T) {
	tests := []struct {
		quantity int64
		price    string
		want     string
	}{
		{2, "10.00", "20.00"},
		{-1, "10.00", "-10.00"},
		{3, "0.33", "0.99"},
		{7, "19.99", "139.93"},
		{1000000, "0.01", "10000.00"},
	}

	for _, tt := range tests {
		f := &FactBuilder{}
		tx := Transaction{
			InvoiceNo:   "INV1",
			Quantity:    tt.quantity,
			UnitPrice:   decimal.RequireFromString(tt.price),
			InvoiceDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		f.Append(tx, 1, 1, 20240101)

		got := f.Facts[0].Revenue
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("Revenue for %d x %s = %s, want %s", tt.quantity, tt.price, got, tt.want)
		}
	}
}

func TestNegativeQuantityIsNotFiltered(t *testing.T) {
	f := &FactBuilder{}
	tx := Transaction{
		InvoiceNo: "INV1",
		Quantity:  -4,
		UnitPrice: decimal.RequireFromString("2.50"),
	}
	f.Append(tx, 1, 1, 20240101)

	if len(f.Facts) != 1 {
		t.Fatalf("Expected return row to be kept, got %d facts", len(f.Facts))
	}
	if !f.Facts[0].Revenue.IsNegative() {
		t.Errorf("Expected negative revenue, got %s", f.Facts[0].Revenue)
	}
}

func TestFactCarriesResolvedKeys(t *testing.T) {
	f := &FactBuilder{}
	tx := Transaction{
		InvoiceNo: "INV42",
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("5.00"),
	}
	f.Append(tx, 7, 3, 20240630)

	fact := f.Facts[0]
	if fact.CustomerKey != 7 || fact.ProductKey != 3 || fact.DateKey != 20240630 {
		t.Errorf("Expected keys 7/3/20240630, got %d/%d/%d",
			fact.CustomerKey, fact.ProductKey, fact.DateKey)
	}
	if fact.InvoiceNo != "INV42" {
		t.Errorf("Expected invoice INV42, got %s", fact.InvoiceNo)
	}
}
