package etl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/retaildwh/retail-etl/internal/source"
)

// Rejection reasons reported in the run summary.
const (
	ReasonNonNumeric    = "non-numeric quantity/price"
	ReasonBadDate       = "unparsable date"
	ReasonNegativePrice = "negative unit price"
)

// Source column names of the transactions extract.
const (
	colInvoiceNo   = "InvoiceNo"
	colStockCode   = "StockCode"
	colDescription = "Description"
	colQuantity    = "Quantity"
	colInvoiceDate = "InvoiceDate"
	colUnitPrice   = "UnitPrice"
	colCustomerID  = "CustomerID"
	colCountry     = "Country"
)

// dateLayouts are the accepted invoice date formats. The original retail
// extract uses M/D/YYYY H:MM; regenerated extracts use ISO dates.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/2006",
}

// Normalizer cleans raw records into Transactions and tallies rejections
// per reason. It performs no I/O; counters are private to one run.
type Normalizer struct {
	Read     int64
	Accepted int64
	Rejected int64
	Reasons  map[string]int64
}

// NewNormalizer creates a Normalizer with empty counters.
func NewNormalizer() *Normalizer {
	return &Normalizer{Reasons: make(map[string]int64)}
}

// Normalize cleans one raw record. ok is false when the record was
// rejected; the rejection is tallied against its reason and the run
// continues.
func (n *Normalizer) Normalize(rec source.Record) (Transaction, bool) {
	n.Read++

	quantity, err := parseQuantity(field(rec, colQuantity))
	if err != nil {
		return n.reject(ReasonNonNumeric)
	}

	price, err := decimal.NewFromString(field(rec, colUnitPrice))
	if err != nil {
		return n.reject(ReasonNonNumeric)
	}
	if price.IsNegative() {
		return n.reject(ReasonNegativePrice)
	}

	date, err := parseInvoiceDate(field(rec, colInvoiceDate))
	if err != nil {
		return n.reject(ReasonBadDate)
	}

	// A missing customer identifier is a guest purchase, not a bad row.
	customer := field(rec, colCustomerID)
	if customer == "" {
		customer = GuestCustomerID
	}

	n.Accepted++
	return Transaction{
		InvoiceNo:   field(rec, colInvoiceNo),
		StockCode:   field(rec, colStockCode),
		Description: field(rec, colDescription),
		Quantity:    quantity,
		UnitPrice:   price,
		InvoiceDate: date,
		CustomerID:  customer,
		Country:     field(rec, colCountry),
	}, true
}

func (n *Normalizer) reject(reason string) (Transaction, bool) {
	n.Rejected++
	n.Reasons[reason]++
	return Transaction{}, false
}

func field(rec source.Record, name string) string {
	return strings.TrimSpace(rec[name])
}

// parseQuantity accepts integers and integral-valued decimals such as
// "2.0", which some exports emit for whole quantities.
func parseQuantity(s string) (int64, error) {
	if q, err := strconv.ParseInt(s, 10, 64); err == nil {
		return q, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("fractional quantity %q", s)
	}
	return d.IntPart(), nil
}

func parseInvoiceDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
