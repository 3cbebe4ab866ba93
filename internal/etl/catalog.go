package etl

import (
	"strings"
	"time"

	"github.com/retaildwh/retail-etl/internal/source"
)

// ProductInfo carries catalog attributes joined into DimProduct.
type ProductInfo struct {
	StockCode string
	Category  string
	Brand     string
}

// CustomerInfo carries catalog attributes joined into DimCustomer.
type CustomerInfo struct {
	Registered time.Time
	Segment    string
}

// Catalogs holds attribute lookups consulted when a dimension row is
// created. Empty catalogs are valid; attributes then default to Unknown.
type Catalogs struct {
	// Products is keyed by product description.
	Products map[string]ProductInfo

	// Customers is keyed by natural customer identifier.
	Customers map[string]CustomerInfo
}

// LoadProductCatalog reads a product catalog extract into a lookup keyed
// by description. First-seen entries win for duplicate descriptions;
// entries without a description are skipped.
func LoadProductCatalog(src source.Source) (map[string]ProductInfo, error) {
	records, err := source.ReadAll(src)
	if err != nil {
		return nil, err
	}

	products := make(map[string]ProductInfo, len(records))
	for _, rec := range records {
		desc := strings.TrimSpace(rec[colDescription])
		if desc == "" {
			continue
		}
		if _, seen := products[desc]; seen {
			continue
		}
		products[desc] = ProductInfo{
			StockCode: strings.TrimSpace(rec[colStockCode]),
			Category:  strings.TrimSpace(rec["Category"]),
			Brand:     strings.TrimSpace(rec["Brand"]),
		}
	}
	return products, nil
}

// LoadCustomerCatalog reads a customer catalog extract into a lookup keyed
// by customer identifier. Unparsable registration dates are left zero
// rather than rejecting the entry.
func LoadCustomerCatalog(src source.Source) (map[string]CustomerInfo, error) {
	records, err := source.ReadAll(src)
	if err != nil {
		return nil, err
	}

	customers := make(map[string]CustomerInfo, len(records))
	for _, rec := range records {
		id := strings.TrimSpace(rec[colCustomerID])
		if id == "" {
			continue
		}
		if _, seen := customers[id]; seen {
			continue
		}

		var registered time.Time
		if raw := strings.TrimSpace(rec["RegistrationDate"]); raw != "" {
			if t, err := parseInvoiceDate(raw); err == nil {
				registered = t
			}
		}

		customers[id] = CustomerInfo{
			Registered: registered,
			Segment:    strings.TrimSpace(rec["Segment"]),
		}
	}
	return customers, nil
}
