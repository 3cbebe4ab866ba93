package etl

import "github.com/shopspring/decimal"

// FactBuilder emits one FactSale row per accepted transaction with
// resolved surrogate keys and computed revenue. Negative quantities
// (returns) produce negative revenue and are never filtered.
type FactBuilder struct {
	Facts []FactSale
}

// Append records the fact row for tx. Revenue is exact decimal
// multiplication; no rounding is applied here.
func (f *FactBuilder) Append(tx Transaction, customerKey, productKey int64, dateKey int) {
	revenue := tx.UnitPrice.Mul(decimal.NewFromInt(tx.Quantity))
	f.Facts = append(f.Facts, FactSale{
		InvoiceNo:   tx.InvoiceNo,
		DateKey:     dateKey,
		CustomerKey: customerKey,
		ProductKey:  productKey,
		Quantity:    tx.Quantity,
		UnitPrice:   tx.UnitPrice,
		Revenue:     revenue,
	})
}
