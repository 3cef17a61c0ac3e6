// Package checkout converts a priced cart snapshot into a durable order.
//
// The original storefront issued the order insert, line inserts, and cart
// clear as independent statements; here the whole sequence runs inside one
// database transaction, so a failure at any step leaves no trace.
package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one purchased (product, quantity, unit price) triple as
// submitted by the caller. Prices are caller-supplied and persisted without
// recomputation.
type LineItem struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// Request is the full checkout submission.
type Request struct {
	CardID   string
	Items    []LineItem
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Result reports the persisted order.
type Result struct {
	OrderID   string
	CreatedAt time.Time
}

// Orchestrator runs the checkout sequence.
type Orchestrator interface {
	Checkout(ctx context.Context, username string, req Request) (*Result, error)
}
