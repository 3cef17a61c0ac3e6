// Package orders serves a user's order history. Orders are written only by
// checkout; this package is read-only.
package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is one order header with its purchased lines.
type Order struct {
	ID        string          `json:"id"`
	CardID    string          `json:"card_id"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []Item          `json:"items"`
}

// Item is one order line with the catalog attributes needed to render it.
// Price is the unit price captured at purchase time, not the live one.
type Item struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Brand     string          `json:"brand"`
	Model     string          `json:"model"`
	ImageURL  string          `json:"image_url"`
}

// Repository is the port for order history reads.
type Repository interface {
	// ListForUser returns the user's orders, newest first, each with its lines.
	ListForUser(ctx context.Context, username string) ([]Order, error)
}
