// Package cart maintains the per-user shopping cart as a set of
// (product, quantity) rows.
//
// Quantity mutations are expressed as single atomic statements (upsert for
// add, conditional update-or-delete for decrease) so concurrent requests for
// the same user cannot duplicate rows or drive a quantity negative.
package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Line is one cart row: a user, a product, and a quantity.
type Line struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item is a cart line joined with the catalog attributes the storefront
// renders next to it.
type Item struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	Brand       string          `json:"brand"`
	Model       string          `json:"model"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
}

// Repository is the port for cart persistence. Every method is scoped by
// username; no call can observe another user's rows.
type Repository interface {
	// Items returns the user's cart joined with watch data,
	// most-recently-modified first.
	Items(ctx context.Context, username string) ([]Item, error)

	// Add merges quantity into the existing (username, productID) row or
	// creates it. Returns the resulting line.
	Add(ctx context.Context, username string, productID int64, quantity int) (*Line, error)

	// Increase adds 1 to the row's quantity. domain.ErrNotFound if absent.
	Increase(ctx context.Context, username string, productID int64) (*Line, error)

	// Decrease subtracts 1 from the row's quantity, deleting the row when it
	// reaches zero. The returned line reports quantity 0 on deletion.
	Decrease(ctx context.Context, username string, productID int64) (*Line, error)

	// Remove deletes the row unconditionally. domain.ErrNotFound if absent.
	Remove(ctx context.Context, username string, productID int64) error

	// Clear deletes every row for the user. Idempotent.
	Clear(ctx context.Context, username string) error
}
