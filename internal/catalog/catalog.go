// Package catalog manages the sellable watches: public listings and the
// admin-only CRUD operations that maintain them.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Watch is one sellable item in the catalog.
type Watch struct {
	ID           int64           `json:"id"`
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"image_url"`
	Discontinued bool            `json:"discontinued"`
}

// NewWatch carries the fields for a create or full update.
type NewWatch struct {
	Brand       string
	Model       string
	Price       decimal.Decimal
	Description string
	ImageURL    string
}

// Repository is the port for catalog persistence.
type Repository interface {
	List(ctx context.Context, includeDiscontinued bool) ([]Watch, error)
	Get(ctx context.Context, id int64) (*Watch, error)
	Create(ctx context.Context, w NewWatch) (*Watch, error)
	Update(ctx context.Context, id int64, w NewWatch, discontinued bool) (*Watch, error)
	SetDiscontinued(ctx context.Context, id int64, discontinued bool) (*Watch, error)
	SetImageURL(ctx context.Context, id int64, imageURL string) (*Watch, error)
	Delete(ctx context.Context, id int64) error
}
