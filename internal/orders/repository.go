package orders

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/watchworks/storefront/internal/storage/sqlite"
)

// SQLRepository is the SQLite implementation of Repository.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) ListForUser(ctx context.Context, username string) ([]Order, error) {
	const headers = `
		SELECT id, card_id, subtotal, tax, shipping, total, status, created_at
		FROM   orders
		WHERE  username = ?
		ORDER  BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, headers, username)
	if err != nil {
		return nil, fmt.Errorf("orders: list for %q: %w", username, err)
	}
	defer rows.Close()

	list := []Order{}
	for rows.Next() {
		var o Order
		var subtotal, tax, shipping, total, created string
		if err := rows.Scan(&o.ID, &o.CardID, &subtotal, &tax, &shipping, &total, &o.Status, &created); err != nil {
			return nil, fmt.Errorf("orders: scan order: %w", err)
		}
		if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, fmt.Errorf("orders: order %s subtotal: %w", o.ID, err)
		}
		if o.Tax, err = decimal.NewFromString(tax); err != nil {
			return nil, fmt.Errorf("orders: order %s tax: %w", o.ID, err)
		}
		if o.Shipping, err = decimal.NewFromString(shipping); err != nil {
			return nil, fmt.Errorf("orders: order %s shipping: %w", o.ID, err)
		}
		if o.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("orders: order %s total: %w", o.ID, err)
		}
		if o.CreatedAt, err = sqlite.ParseTime(created); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range list {
		if list[i].Items, err = r.itemsForOrder(ctx, list[i].ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// itemsForOrder joins order lines against the live catalog for display
// attributes. The LEFT JOIN keeps lines whose watch was deleted from the
// catalog after purchase.
func (r *SQLRepository) itemsForOrder(ctx context.Context, orderID string) ([]Item, error) {
	const q = `
		SELECT order_items.product_id, order_items.quantity, order_items.price,
		       COALESCE(watches.brand, ''), COALESCE(watches.model, ''), COALESCE(watches.image_url, '')
		FROM   order_items
		LEFT   JOIN watches ON watches.id = order_items.product_id
		WHERE  order_items.order_id = ?
		ORDER  BY order_items.id`

	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("orders: items for %s: %w", orderID, err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ProductID, &it.Quantity, &price, &it.Brand, &it.Model, &it.ImageURL); err != nil {
			return nil, fmt.Errorf("orders: scan item: %w", err)
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("orders: item price %q: %w", price, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
