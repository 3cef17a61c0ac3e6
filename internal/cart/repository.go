package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/watchworks/storefront/internal/domain"
	"github.com/watchworks/storefront/internal/storage/sqlite"
)

// SQLRepository is the SQLite implementation of Repository.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Items(ctx context.Context, username string) ([]Item, error) {
	const q = `
		SELECT cart_items.id, cart_items.product_id, cart_items.quantity,
		       watches.brand, watches.model, watches.price, watches.description, watches.image_url
		FROM   cart_items
		JOIN   watches ON watches.id = cart_items.product_id
		WHERE  cart_items.username = ?
		ORDER  BY cart_items.updated_at DESC, cart_items.id DESC`

	rows, err := r.db.QueryContext(ctx, q, username)
	if err != nil {
		return nil, fmt.Errorf("cart: list items for %q: %w", username, err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity,
			&it.Brand, &it.Model, &price, &it.Description, &it.ImageURL); err != nil {
			return nil, fmt.Errorf("cart: scan item: %w", err)
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("cart: item %d has bad price %q: %w", it.ID, price, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *SQLRepository) Add(ctx context.Context, username string, productID int64, quantity int) (*Line, error) {
	now := sqlite.FormatTime(time.Now())

	// Upsert against the (username, product_id) unique index: the merge is a
	// single statement, so two concurrent adds both land as increments.
	const q = `
		INSERT INTO cart_items (username, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (username, product_id) DO UPDATE SET
			quantity   = quantity + excluded.quantity,
			updated_at = excluded.updated_at
		RETURNING id, username, product_id, quantity, created_at, updated_at`

	line, err := scanLine(r.db.QueryRowContext(ctx, q, username, productID, quantity, now, now))
	if err != nil {
		return nil, fmt.Errorf("cart: add product %d for %q: %w", productID, username, err)
	}
	return line, nil
}

func (r *SQLRepository) Increase(ctx context.Context, username string, productID int64) (*Line, error) {
	const q = `
		UPDATE cart_items
		SET    quantity = quantity + 1, updated_at = ?
		WHERE  username = ? AND product_id = ?
		RETURNING id, username, product_id, quantity, created_at, updated_at`

	line, err := scanLine(r.db.QueryRowContext(ctx, q, sqlite.FormatTime(time.Now()), username, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cart: product %d for %q: %w", productID, username, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("cart: increase product %d for %q: %w", productID, username, err)
	}
	return line, nil
}

func (r *SQLRepository) Decrease(ctx context.Context, username string, productID int64) (*Line, error) {
	// Decrement and conditional delete run inside one transaction so no other
	// request can observe (or resurrect) a zero-quantity row.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("cart: begin decrease: %w", err)
	}
	defer tx.Rollback()

	// The CHECK (quantity > 0) constraint forbids storing a 0 row, so a row
	// at quantity 1 is deleted instead of decremented.
	const q = `
		SELECT id, username, product_id, quantity, created_at, updated_at
		FROM   cart_items
		WHERE  username = ? AND product_id = ?`

	line, err := scanLine(tx.QueryRowContext(ctx, q, username, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cart: product %d for %q: %w", productID, username, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("cart: decrease product %d for %q: %w", productID, username, err)
	}

	if line.Quantity <= 1 {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM cart_items WHERE username = ? AND product_id = ?", username, productID); err != nil {
			return nil, fmt.Errorf("cart: delete product %d for %q: %w", productID, username, err)
		}
		line.Quantity = 0
	} else {
		line, err = scanLine(tx.QueryRowContext(ctx, `
			UPDATE cart_items
			SET    quantity = quantity - 1, updated_at = ?
			WHERE  username = ? AND product_id = ?
			RETURNING id, username, product_id, quantity, created_at, updated_at`,
			sqlite.FormatTime(time.Now()), username, productID))
		if err != nil {
			return nil, fmt.Errorf("cart: decrease product %d for %q: %w", productID, username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("cart: commit decrease: %w", err)
	}
	return line, nil
}

func (r *SQLRepository) Remove(ctx context.Context, username string, productID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE username = ? AND product_id = ?", username, productID)
	if err != nil {
		return fmt.Errorf("cart: remove product %d for %q: %w", productID, username, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("cart: product %d for %q: %w", productID, username, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLRepository) Clear(ctx context.Context, username string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE username = ?", username); err != nil {
		return fmt.Errorf("cart: clear for %q: %w", username, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLine(s scanner) (*Line, error) {
	var (
		line               Line
		createdAt, updated string
	)
	err := s.Scan(&line.ID, &line.Username, &line.ProductID, &line.Quantity, &createdAt, &updated)
	if err != nil {
		return nil, err
	}
	if line.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if line.UpdatedAt, err = sqlite.ParseTime(updated); err != nil {
		return nil, err
	}
	return &line, nil
}
