package checkout

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/watchworks/storefront/internal/domain"
	"github.com/watchworks/storefront/internal/storage/sqlite"
)

// step is one named unit of the checkout sequence. All steps share the same
// transaction; the first failure aborts it and nothing is committed.
type step struct {
	name string
	run  func(ctx context.Context, tx *sql.Tx) error
}

// TxOrchestrator executes the checkout steps inside a single SQLite
// transaction.
type TxOrchestrator struct {
	db *sql.DB
}

func NewTxOrchestrator(db *sql.DB) *TxOrchestrator {
	return &TxOrchestrator{db: db}
}

// Checkout validates the submission, then runs verify-card, create-order,
// insert-lines, and clear-cart sequentially over one transaction.
func (o *TxOrchestrator) Checkout(ctx context.Context, username string, req Request) (*Result, error) {
	if req.CardID == "" || len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: missing required checkout information", domain.ErrInvalidArgument)
	}
	for _, it := range req.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: each item needs a product ID and a positive quantity", domain.ErrInvalidArgument)
		}
	}

	result := &Result{
		OrderID:   uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	steps := []step{
		{"verify_card_ownership", func(ctx context.Context, tx *sql.Tx) error {
			return o.verifyCardOwnership(ctx, tx, username, req.CardID)
		}},
		{"create_order", func(ctx context.Context, tx *sql.Tx) error {
			return o.insertOrder(ctx, tx, username, req, result)
		}},
		{"insert_order_lines", func(ctx context.Context, tx *sql.Tx) error {
			return o.insertOrderLines(ctx, tx, result.OrderID, req.Items)
		}},
		{"clear_cart", func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE username = ?", username)
			return err
		}},
	}

	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("checkout: begin: %w", err)
	}
	defer tx.Rollback()

	for _, s := range steps {
		if err := s.run(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "checkout step failed, rolling back",
				"step", s.name, "username", username, "error", err)
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("checkout: commit: %w", err)
	}

	slog.InfoContext(ctx, "order placed", "order_id", result.OrderID, "username", username)
	return result, nil
}

// verifyCardOwnership fails with domain.ErrPermissionDenied when the card is
// missing or belongs to another user. The two cases are not distinguished.
func (o *TxOrchestrator) verifyCardOwnership(ctx context.Context, tx *sql.Tx, username, cardID string) error {
	var id string
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM payment_cards WHERE id = ? AND username = ?", cardID, username).Scan(&id)
	if err == sql.ErrNoRows {
		return fmt.Errorf("checkout: card not found or access denied: %w", domain.ErrPermissionDenied)
	}
	if err != nil {
		return fmt.Errorf("checkout: verify card %q: %w", cardID, err)
	}
	return nil
}

func (o *TxOrchestrator) insertOrder(ctx context.Context, tx *sql.Tx, username string, req Request, result *Result) error {
	const q = `
		INSERT INTO orders (id, username, card_id, subtotal, tax, shipping, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, q,
		result.OrderID, username, req.CardID,
		req.Subtotal.String(), req.Tax.String(), req.Shipping.String(), req.Total.String(),
		sqlite.FormatTime(result.CreatedAt))
	if err != nil {
		return fmt.Errorf("checkout: insert order: %w", err)
	}
	return nil
}

func (o *TxOrchestrator) insertOrderLines(ctx context.Context, tx *sql.Tx, orderID string, items []LineItem) error {
	const q = `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES (?, ?, ?, ?)`

	for _, it := range items {
		if _, err := tx.ExecContext(ctx, q, orderID, it.ProductID, it.Quantity, it.Price.String()); err != nil {
			return fmt.Errorf("checkout: insert line for product %d: %w", it.ProductID, err)
		}
	}
	return nil
}
