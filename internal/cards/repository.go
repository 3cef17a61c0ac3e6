package cards

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

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

func (r *SQLRepository) ListForUser(ctx context.Context, username string) ([]Card, error) {
	const q = `
		SELECT id, username, card_number, cardholder_name, expiry_month, expiry_year, cvv, created_at
		FROM   payment_cards
		WHERE  username = ?
		ORDER  BY created_at`

	rows, err := r.db.QueryContext(ctx, q, username)
	if err != nil {
		return nil, fmt.Errorf("cards: list for %q: %w", username, err)
	}
	defer rows.Close()

	list := []Card{}
	for rows.Next() {
		var (
			c         Card
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.Username, &c.CardNumber, &c.CardholderName,
			&c.ExpiryMonth, &c.ExpiryYear, &c.CVV, &createdAt); err != nil {
			return nil, fmt.Errorf("cards: scan card: %w", err)
		}
		if c.CreatedAt, err = sqlite.ParseTime(createdAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *SQLRepository) Create(ctx context.Context, c *Card) error {
	const q = `
		INSERT INTO payment_cards
			(id, username, card_number, cardholder_name, expiry_month, expiry_year, cvv, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.Username, c.CardNumber, c.CardholderName,
		c.ExpiryMonth, c.ExpiryYear, c.CVV, sqlite.FormatTime(c.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("cards: card already saved: %w", domain.ErrConflict)
		}
		return fmt.Errorf("cards: create for %q: %w", c.Username, err)
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, username, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM payment_cards WHERE id = ? AND username = ?", id, username)
	if err != nil {
		return fmt.Errorf("cards: delete %q for %q: %w", id, username, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("cards: card %q for %q: %w", id, username, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLRepository) Exists(ctx context.Context, username, cardNumber string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM payment_cards WHERE username = ? AND card_number = ?",
		username, cardNumber).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("cards: exists for %q: %w", username, err)
	}
	return n > 0, nil
}

// isUniqueViolation detects the driver's UNIQUE constraint error. The modernc
// driver has no exported error type for this, so the message is matched.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
