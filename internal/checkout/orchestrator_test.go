package checkout

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchworks/storefront/internal/domain"
	"github.com/watchworks/storefront/internal/storage/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		INSERT INTO watches (id, brand, model, price) VALUES
			(7, 'Rolex', 'Submariner', '9150.00');
		INSERT INTO payment_cards
			(id, username, card_number, cardholder_name, expiry_month, expiry_year, cvv, created_at)
		VALUES
			('card-alice', 'alice', '4111111111111111', 'Alice Example', 12, 2030, '123', '2026-01-01T00:00:00Z'),
			('card-bob',   'bob',   '5500000000000004', 'Bob Example',   11, 2031, '456', '2026-01-01T00:00:00Z');
		INSERT INTO cart_items (username, product_id, quantity, created_at, updated_at)
		VALUES ('alice', 7, 2, '2026-01-02T00:00:00Z', '2026-01-02T00:00:00Z');`)
	require.NoError(t, err)
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validRequest() Request {
	return Request{
		CardID: "card-alice",
		Items: []LineItem{
			{ProductID: 7, Quantity: 2, Price: dec("9150.00")},
		},
		Subtotal: dec("18300.00"),
		Tax:      dec("1510.50"),
		Shipping: dec("0.00"),
		Total:    dec("19810.50"),
	}
}

func countRows(t *testing.T, db *sql.DB, table, username string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM "+table+" WHERE username = ?", username).Scan(&n))
	return n
}

func TestCheckoutPersistsOrderAndClearsCart(t *testing.T) {
	db := openTestDB(t)
	o := NewTxOrchestrator(db)

	result, err := o.Checkout(context.Background(), "alice", validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, result.OrderID)

	var total, status string
	require.NoError(t, db.QueryRow(
		"SELECT total, status FROM orders WHERE id = ?", result.OrderID).Scan(&total, &status))
	assert.Equal(t, "19810.5", dec(total).String())
	assert.Equal(t, "completed", status)

	var lines int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM order_items WHERE order_id = ?", result.OrderID).Scan(&lines))
	assert.Equal(t, 1, lines)

	var price string
	require.NoError(t, db.QueryRow(
		"SELECT price FROM order_items WHERE order_id = ?", result.OrderID).Scan(&price))
	assert.Equal(t, "9150.00", price, "unit price is captured at purchase time")

	assert.Equal(t, 0, countRows(t, db, "cart_items", "alice"), "checkout clears the cart")
}

func TestCheckoutClearsWholeCartEvenWhenItemsDiffer(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`
		INSERT INTO watches (id, brand, model, price) VALUES (8, 'Omega', 'Speedmaster', '6400.00');
		INSERT INTO cart_items (username, product_id, quantity, created_at, updated_at)
		VALUES ('alice', 8, 1, '2026-01-03T00:00:00Z', '2026-01-03T00:00:00Z');`)
	require.NoError(t, err)

	o := NewTxOrchestrator(db)

	// The submitted line list mentions only product 7; the clear still wipes
	// every row the user has.
	_, err = o.Checkout(context.Background(), "alice", validRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, countRows(t, db, "cart_items", "alice"))
}

func TestCheckoutWithForeignCardDenied(t *testing.T) {
	db := openTestDB(t)
	o := NewTxOrchestrator(db)

	req := validRequest()
	req.CardID = "card-bob"

	_, err := o.Checkout(context.Background(), "alice", req)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	assert.Equal(t, 0, countRows(t, db, "orders", "alice"), "no order row may exist")
	var lines int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM order_items").Scan(&lines))
	assert.Equal(t, 0, lines, "no order lines may exist")
	assert.Equal(t, 1, countRows(t, db, "cart_items", "alice"), "the cart is untouched")
}

func TestCheckoutWithUnknownCardDenied(t *testing.T) {
	o := NewTxOrchestrator(openTestDB(t))

	req := validRequest()
	req.CardID = "card-nope"

	_, err := o.Checkout(context.Background(), "alice", req)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestCheckoutValidation(t *testing.T) {
	o := NewTxOrchestrator(openTestDB(t))
	ctx := context.Background()

	req := validRequest()
	req.CardID = ""
	_, err := o.Checkout(ctx, "alice", req)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	req = validRequest()
	req.Items = nil
	_, err = o.Checkout(ctx, "alice", req)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	req = validRequest()
	req.Items[0].Quantity = 0
	_, err = o.Checkout(ctx, "alice", req)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCheckoutRollsBackOnLineInsertFailure(t *testing.T) {
	db := openTestDB(t)

	// Sabotage the line-item insert so the sequence fails after the order
	// header was written inside the transaction.
	_, err := db.Exec("DROP TABLE order_items")
	require.NoError(t, err)

	o := NewTxOrchestrator(db)
	_, err = o.Checkout(context.Background(), "alice", validRequest())
	require.Error(t, err)

	assert.Equal(t, 0, countRows(t, db, "orders", "alice"), "the order insert must be rolled back")
	assert.Equal(t, 1, countRows(t, db, "cart_items", "alice"), "the cart must be untouched")
}
