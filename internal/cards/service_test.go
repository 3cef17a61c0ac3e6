package cards

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

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
	return db
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewSQLRepository(openTestDB(t)))
	// Pin the clock so expiry-window assertions cannot flake at year end.
	svc.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return svc
}

func validCard() NewCard {
	return NewCard{
		CardNumber:     "4111 1111 1111 1111",
		CardholderName: "Alice Example",
		ExpiryMonth:    12,
		ExpiryYear:     2030,
		CVV:            "123",
	}
}

func TestAddCard(t *testing.T) {
	svc := newTestService(t)

	card, err := svc.Add(context.Background(), "alice", validCard())
	require.NoError(t, err)
	assert.NotEmpty(t, card.ID)
	assert.Equal(t, "4111111111111111", card.CardNumber, "whitespace is stripped before storage")
	assert.Equal(t, "alice", card.Username)
}

func TestAddCardValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewCard)
	}{
		{"number too short", func(c *NewCard) { c.CardNumber = "411111111111" }},         // 12 digits
		{"number too long", func(c *NewCard) { c.CardNumber = "41111111111111111111" }},  // 20 digits
		{"number not digits", func(c *NewCard) { c.CardNumber = "4111-1111-1111-1111" }},
		{"month zero", func(c *NewCard) { c.ExpiryMonth = 0 }},
		{"month thirteen", func(c *NewCard) { c.ExpiryMonth = 13 }},
		{"year in the past", func(c *NewCard) { c.ExpiryYear = 2025 }},
		{"year too far out", func(c *NewCard) { c.ExpiryYear = 2077 }},
		{"empty holder name", func(c *NewCard) { c.CardholderName = "  " }},
		{"cvv too short", func(c *NewCard) { c.CVV = "12" }},
		{"cvv too long", func(c *NewCard) { c.CVV = "12345" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)
			nc := validCard()
			tt.mutate(&nc)

			_, err := svc.Add(context.Background(), "alice", nc)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestAddDuplicateCardConflicts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", validCard())
	require.NoError(t, err)

	_, err = svc.Add(ctx, "alice", validCard())
	assert.ErrorIs(t, err, domain.ErrConflict)

	// A different user may save the same number.
	_, err = svc.Add(ctx, "bob", validCard())
	assert.NoError(t, err)
}

func TestListForUserScoped(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", validCard())
	require.NoError(t, err)

	other := validCard()
	other.CardNumber = "5500000000000004"
	_, err = svc.Add(ctx, "bob", other)
	require.NoError(t, err)

	aliceCards, err := svc.ListForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, aliceCards, 1)
	assert.Equal(t, "4111111111111111", aliceCards[0].CardNumber)
}

func TestCVVNeverSerialized(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", validCard())
	require.NoError(t, err)

	list, err := svc.ListForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "123", list[0].CVV, "the CVV is stored")

	encoded, err := json.Marshal(list)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "123", "but never leaves in a response body")
	assert.NotContains(t, string(encoded), "cvv")
}

func TestDeleteCardScopedToOwner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	card, err := svc.Add(ctx, "alice", validCard())
	require.NoError(t, err)

	// Bob cannot delete Alice's card; the attempt reads as not found.
	assert.ErrorIs(t, svc.Delete(ctx, "bob", card.ID), domain.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "alice", card.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "alice", card.ID), domain.ErrNotFound)
}
