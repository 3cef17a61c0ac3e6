package cart

import (
	"context"
	"database/sql"
	"errors"
	"testing"

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

	// The cart joins against watches, so the catalog needs a few rows.
	_, err = db.Exec(`
		INSERT INTO watches (id, brand, model, price, description, image_url) VALUES
			(7,  'Rolex', 'Submariner', '9150.00', 'Dive watch', 'https://img.example/sub.jpg'),
			(8,  'Omega', 'Speedmaster', '6400.00', 'Chronograph', ''),
			(9,  'Seiko', 'SKX007', '250.00', '', '')`)
	require.NoError(t, err)
	return db
}

func TestAddCreatesLine(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))
	ctx := context.Background()

	line, err := repo.Add(ctx, "alice", 7, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), line.ProductID)
	assert.Equal(t, 1, line.Quantity)

	items, err := repo.Items(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].ProductID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "Rolex", items[0].Brand)
	assert.Equal(t, "9150.00", items[0].Price.StringFixed(2))
}

func TestAddMergesQuantities(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))
	ctx := context.Background()

	first, err := repo.Add(ctx, "alice", 7, 1)
	require.NoError(t, err)

	second, err := repo.Add(ctx, "alice", 7, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "repeated add must reuse the existing row")
	assert.Equal(t, 2, second.Quantity)

	items, err := repo.Items(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1, "merge must never produce a second row")
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddWithExplicitQuantity(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Add(ctx, "alice", 7, 3)
	require.NoError(t, err)
	line, err := repo.Add(ctx, "alice", 7, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)
}

func TestIncrease(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Add(ctx, "alice", 7, 1)
	require.NoError(t, err)

	line, err := repo.Increase(ctx, "alice", 7)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
}

func TestIncreaseMissingLine(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))

	_, err := repo.Increase(context.Background(), "alice", 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDecreaseDeletesAtZero(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Add(ctx, "alice", 7, 1)
	require.NoError(t, err)

	line, err := repo.Decrease(ctx, "alice", 7)
	require.NoError(t, err)
	assert.Equal(t, 0, line.Quantity, "deletion is reported as quantity 0, never negative")

	items, err := repo.Items(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, items)

	// The line is gone, so a further decrease has nothing to act on.
	_, err = repo.Decrease(ctx, "alice", 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDecreaseAboveOne(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Add(ctx, "alice", 7, 3)
	require.NoError(t, err)

	line, err := repo.Decrease(ctx, "alice", 7)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
}

func TestRemove(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Add(ctx, "alice", 7, 5)
	require.NoError(t, err)
	require.NoError(t, repo.Remove(ctx, "alice", 7))

	items, err := repo.Items(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.ErrorIs(t, repo.Remove(ctx, "alice", 7), domain.ErrNotFound)
}

func TestClearIsIdempotent(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Add(ctx, "alice", 7, 1)
	require.NoError(t, err)
	_, err = repo.Add(ctx, "alice", 8, 2)
	require.NoError(t, err)

	require.NoError(t, repo.Clear(ctx, "alice"))
	items, err := repo.Items(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, items)

	// Clearing an already-empty cart succeeds silently.
	require.NoError(t, repo.Clear(ctx, "alice"))
}

func TestOwnershipIsolation(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Add(ctx, "alice", 7, 1)
	require.NoError(t, err)
	_, err = repo.Add(ctx, "bob", 7, 4)
	require.NoError(t, err)

	// Mutations under one user never touch the other's rows.
	_, err = repo.Increase(ctx, "alice", 7)
	require.NoError(t, err)
	require.NoError(t, repo.Clear(ctx, "alice"))

	bobItems, err := repo.Items(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bobItems, 1)
	assert.Equal(t, 4, bobItems[0].Quantity)

	_, err = repo.Decrease(ctx, "alice", 7)
	assert.ErrorIs(t, err, domain.ErrNotFound, "alice's cart is empty even though bob has the product")
}

func TestItemsMostRecentlyModifiedFirst(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Add(ctx, "alice", 7, 1)
	require.NoError(t, err)
	_, err = repo.Add(ctx, "alice", 8, 1)
	require.NoError(t, err)
	_, err = repo.Add(ctx, "alice", 9, 1)
	require.NoError(t, err)

	// Touching the oldest line moves it to the front.
	_, err = repo.Increase(ctx, "alice", 7)
	require.NoError(t, err)

	items, err := repo.Items(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, int64(7), items[0].ProductID)
}

func TestServiceAddValidation(t *testing.T) {
	svc := NewService(NewSQLRepository(openTestDB(t)))
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", 0, 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = svc.Add(ctx, "alice", 7, -2)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}
