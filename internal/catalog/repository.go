package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/watchworks/storefront/internal/domain"
)

// SQLRepository is the SQLite implementation of Repository.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

const watchColumns = "id, brand, model, price, description, image_url, discontinued"

func (r *SQLRepository) List(ctx context.Context, includeDiscontinued bool) ([]Watch, error) {
	q := "SELECT " + watchColumns + " FROM watches"
	if !includeDiscontinued {
		q += " WHERE discontinued = 0"
	}
	q += " ORDER BY brand, model"

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("catalog: list watches: %w", err)
	}
	defer rows.Close()

	watches := []Watch{}
	for rows.Next() {
		w, err := scanWatch(rows)
		if err != nil {
			return nil, err
		}
		watches = append(watches, *w)
	}
	return watches, rows.Err()
}

func (r *SQLRepository) Get(ctx context.Context, id int64) (*Watch, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+watchColumns+" FROM watches WHERE id = ?", id)

	w, err := scanWatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog: watch %d: %w", id, domain.ErrNotFound)
	}
	return w, err
}

func (r *SQLRepository) Create(ctx context.Context, nw NewWatch) (*Watch, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO watches (brand, model, price, description, image_url)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+watchColumns,
		nw.Brand, nw.Model, nw.Price.String(), nw.Description, nw.ImageURL)

	w, err := scanWatch(row)
	if err != nil {
		return nil, fmt.Errorf("catalog: create watch: %w", err)
	}
	return w, nil
}

func (r *SQLRepository) Update(ctx context.Context, id int64, nw NewWatch, discontinued bool) (*Watch, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE watches
		SET    brand = ?, model = ?, price = ?, description = ?, image_url = ?, discontinued = ?
		WHERE  id = ?
		RETURNING `+watchColumns,
		nw.Brand, nw.Model, nw.Price.String(), nw.Description, nw.ImageURL, boolToInt(discontinued), id)

	w, err := scanWatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog: watch %d: %w", id, domain.ErrNotFound)
	}
	return w, err
}

func (r *SQLRepository) SetDiscontinued(ctx context.Context, id int64, discontinued bool) (*Watch, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE watches SET discontinued = ? WHERE id = ?
		RETURNING `+watchColumns,
		boolToInt(discontinued), id)

	w, err := scanWatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog: watch %d: %w", id, domain.ErrNotFound)
	}
	return w, err
}

func (r *SQLRepository) SetImageURL(ctx context.Context, id int64, imageURL string) (*Watch, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE watches SET image_url = ? WHERE id = ?
		RETURNING `+watchColumns,
		imageURL, id)

	w, err := scanWatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog: watch %d: %w", id, domain.ErrNotFound)
	}
	return w, err
}

func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM watches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("catalog: delete watch %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("catalog: watch %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanWatch(s scanner) (*Watch, error) {
	var (
		w            Watch
		price        string
		discontinued int
	)
	err := s.Scan(&w.ID, &w.Brand, &w.Model, &price, &w.Description, &w.ImageURL, &discontinued)
	if err != nil {
		return nil, err
	}

	w.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("catalog: watch %d has bad price %q: %w", w.ID, price, err)
	}
	w.Discontinued = discontinued != 0
	return &w, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
