package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ac2302/3d-ecommerce-backend/internal/catalog"
	"github.com/ac2302/3d-ecommerce-backend/internal/fault"
)

const itemColumns = `id, creator_id, title, price, description, object_url, image, sellable_type, purchases, created_at`

// ItemRepository is the SQLite implementation of catalog.Repository.
type ItemRepository struct {
	db *sql.DB
}

var _ catalog.Repository = (*ItemRepository)(nil)

func (d *DB) Items() *ItemRepository {
	return &ItemRepository{db: d.db}
}

func (r *ItemRepository) FindAll(ctx context.Context) ([]catalog.SellableItem, error) {
	q := `SELECT ` + itemColumns + ` FROM sellable_items ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func (r *ItemRepository) FindByID(ctx context.Context, id string) (*catalog.SellableItem, error) {
	q := `SELECT ` + itemColumns + ` FROM sellable_items WHERE id = ?`

	item, err := scanItem(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, fault.NotFound("item %s not found", id)
	}
	if err != nil {
		return nil, fault.Internal(err, "could not load item")
	}
	return item, nil
}

func (r *ItemRepository) FindByIDs(ctx context.Context, ids []string) ([]catalog.SellableItem, error) {
	if len(ids) == 0 {
		return []catalog.SellableItem{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	q := `SELECT ` + itemColumns + ` FROM sellable_items WHERE id IN (` + placeholders + `) ORDER BY created_at DESC`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list items by ids: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func (r *ItemRepository) Create(ctx context.Context, item *catalog.SellableItem) error {
	const q = `
		INSERT INTO sellable_items
			(` + itemColumns + `)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		item.ID,
		item.CreatorID,
		item.Title,
		item.Price,
		item.Description,
		item.ObjectURL,
		item.Image,
		item.SellableType,
		item.Purchases,
		formatTime(item.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: create item %q: %w", item.ID, err)
	}
	return nil
}

// IncrementPurchases is a single conditional update, so concurrent sales
// of the same item never lose a count.
func (r *ItemRepository) IncrementPurchases(ctx context.Context, id string) error {
	return r.bumpPurchases(ctx, id, `purchases = purchases + 1`)
}

// DecrementPurchases undoes one increment during compensation. The MAX
// guard keeps a repeated compensation from driving the counter negative.
func (r *ItemRepository) DecrementPurchases(ctx context.Context, id string) error {
	return r.bumpPurchases(ctx, id, `purchases = MAX(purchases - 1, 0)`)
}

func (r *ItemRepository) bumpPurchases(ctx context.Context, id, set string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sellable_items SET `+set+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: update purchase counter for %q: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("sqlite: item %q not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*catalog.SellableItem, error) {
	var item catalog.SellableItem
	var createdAt string
	err := row.Scan(
		&item.ID,
		&item.CreatorID,
		&item.Title,
		&item.Price,
		&item.Description,
		&item.ObjectURL,
		&item.Image,
		&item.SellableType,
		&item.Purchases,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]catalog.SellableItem, error) {
	items := []catalog.SellableItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate items: %w", err)
	}
	return items, nil
}
