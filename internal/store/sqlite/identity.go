package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ac2302/3d-ecommerce-backend/internal/fault"
	"github.com/ac2302/3d-ecommerce-backend/internal/identity"
)

// UserRepository is the SQLite implementation of identity.UserRepository.
type UserRepository struct {
	db *sql.DB
}

var _ identity.UserRepository = (*UserRepository)(nil)

func (d *DB) Users() *UserRepository {
	return &UserRepository{db: d.db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*identity.User, error) {
	const q = `SELECT id, name, created_at FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, q, id), id)
}

func (r *UserRepository) FindByToken(ctx context.Context, token string) (*identity.User, error) {
	const q = `SELECT id, name, created_at FROM users WHERE token = ?`

	user, err := r.scanUser(r.db.QueryRowContext(ctx, q, token), "")
	if err != nil {
		if fault.Is(err, fault.KindNotFound) {
			return nil, fault.Unauthorized("unknown token")
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *identity.User, token string) error {
	const q = `INSERT INTO users (id, name, token, created_at) VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q, user.ID, user.Name, token, formatTime(user.CreatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: create user %q: %w", user.ID, err)
	}
	return nil
}

func (r *UserRepository) scanUser(row *sql.Row, id string) (*identity.User, error) {
	var user identity.User
	var createdAt string
	err := row.Scan(&user.ID, &user.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fault.NotFound("user %s not found", id)
	}
	if err != nil {
		return nil, fault.Internal(err, "could not load user")
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fault.Internal(err, "could not load user")
	}
	return &user, nil
}

// OwnershipLedger is the SQLite implementation of identity.OwnershipLedger.
type OwnershipLedger struct {
	db *sql.DB
}

var _ identity.OwnershipLedger = (*OwnershipLedger)(nil)

func (d *DB) Ownerships() *OwnershipLedger {
	return &OwnershipLedger{db: d.db}
}

// Grant inserts the (user, item) pair. INSERT OR IGNORE plus the UNIQUE
// constraint make the grant idempotent: the second grant of the same pair
// affects zero rows and reports granted=false.
func (l *OwnershipLedger) Grant(ctx context.Context, userID, itemID string) (bool, error) {
	const q = `INSERT OR IGNORE INTO ownerships (user_id, item_id, created_at) VALUES (?, ?, ?)`

	res, err := l.db.ExecContext(ctx, q, userID, itemID, formatTime(time.Now()))
	if err != nil {
		return false, fmt.Errorf("sqlite: grant %q to %q: %w", itemID, userID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: grant %q to %q: %w", itemID, userID, err)
	}
	return n > 0, nil
}

func (l *OwnershipLedger) Revoke(ctx context.Context, userID, itemID string) error {
	const q = `DELETE FROM ownerships WHERE user_id = ? AND item_id = ?`

	if _, err := l.db.ExecContext(ctx, q, userID, itemID); err != nil {
		return fmt.Errorf("sqlite: revoke %q from %q: %w", itemID, userID, err)
	}
	return nil
}

func (l *OwnershipLedger) Owns(ctx context.Context, userID, itemID string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM ownerships WHERE user_id = ? AND item_id = ?)`

	var owns bool
	if err := l.db.QueryRowContext(ctx, q, userID, itemID).Scan(&owns); err != nil {
		return false, fmt.Errorf("sqlite: check ownership of %q by %q: %w", itemID, userID, err)
	}
	return owns, nil
}

func (l *OwnershipLedger) ListOwned(ctx context.Context, userID string) ([]string, error) {
	const q = `SELECT item_id FROM ownerships WHERE user_id = ? ORDER BY created_at`

	rows, err := l.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list owned items for %q: %w", userID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scan owned item: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate owned items: %w", err)
	}
	return ids, nil
}
