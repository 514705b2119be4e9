package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ac2302/3d-ecommerce-backend/internal/fault"
	"github.com/ac2302/3d-ecommerce-backend/internal/purchase"
)

// ReceiptRepository is the SQLite implementation of
// purchase.ReceiptRepository.
type ReceiptRepository struct {
	db *sql.DB
}

var _ purchase.ReceiptRepository = (*ReceiptRepository)(nil)

func (d *DB) Receipts() *ReceiptRepository {
	return &ReceiptRepository{db: d.db}
}

func (r *ReceiptRepository) Create(ctx context.Context, receipt *purchase.Receipt) error {
	const q = `
		INSERT INTO receipts
			(id, order_id, payment_id, item_id, buyer_id, creator_id, price, paid_creator, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		receipt.ID,
		receipt.OrderID,
		receipt.PaymentID,
		receipt.ItemID,
		receipt.BuyerID,
		receipt.CreatorID,
		receipt.Price,
		boolToInt(receipt.PaidCreator),
		formatTime(receipt.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: create receipt %q: %w", receipt.ID, err)
	}
	return nil
}

func (r *ReceiptRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: delete receipt %q: %w", id, err)
	}
	return nil
}

func (r *ReceiptRepository) FindByID(ctx context.Context, id string) (*purchase.Receipt, error) {
	const q = `
		SELECT id, order_id, payment_id, item_id, buyer_id, creator_id, price, paid_creator, created_at
		FROM   receipts
		WHERE  id = ?`

	var receipt purchase.Receipt
	var paid int
	var createdAt string
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&receipt.ID,
		&receipt.OrderID,
		&receipt.PaymentID,
		&receipt.ItemID,
		&receipt.BuyerID,
		&receipt.CreatorID,
		&receipt.Price,
		&paid,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, fault.NotFound("receipt %s not found", id)
	}
	if err != nil {
		return nil, fault.Internal(err, "could not load receipt")
	}

	receipt.PaidCreator = paid != 0
	if receipt.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fault.Internal(err, "could not load receipt")
	}
	return &receipt, nil
}

func (r *ReceiptRepository) SumUnpaidByCreator(ctx context.Context, creatorID string) (int64, error) {
	const q = `
		SELECT COALESCE(SUM(price), 0)
		FROM   receipts
		WHERE  creator_id = ? AND paid_creator = 0`

	var sum int64
	if err := r.db.QueryRowContext(ctx, q, creatorID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sqlite: sum unpaid receipts for %q: %w", creatorID, err)
	}
	return sum, nil
}

// ClaimUnpaidByCreator flips paid_creator on every unpaid receipt of the
// creator and sums the claimed prices, all in one statement. A receipt
// claimed here is invisible to any concurrent claim, which closes the
// double-report race of a separate read-then-write.
func (r *ReceiptRepository) ClaimUnpaidByCreator(ctx context.Context, creatorID string) (int64, error) {
	const q = `
		UPDATE receipts
		SET    paid_creator = 1
		WHERE  creator_id = ? AND paid_creator = 0
		RETURNING price`

	rows, err := r.db.QueryContext(ctx, q, creatorID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: claim unpaid receipts for %q: %w", creatorID, err)
	}
	defer rows.Close()

	var sum int64
	for rows.Next() {
		var price int64
		if err := rows.Scan(&price); err != nil {
			return 0, fmt.Errorf("sqlite: scan claimed price: %w", err)
		}
		sum += price
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("sqlite: iterate claimed receipts: %w", err)
	}
	return sum, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
