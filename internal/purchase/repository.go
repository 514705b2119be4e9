package purchase

import "context"

// ReceiptRepository is the persistence port for receipts. Receipts are
// written once; the only mutation the store exposes is the atomic
// claim-and-mark used by payouts.
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *Receipt) error

	// Delete removes a receipt. Compensation only: a receipt whose
	// finalization failed must not survive as money owed.
	Delete(ctx context.Context, id string) error

	FindByID(ctx context.Context, id string) (*Receipt, error)

	// SumUnpaidByCreator returns the total price over receipts with the
	// given creator and paidCreator=false. Pure read.
	SumUnpaidByCreator(ctx context.Context, creatorID string) (int64, error)

	// ClaimUnpaidByCreator atomically marks every unpaid receipt of the
	// creator as paid and returns the amount claimed. Two concurrent
	// calls cannot both claim the same receipt.
	ClaimUnpaidByCreator(ctx context.Context, creatorID string) (int64, error)
}
