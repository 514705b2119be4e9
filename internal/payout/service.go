// Package payout computes and settles the balance owed to creators from
// their unpaid receipts.
package payout

import (
	"context"
	"log/slog"

	"github.com/ac2302/3d-ecommerce-backend/internal/fault"
	"github.com/ac2302/3d-ecommerce-backend/internal/purchase"
)

// Service aggregates receipts into creator balances.
type Service struct {
	receipts purchase.ReceiptRepository
}

func NewService(receipts purchase.ReceiptRepository) *Service {
	return &Service{receipts: receipts}
}

// Due returns the amount currently owed to the creator: the sum of price
// over their receipts with paidCreator=false. Pure read.
func (s *Service) Due(ctx context.Context, creatorID string) (int64, error) {
	amount, err := s.receipts.SumUnpaidByCreator(ctx, creatorID)
	if err != nil {
		return 0, fault.Internal(err, "could not compute due amount")
	}
	return amount, nil
}

// Withdraw marks every unpaid receipt of the creator as paid and returns
// the amount settled. The claim is a single conditional update at the
// storage layer, so two concurrent withdrawals cannot both report the
// same receipts: each receipt is counted in exactly one call.
//
// Receipts created after the claim are untouched and stay due for the
// next withdrawal.
func (s *Service) Withdraw(ctx context.Context, creatorID string) (int64, error) {
	amount, err := s.receipts.ClaimUnpaidByCreator(ctx, creatorID)
	if err != nil {
		return 0, fault.Internal(err, "could not settle payout")
	}

	slog.InfoContext(ctx, "payout withdrawn", "creator_id", creatorID, "amount", amount)
	return amount, nil
}
