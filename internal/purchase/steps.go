package purchase

import (
	"context"
	"fmt"

	"github.com/ac2302/3d-ecommerce-backend/internal/catalog"
	"github.com/ac2302/3d-ecommerce-backend/internal/identity"
)

// --- IssueReceiptStep ---

// IssueReceiptStep persists the receipt snapshot. Compensation deletes it
// so a half-finalized purchase never shows up as money owed.
type IssueReceiptStep struct {
	receipts ReceiptRepository
	receipt  *Receipt
}

func NewIssueReceiptStep(receipts ReceiptRepository, receipt *Receipt) *IssueReceiptStep {
	return &IssueReceiptStep{receipts: receipts, receipt: receipt}
}

func (s *IssueReceiptStep) Name() string { return "Issue_Receipt_Step" }

func (s *IssueReceiptStep) Execute(ctx context.Context) error {
	if err := s.receipts.Create(ctx, s.receipt); err != nil {
		return fmt.Errorf("failed to create receipt: %w", err)
	}
	return nil
}

func (s *IssueReceiptStep) Compensate(ctx context.Context) error {
	return s.receipts.Delete(ctx, s.receipt.ID)
}

// --- GrantOwnershipStep ---

// GrantOwnershipStep adds the item to the buyer's owned set. The grant is
// idempotent at the storage layer; compensation only revokes a grant this
// step actually made, so a concurrent purchase that won the race keeps
// its ownership.
type GrantOwnershipStep struct {
	ledger  identity.OwnershipLedger
	userID  string
	itemID  string
	granted bool
}

func NewGrantOwnershipStep(ledger identity.OwnershipLedger, userID, itemID string) *GrantOwnershipStep {
	return &GrantOwnershipStep{ledger: ledger, userID: userID, itemID: itemID}
}

func (s *GrantOwnershipStep) Name() string { return "Grant_Ownership_Step" }

func (s *GrantOwnershipStep) Execute(ctx context.Context) error {
	granted, err := s.ledger.Grant(ctx, s.userID, s.itemID)
	if err != nil {
		return fmt.Errorf("failed to grant ownership: %w", err)
	}
	s.granted = granted
	return nil
}

func (s *GrantOwnershipStep) Compensate(ctx context.Context) error {
	if !s.granted {
		return nil
	}
	return s.ledger.Revoke(ctx, s.userID, s.itemID)
}

// --- IncrementPurchasesStep ---

// IncrementPurchasesStep bumps the item's purchase counter via the atomic
// storage-layer increment.
type IncrementPurchasesStep struct {
	items  catalog.Repository
	itemID string
}

func NewIncrementPurchasesStep(items catalog.Repository, itemID string) *IncrementPurchasesStep {
	return &IncrementPurchasesStep{items: items, itemID: itemID}
}

func (s *IncrementPurchasesStep) Name() string { return "Increment_Purchases_Step" }

func (s *IncrementPurchasesStep) Execute(ctx context.Context) error {
	if err := s.items.IncrementPurchases(ctx, s.itemID); err != nil {
		return fmt.Errorf("failed to increment purchase counter: %w", err)
	}
	return nil
}

func (s *IncrementPurchasesStep) Compensate(ctx context.Context) error {
	return s.items.DecrementPurchases(ctx, s.itemID)
}
