package purchase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ac2302/3d-ecommerce-backend/internal/catalog"
	"github.com/ac2302/3d-ecommerce-backend/internal/coordinator"
	"github.com/ac2302/3d-ecommerce-backend/internal/coordinator/auditlog"
	"github.com/ac2302/3d-ecommerce-backend/internal/fault"
	"github.com/ac2302/3d-ecommerce-backend/internal/identity"
	"github.com/ac2302/3d-ecommerce-backend/internal/payment"
)

// Config carries the deployment-fixed purchase settings.
type Config struct {
	// Currency is the gateway order currency, e.g. "INR".
	Currency string

	// SignatureSecret is the shared secret the gateway signs callbacks
	// with (the gateway key secret).
	SignatureSecret string

	// AllowPaidDirectBuy opens the unverified buy path for priced items.
	// Off outside dev/test deployments.
	AllowPaidDirectBuy bool
}

// Service drives the purchase flows: gateway order initiation, verified
// finalization, and the direct buy path.
type Service struct {
	cfg      Config
	items    catalog.Repository
	ledger   identity.OwnershipLedger
	receipts ReceiptRepository
	gateway  payment.Gateway
	logRepo  auditlog.Repository
}

func NewService(
	cfg Config,
	items catalog.Repository,
	ledger identity.OwnershipLedger,
	receipts ReceiptRepository,
	gateway payment.Gateway,
	logRepo auditlog.Repository,
) *Service {
	return &Service{
		cfg:      cfg,
		items:    items,
		ledger:   ledger,
		receipts: receipts,
		gateway:  gateway,
		logRepo:  logRepo,
	}
}

// InitiateOrder creates a pending gateway order for the item. The
// ownership check here is a pre-flight courtesy: ownership can still race
// with a concurrent purchase, so VerifyAndFinalize re-checks it.
func (s *Service) InitiateOrder(ctx context.Context, buyer *identity.User, itemID string) (*OrderDetails, error) {
	item, err := s.loadUnownedItem(ctx, buyer, itemID)
	if err != nil {
		return nil, err
	}
	if item.Price <= 0 {
		return nil, fault.Validation("item %s is free, use the buy endpoint", itemID)
	}

	receiptRef := payment.NewReceiptRef()
	amount := item.Price * 100 // minor units, two-decimal currency

	order, err := s.gateway.CreateOrder(ctx, amount, s.cfg.Currency, receiptRef)
	if err != nil {
		return nil, fault.External(err, "payment gateway rejected order creation")
	}

	slog.InfoContext(ctx, "gateway order created",
		"item_id", itemID, "buyer_id", buyer.ID, "gateway_order_id", order.ID, "amount", amount)

	return &OrderDetails{
		GatewayOrderID: order.ID,
		Amount:         amount,
		Currency:       s.cfg.Currency,
		ReceiptRef:     receiptRef,
	}, nil
}

// VerifyAndFinalize checks the gateway signature and, on success, issues
// the receipt, grants ownership and bumps the purchase counter as one
// coordinated operation. Any persistence failure after verification
// compensates the finished steps and surfaces as an internal error; the
// caller must restart from a fresh order.
func (s *Service) VerifyAndFinalize(ctx context.Context, buyer *identity.User, itemID, orderID, paymentID, signature string) (*Receipt, error) {
	item, err := s.loadUnownedItem(ctx, buyer, itemID)
	if err != nil {
		return nil, err
	}

	if !payment.VerifySignature(orderID, paymentID, signature, s.cfg.SignatureSecret) {
		slog.WarnContext(ctx, "payment signature rejected",
			"item_id", itemID, "buyer_id", buyer.ID, "gateway_order_id", orderID)
		return nil, fault.InvalidSignature("invalid payment signature")
	}

	receipt := &Receipt{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		PaymentID: paymentID,
		ItemID:    item.ID,
		BuyerID:   buyer.ID,
		CreatorID: item.CreatorID,
		Price:     item.Price,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.finalize(ctx, buyer, receipt); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "payment verified and purchase finalized",
		"receipt_id", receipt.ID, "item_id", item.ID, "buyer_id", buyer.ID, "price", receipt.Price)
	return receipt, nil
}

// DirectBuy finalizes a purchase without gateway involvement. Restricted
// to free items unless the deployment explicitly allows paid direct buys.
func (s *Service) DirectBuy(ctx context.Context, buyer *identity.User, itemID string) (*Receipt, error) {
	item, err := s.loadUnownedItem(ctx, buyer, itemID)
	if err != nil {
		return nil, err
	}
	if item.Price > 0 && !s.cfg.AllowPaidDirectBuy {
		return nil, fault.Validation("item %s is not free, use the order and verify endpoints", itemID)
	}

	receipt := &Receipt{
		ID:        uuid.NewString(),
		ItemID:    item.ID,
		BuyerID:   buyer.ID,
		CreatorID: item.CreatorID,
		Price:     item.Price,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.finalize(ctx, buyer, receipt); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "direct buy finalized",
		"receipt_id", receipt.ID, "item_id", item.ID, "buyer_id", buyer.ID)
	return receipt, nil
}

// finalize runs the three finalization writes through the coordinator so
// a failure cannot leave a receipt without ownership or the reverse.
func (s *Service) finalize(ctx context.Context, buyer *identity.User, receipt *Receipt) error {
	steps := []coordinator.Step{
		NewIssueReceiptStep(s.receipts, receipt),
		NewGrantOwnershipStep(s.ledger, buyer.ID, receipt.ItemID),
		NewIncrementPurchasesStep(s.items, receipt.ItemID),
	}

	payload, _ := json.Marshal(receipt)
	saga := coordinator.NewOrchestrator(receipt.ID, steps, s.logRepo)
	if err := saga.Start(ctx, string(payload)); err != nil {
		return fault.Internal(err, "could not finalize purchase")
	}
	return nil
}

// loadUnownedItem fetches the item and rejects the call when the buyer
// already owns it.
func (s *Service) loadUnownedItem(ctx context.Context, buyer *identity.User, itemID string) (*catalog.SellableItem, error) {
	owns, err := s.ledger.Owns(ctx, buyer.ID, itemID)
	if err != nil {
		return nil, fault.Internal(err, "could not check ownership")
	}
	if owns {
		return nil, fault.Conflict("item %s already owned", itemID)
	}

	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return item, nil
}
