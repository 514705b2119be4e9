package purchase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ac2302/3d-ecommerce-backend/internal/catalog"
	"github.com/ac2302/3d-ecommerce-backend/internal/fault"
	"github.com/ac2302/3d-ecommerce-backend/internal/identity"
	"github.com/ac2302/3d-ecommerce-backend/internal/payment"
)

// --- in-memory fakes ---

type fakeItemRepo struct {
	mu       sync.Mutex
	items    map[string]*catalog.SellableItem
	bumpErr  error
	bumps    map[string]int64
}

func newFakeItemRepo(items ...*catalog.SellableItem) *fakeItemRepo {
	r := &fakeItemRepo{items: map[string]*catalog.SellableItem{}, bumps: map[string]int64{}}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *fakeItemRepo) FindAll(ctx context.Context) ([]catalog.SellableItem, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeItemRepo) FindByID(ctx context.Context, id string) (*catalog.SellableItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, fault.NotFound("item %s not found", id)
	}
	copied := *item
	return &copied, nil
}

func (r *fakeItemRepo) FindByIDs(ctx context.Context, ids []string) ([]catalog.SellableItem, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeItemRepo) Create(ctx context.Context, item *catalog.SellableItem) error {
	return errors.New("not implemented")
}

func (r *fakeItemRepo) IncrementPurchases(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bumpErr != nil {
		return r.bumpErr
	}
	r.bumps[id]++
	return nil
}

func (r *fakeItemRepo) DecrementPurchases(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bumps[id]--
	return nil
}

type fakeLedger struct {
	mu    sync.Mutex
	owned map[string]bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{owned: map[string]bool{}}
}

func key(userID, itemID string) string { return userID + "/" + itemID }

func (l *fakeLedger) Grant(ctx context.Context, userID, itemID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owned[key(userID, itemID)] {
		return false, nil
	}
	l.owned[key(userID, itemID)] = true
	return true, nil
}

func (l *fakeLedger) Revoke(ctx context.Context, userID, itemID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.owned, key(userID, itemID))
	return nil
}

func (l *fakeLedger) Owns(ctx context.Context, userID, itemID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owned[key(userID, itemID)], nil
}

func (l *fakeLedger) ListOwned(ctx context.Context, userID string) ([]string, error) {
	return nil, errors.New("not implemented")
}

type fakeReceiptRepo struct {
	mu       sync.Mutex
	receipts map[string]*Receipt
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{receipts: map[string]*Receipt{}}
}

func (r *fakeReceiptRepo) Create(ctx context.Context, receipt *Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *receipt
	r.receipts[receipt.ID] = &copied
	return nil
}

func (r *fakeReceiptRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.receipts, id)
	return nil
}

func (r *fakeReceiptRepo) FindByID(ctx context.Context, id string) (*Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	receipt, ok := r.receipts[id]
	if !ok {
		return nil, fault.NotFound("receipt %s not found", id)
	}
	return receipt, nil
}

func (r *fakeReceiptRepo) SumUnpaidByCreator(ctx context.Context, creatorID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, receipt := range r.receipts {
		if receipt.CreatorID == creatorID && !receipt.PaidCreator {
			sum += receipt.Price
		}
	}
	return sum, nil
}

func (r *fakeReceiptRepo) ClaimUnpaidByCreator(ctx context.Context, creatorID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, receipt := range r.receipts {
		if receipt.CreatorID == creatorID && !receipt.PaidCreator {
			sum += receipt.Price
			receipt.PaidCreator = true
		}
	}
	return sum, nil
}

func (r *fakeReceiptRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.receipts)
}

type fakeGateway struct {
	lastAmount   int64
	lastCurrency string
	err          error
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*payment.GatewayOrder, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.lastAmount = amountMinor
	g.lastCurrency = currency
	return &payment.GatewayOrder{ID: "order_test", Amount: amountMinor, Currency: currency, Receipt: receipt}, nil
}

// --- fixtures ---

const testSecret = "s3cret"

func testItem(id string, price int64) *catalog.SellableItem {
	return &catalog.SellableItem{
		ID:        id,
		CreatorID: "creator-1",
		Title:     "benchy",
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}
}

func testBuyer() *identity.User {
	return &identity.User{ID: "buyer-1", Name: "buyer"}
}

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

type env struct {
	svc      *Service
	items    *fakeItemRepo
	ledger   *fakeLedger
	receipts *fakeReceiptRepo
	gateway  *fakeGateway
}

func newEnv(cfg Config, items ...*catalog.SellableItem) *env {
	e := &env{
		items:    newFakeItemRepo(items...),
		ledger:   newFakeLedger(),
		receipts: newFakeReceiptRepo(),
		gateway:  &fakeGateway{},
	}
	e.svc = NewService(cfg, e.items, e.ledger, e.receipts, e.gateway, nil)
	return e
}

func defaultConfig() Config {
	return Config{Currency: "INR", SignatureSecret: testSecret}
}

// --- InitiateOrder ---

func TestInitiateOrder_AmountInMinorUnits(t *testing.T) {
	e := newEnv(defaultConfig(), testItem("item-1", 500))

	order, err := e.svc.InitiateOrder(context.Background(), testBuyer(), "item-1")
	require.NoError(t, err)

	assert.Equal(t, int64(50000), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "order_test", order.GatewayOrderID)
	assert.Len(t, order.ReceiptRef, 20)
}

func TestInitiateOrder_ItemNotFound(t *testing.T) {
	e := newEnv(defaultConfig())

	_, err := e.svc.InitiateOrder(context.Background(), testBuyer(), "nope")
	assert.True(t, fault.Is(err, fault.KindNotFound))
}

func TestInitiateOrder_AlreadyOwned(t *testing.T) {
	e := newEnv(defaultConfig(), testItem("item-1", 500))
	_, err := e.ledger.Grant(context.Background(), "buyer-1", "item-1")
	require.NoError(t, err)

	_, err = e.svc.InitiateOrder(context.Background(), testBuyer(), "item-1")
	assert.True(t, fault.Is(err, fault.KindConflict))
}

func TestInitiateOrder_GatewayFailure(t *testing.T) {
	e := newEnv(defaultConfig(), testItem("item-1", 500))
	e.gateway.err = errors.New("connection refused")

	_, err := e.svc.InitiateOrder(context.Background(), testBuyer(), "item-1")
	assert.True(t, fault.Is(err, fault.KindExternalService))
}

// --- VerifyAndFinalize ---

func TestVerifyAndFinalize_Success(t *testing.T) {
	e := newEnv(defaultConfig(), testItem("item-1", 500))
	buyer := testBuyer()

	receipt, err := e.svc.VerifyAndFinalize(context.Background(), buyer, "item-1", "O1", "P1", sign("O1", "P1"))
	require.NoError(t, err)

	assert.Equal(t, int64(500), receipt.Price)
	assert.Equal(t, "O1", receipt.OrderID)
	assert.Equal(t, "P1", receipt.PaymentID)
	assert.Equal(t, "creator-1", receipt.CreatorID)
	assert.False(t, receipt.PaidCreator)

	owns, err := e.ledger.Owns(context.Background(), buyer.ID, "item-1")
	require.NoError(t, err)
	assert.True(t, owns)
	assert.Equal(t, int64(1), e.items.bumps["item-1"])

	stored, err := e.receipts.FindByID(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.Price, stored.Price)
}

func TestVerifyAndFinalize_InvalidSignature(t *testing.T) {
	e := newEnv(defaultConfig(), testItem("item-1", 500))

	_, err := e.svc.VerifyAndFinalize(context.Background(), testBuyer(), "item-1", "O1", "P1", "bogus")
	assert.True(t, fault.Is(err, fault.KindInvalidSignature))

	// No receipt, no grant.
	assert.Equal(t, 0, e.receipts.count())
	owns, _ := e.ledger.Owns(context.Background(), "buyer-1", "item-1")
	assert.False(t, owns)
}

func TestVerifyAndFinalize_AlreadyOwned(t *testing.T) {
	e := newEnv(defaultConfig(), testItem("item-1", 500))
	_, err := e.ledger.Grant(context.Background(), "buyer-1", "item-1")
	require.NoError(t, err)

	_, err = e.svc.VerifyAndFinalize(context.Background(), testBuyer(), "item-1", "O1", "P1", sign("O1", "P1"))
	assert.True(t, fault.Is(err, fault.KindConflict))
	assert.Equal(t, 0, e.receipts.count())
}

func TestVerifyAndFinalize_RollbackOnStepFailure(t *testing.T) {
	e := newEnv(defaultConfig(), testItem("item-1", 500))
	e.items.bumpErr = errors.New("disk full")

	_, err := e.svc.VerifyAndFinalize(context.Background(), testBuyer(), "item-1", "O1", "P1", sign("O1", "P1"))
	assert.True(t, fault.Is(err, fault.KindInternal))

	// The receipt and the grant from the earlier steps must be undone.
	assert.Equal(t, 0, e.receipts.count())
	owns, _ := e.ledger.Owns(context.Background(), "buyer-1", "item-1")
	assert.False(t, owns)
}

// --- DirectBuy ---

func TestDirectBuy_FreeItem(t *testing.T) {
	e := newEnv(defaultConfig(), testItem("item-1", 0))
	buyer := testBuyer()

	receipt, err := e.svc.DirectBuy(context.Background(), buyer, "item-1")
	require.NoError(t, err)

	assert.Zero(t, receipt.Price)
	assert.Empty(t, receipt.OrderID)

	owns, _ := e.ledger.Owns(context.Background(), buyer.ID, "item-1")
	assert.True(t, owns)
	assert.Equal(t, int64(1), e.items.bumps["item-1"])
}

func TestDirectBuy_PricedItemRejected(t *testing.T) {
	e := newEnv(defaultConfig(), testItem("item-1", 500))

	_, err := e.svc.DirectBuy(context.Background(), testBuyer(), "item-1")
	assert.True(t, fault.Is(err, fault.KindValidation))
	assert.Equal(t, 0, e.receipts.count())
}

func TestDirectBuy_PricedItemAllowedInDevMode(t *testing.T) {
	cfg := defaultConfig()
	cfg.AllowPaidDirectBuy = true
	e := newEnv(cfg, testItem("item-1", 500))

	receipt, err := e.svc.DirectBuy(context.Background(), testBuyer(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), receipt.Price)
}

func TestDirectBuy_CannotOwnTwice(t *testing.T) {
	e := newEnv(defaultConfig(), testItem("item-1", 0))
	buyer := testBuyer()

	_, err := e.svc.DirectBuy(context.Background(), buyer, "item-1")
	require.NoError(t, err)

	_, err = e.svc.DirectBuy(context.Background(), buyer, "item-1")
	assert.True(t, fault.Is(err, fault.KindConflict))
	assert.Equal(t, 1, e.receipts.count())
}
