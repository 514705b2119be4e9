// Package purchase implements the payment verification and receipt
// issuance flows: gateway order initiation, signature-verified purchase
// finalization, and the direct buy path for free items.
package purchase

import "time"

// Receipt is the immutable financial record created when a purchase is
// finalized. It is the sole source of truth for money owed to a creator.
//
// Price is a snapshot of the item price at purchase time and is never
// re-read. PaidCreator transitions false→true exactly once, when the
// creator withdraws; nothing else on a receipt ever changes.
type Receipt struct {
	ID string `json:"id"`

	// OrderID / PaymentID are the gateway identifiers. Empty on the
	// direct buy path.
	OrderID   string `json:"order_id,omitempty"`
	PaymentID string `json:"payment_id,omitempty"`

	ItemID      string    `json:"item_id"`
	BuyerID     string    `json:"buyer_id"`
	CreatorID   string    `json:"creator_id"`
	Price       int64     `json:"price"`
	PaidCreator bool      `json:"paid_creator"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderDetails is what the order initiation returns to the client so it
// can open the gateway checkout. Amount is in minor currency units.
type OrderDetails struct {
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	ReceiptRef     string `json:"receipt_ref"`
}
