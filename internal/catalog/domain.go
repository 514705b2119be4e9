// Package catalog manages sellable items: the records creators publish and
// buyers purchase.
package catalog

import "time"

// SellableItem is a digital or printable item listed for sale. Price is in
// whole currency units; the gateway boundary converts to minor units.
// Price is set at creation and immutable afterwards. Purchases counts
// finalized sales and is only ever incremented atomically by the storage
// layer.
type SellableItem struct {
	ID           string    `json:"id"`
	CreatorID    string    `json:"creator_id"`
	Title        string    `json:"title"`
	Price        int64     `json:"price"`
	Description  string    `json:"description"`
	ObjectURL    string    `json:"object_url"`
	Image        string    `json:"image"`
	SellableType string    `json:"sellable_type"`
	Purchases    int64     `json:"purchases"`
	CreatedAt    time.Time `json:"created_at"`
}
