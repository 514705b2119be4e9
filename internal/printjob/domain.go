// Package printjob handles physical print orders priced by print volume
// times quantity.
package printjob

import "time"

// PrintJob is a buyer's request to have an object printed and shipped.
// Immutable after creation; no lifecycle transitions are modelled.
type PrintJob struct {
	ID        string    `json:"id"`
	BuyerID   string    `json:"buyer_id"`
	Title     string    `json:"title"`
	Price     int64     `json:"price"`
	Volume    int64     `json:"volume"`
	Quantity  int64     `json:"quantity"`
	ObjectURL string    `json:"object_url"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}
