package catalog

import "context"

// Repository is the persistence port for sellable items.
type Repository interface {
	FindAll(ctx context.Context) ([]SellableItem, error)
	FindByID(ctx context.Context, id string) (*SellableItem, error)
	FindByIDs(ctx context.Context, ids []string) ([]SellableItem, error)
	Create(ctx context.Context, item *SellableItem) error

	// IncrementPurchases bumps the purchase counter by one as a single
	// conditional update at the storage layer, never read-modify-write.
	IncrementPurchases(ctx context.Context, id string) error

	// DecrementPurchases undoes one increment. Compensation only.
	DecrementPurchases(ctx context.Context, id string) error
}
