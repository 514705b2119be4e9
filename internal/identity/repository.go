package identity

import "context"

// UserRepository resolves principals. FindByToken backs the auth
// middleware; FindByID backs internal lookups.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByToken(ctx context.Context, token string) (*User, error)
	Create(ctx context.Context, user *User, token string) error
}

// OwnershipLedger is the authoritative record of which user owns which
// item. Grant must be idempotent: granting an already-owned item is a
// no-op that reports granted=false.
type OwnershipLedger interface {
	// Grant records ownership of item by user. The storage layer enforces
	// uniqueness, so concurrent grants of the same pair cannot produce a
	// double entry.
	Grant(ctx context.Context, userID, itemID string) (granted bool, err error)

	// Revoke removes a grant. Used only as the compensating action when a
	// later finalization step fails.
	Revoke(ctx context.Context, userID, itemID string) error

	Owns(ctx context.Context, userID, itemID string) (bool, error)
	ListOwned(ctx context.Context, userID string) ([]string, error)
}
