// Package identity holds the authenticated principal and the ownership
// ledger port. Ownership is modelled as a (user, item) relation with a
// uniqueness constraint rather than an embedded set on the user record, so
// grants are idempotent at the storage layer.
package identity

import "time"

// User is the authenticated principal attached to requests by the auth
// middleware.
type User struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
