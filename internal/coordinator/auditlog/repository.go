package auditlog

import "context"

// Repository is the port for persisting audit entries. The table is an
// append-only log, not an upsert: each call adds a row.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
}
