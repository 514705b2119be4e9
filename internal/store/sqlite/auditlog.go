package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ac2302/3d-ecommerce-backend/internal/coordinator/auditlog"
)

// AuditLogRepository is the SQLite implementation of auditlog.Repository.
// The purchase_logs table is append-only: each row is an immutable event
// in a finalization's lifecycle.
type AuditLogRepository struct {
	db *sql.DB
}

var _ auditlog.Repository = (*AuditLogRepository)(nil)

func (d *DB) AuditLog() *AuditLogRepository {
	return &AuditLogRepository{db: d.db}
}

// Save inserts a new audit entry. Safe to call concurrently.
func (r *AuditLogRepository) Save(ctx context.Context, entry *auditlog.Entry) error {
	const q = `
		INSERT INTO purchase_logs
			(execution_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.ExecutionID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save audit entry for %q: %w", entry.ExecutionID, err)
	}
	return nil
}

// GetLatest returns the most recent entry for an execution, for status
// checks and recovery on restart.
func (r *AuditLogRepository) GetLatest(ctx context.Context, executionID string) (*auditlog.Entry, error) {
	const q = `
		SELECT execution_id, status, current_step, COALESCE(payload,''), error_messages,
		       trace_id, span_id, updated_at
		FROM   purchase_logs
		WHERE  execution_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`

	row := r.db.QueryRowContext(ctx, q, executionID)

	var entry auditlog.Entry
	var updatedAt string
	err := row.Scan(
		&entry.ExecutionID,
		&entry.Status,
		&entry.CurrentStep,
		&entry.Payload,
		&entry.ErrorMessages,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sqlite: execution %q not found", executionID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for %q: %w", executionID, err)
	}

	entry.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}
