// Package auditlog defines the durable trail of every state transition a
// coordinated operation goes through.
//
// It serves two purposes:
//
//  1. Observability: each row carries the OTel trace id, so a stuck
//     purchase can be joined with its distributed trace.
//
//  2. Reconciliation: a FAILED row whose error list includes a failed
//     compensation marks residual state (receipt without ownership or the
//     reverse) that an operator or a cleanup job must resolve.
package auditlog

import "time"

// Status represents the lifecycle state of a coordinated execution.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Entry is a single row in the purchase_logs table: a point-in-time
// snapshot of one execution.
type Entry struct {
	// ExecutionID ties the row to business data, typically the receipt id.
	ExecutionID string

	// Status is the lifecycle state at the time this row was written.
	Status Status

	// CurrentStep is the step that just executed or failed.
	CurrentStep string

	// Payload is the JSON-serialised input, stored once on STARTED.
	Payload string

	// ErrorMessages is a JSON array of failure details, one per failed
	// step or compensation.
	ErrorMessages string

	// TraceID / SpanID are the W3C identifiers of the active OTel span
	// when this row was written. Empty when no span is active.
	TraceID string
	SpanID  string

	UpdatedAt time.Time
}
