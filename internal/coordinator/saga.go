// Package coordinator runs multi-write business operations as a sequence
// of steps with compensating actions. The persistence layer is only atomic
// per single-record write, so the purchase finalization (receipt, grant,
// counter) goes through here: a failed step triggers LIFO compensation of
// the steps already done, and every transition is recorded in the audit
// log so stuck executions can be reconciled later.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ac2302/3d-ecommerce-backend/internal/coordinator/auditlog"
)

// Step is a single unit of work with a compensating action that undoes
// its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator executes a collection of Steps for one logical operation.
type Orchestrator struct {
	id      string
	steps   []Step
	logRepo auditlog.Repository // nil-safe: audit logging skipped if nil
}

// NewOrchestrator builds an orchestrator for one execution. The id ties
// the audit rows to business data (typically the receipt id).
func NewOrchestrator(id string, steps []Step, logRepo auditlog.Repository) *Orchestrator {
	return &Orchestrator{id: id, steps: steps, logRepo: logRepo}
}

// Start runs the steps sequentially. If a step fails, all previously
// successful steps are compensated in reverse order and the step's error
// is returned.
func (o *Orchestrator) Start(ctx context.Context, payload string) error {
	o.log(ctx, auditlog.StatusStarted, "", payload, nil)

	var done []Step
	for _, step := range o.steps {
		slog.InfoContext(ctx, "executing step", "saga_id", o.id, "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			stepErr := fmt.Errorf("step %s: %w", step.Name(), err)
			slog.ErrorContext(ctx, "step failed, starting rollback", "saga_id", o.id, "step", step.Name(), "error", err)
			errs := o.rollback(ctx, done, stepErr)
			o.log(ctx, auditlog.StatusFailed, step.Name(), "", errs)
			return stepErr
		}
		done = append(done, step)
		o.log(ctx, auditlog.StatusStepDone, step.Name(), "", nil)
	}

	o.log(ctx, auditlog.StatusCompleted, "", "", nil)
	return nil
}

// rollback compensates the given steps LIFO and collects every error so
// the audit row records both the trigger and any compensation failures.
func (o *Orchestrator) rollback(ctx context.Context, steps []Step, cause error) []string {
	errs := []string{cause.Error()}
	o.log(ctx, auditlog.StatusCompensating, "", "", errs)

	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		slog.InfoContext(ctx, "compensating step", "saga_id", o.id, "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			// A failed compensation leaves residual state: the audit log
			// row is the reconciliation job's work item.
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate step", "saga_id", o.id, "step", step.Name(), "error", err)
			errs = append(errs, fmt.Sprintf("compensate %s: %v", step.Name(), err))
		}
	}
	return errs
}

func (o *Orchestrator) log(ctx context.Context, status auditlog.Status, step, payload string, errs []string) {
	if o.logRepo == nil {
		return
	}
	entry := auditlog.NewEntry(ctx, o.id, status, step, payload, errs)
	if err := o.logRepo.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to persist audit log entry", "saga_id", o.id, "status", status, "error", err)
	}
}
