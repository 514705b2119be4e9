package coordinator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ac2302/3d-ecommerce-backend/internal/coordinator/auditlog"
)

type recordingStep struct {
	name          string
	executeErr    error
	compensateErr error
	log           *[]string
}

func (s *recordingStep) Name() string { return s.name }

func (s *recordingStep) Execute(ctx context.Context) error {
	*s.log = append(*s.log, "exec:"+s.name)
	return s.executeErr
}

func (s *recordingStep) Compensate(ctx context.Context) error {
	*s.log = append(*s.log, "comp:"+s.name)
	return s.compensateErr
}

type memoryAuditRepo struct {
	entries []*auditlog.Entry
}

func (r *memoryAuditRepo) Save(ctx context.Context, entry *auditlog.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memoryAuditRepo) statuses() []auditlog.Status {
	out := make([]auditlog.Status, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Status
	}
	return out
}

func TestOrchestrator_AllStepsSucceed(t *testing.T) {
	var log []string
	steps := []Step{
		&recordingStep{name: "one", log: &log},
		&recordingStep{name: "two", log: &log},
		&recordingStep{name: "three", log: &log},
	}
	repo := &memoryAuditRepo{}

	err := NewOrchestrator("exec-1", steps, repo).Start(context.Background(), `{"id":"exec-1"}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"exec:one", "exec:two", "exec:three"}, log)
	assert.Equal(t, []auditlog.Status{
		auditlog.StatusStarted,
		auditlog.StatusStepDone,
		auditlog.StatusStepDone,
		auditlog.StatusStepDone,
		auditlog.StatusCompleted,
	}, repo.statuses())

	// The payload is stored once, on the STARTED row.
	assert.Equal(t, `{"id":"exec-1"}`, repo.entries[0].Payload)
	assert.Empty(t, repo.entries[1].Payload)
}

func TestOrchestrator_FailureCompensatesLIFO(t *testing.T) {
	var log []string
	steps := []Step{
		&recordingStep{name: "one", log: &log},
		&recordingStep{name: "two", log: &log},
		&recordingStep{name: "three", log: &log, executeErr: errors.New("boom")},
	}
	repo := &memoryAuditRepo{}

	err := NewOrchestrator("exec-2", steps, repo).Start(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step three")

	// Steps one and two are compensated in reverse order; three never
	// completed so it is not compensated.
	assert.Equal(t, []string{"exec:one", "exec:two", "exec:three", "comp:two", "comp:one"}, log)

	final := repo.entries[len(repo.entries)-1]
	assert.Equal(t, auditlog.StatusFailed, final.Status)
	assert.Contains(t, final.ErrorMessages, "boom")
}

func TestOrchestrator_CompensationFailureRecorded(t *testing.T) {
	var log []string
	steps := []Step{
		&recordingStep{name: "one", log: &log, compensateErr: errors.New("stuck")},
		&recordingStep{name: "two", log: &log, executeErr: errors.New("boom")},
	}
	repo := &memoryAuditRepo{}

	err := NewOrchestrator("exec-3", steps, repo).Start(context.Background(), "")
	require.Error(t, err)

	// The failed compensation shows up in the audit trail: this is the
	// row a reconciliation job would act on.
	final := repo.entries[len(repo.entries)-1]
	assert.Equal(t, auditlog.StatusFailed, final.Status)
	assert.Contains(t, final.ErrorMessages, "compensate one")
	assert.Contains(t, final.ErrorMessages, "stuck")
}

func TestOrchestrator_NilAuditRepo(t *testing.T) {
	var log []string
	steps := []Step{&recordingStep{name: "one", log: &log}}

	err := NewOrchestrator("exec-4", steps, nil).Start(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"exec:one"}, log)
}
