package printjob

import "context"

// Repository is the persistence port for print jobs.
type Repository interface {
	FindAll(ctx context.Context) ([]PrintJob, error)
	Create(ctx context.Context, job *PrintJob) error
}
