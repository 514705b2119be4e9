package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ac2302/3d-ecommerce-backend/internal/printjob"
)

// PrintJobRepository is the SQLite implementation of printjob.Repository.
type PrintJobRepository struct {
	db *sql.DB
}

var _ printjob.Repository = (*PrintJobRepository)(nil)

func (d *DB) PrintJobs() *PrintJobRepository {
	return &PrintJobRepository{db: d.db}
}

func (r *PrintJobRepository) FindAll(ctx context.Context) ([]printjob.PrintJob, error) {
	const q = `
		SELECT id, buyer_id, title, price, volume, quantity, object_url, address, created_at
		FROM   print_jobs
		ORDER  BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list print jobs: %w", err)
	}
	defer rows.Close()

	jobs := []printjob.PrintJob{}
	for rows.Next() {
		var job printjob.PrintJob
		var createdAt string
		err := rows.Scan(
			&job.ID,
			&job.BuyerID,
			&job.Title,
			&job.Price,
			&job.Volume,
			&job.Quantity,
			&job.ObjectURL,
			&job.Address,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan print job: %w", err)
		}
		if job.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate print jobs: %w", err)
	}
	return jobs, nil
}

func (r *PrintJobRepository) Create(ctx context.Context, job *printjob.PrintJob) error {
	const q = `
		INSERT INTO print_jobs
			(id, buyer_id, title, price, volume, quantity, object_url, address, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		job.ID,
		job.BuyerID,
		job.Title,
		job.Price,
		job.Volume,
		job.Quantity,
		job.ObjectURL,
		job.Address,
		formatTime(job.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: create print job %q: %w", job.ID, err)
	}
	return nil
}
