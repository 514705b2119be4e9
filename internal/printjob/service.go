package printjob

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ac2302/3d-ecommerce-backend/internal/fault"
)

// CreateInput carries the caller-supplied fields for a new print job.
// Price is always derived server-side.
type CreateInput struct {
	Title     string
	Volume    int64
	Quantity  int64
	ObjectURL string
	Address   string
}

// Service validates and stores print jobs.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every print job.
func (s *Service) List(ctx context.Context) ([]PrintJob, error) {
	jobs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fault.Internal(err, "could not list print jobs")
	}
	return jobs, nil
}

// Create stores a print job for the buyer with price = volume × quantity.
func (s *Service) Create(ctx context.Context, buyerID string, in CreateInput) (*PrintJob, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	job := &PrintJob{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		Title:     in.Title,
		Price:     in.Volume * in.Quantity,
		Volume:    in.Volume,
		Quantity:  in.Quantity,
		ObjectURL: in.ObjectURL,
		Address:   in.Address,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, fault.Internal(err, "could not create print job")
	}

	slog.InfoContext(ctx, "print job created", "print_job_id", job.ID, "buyer_id", buyerID, "price", job.Price)
	return job, nil
}

func validateInput(in CreateInput) error {
	var missing []string
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if in.ObjectURL == "" {
		missing = append(missing, "objectUrl")
	}
	if in.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return fault.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}
	if in.Volume <= 0 {
		return fault.Validation("volume must be positive")
	}
	if in.Quantity <= 0 {
		return fault.Validation("quantity must be positive")
	}
	return nil
}
