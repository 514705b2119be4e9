package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ac2302/3d-ecommerce-backend/internal/fault"
	"github.com/ac2302/3d-ecommerce-backend/internal/pkg/cache"
)

// cacheTTL bounds how stale a cached read may be. Purchase counters are
// bumped out-of-band, so cached items can lag by up to this much.
const cacheTTL = 30 * time.Second

// CreateItemInput carries the caller-supplied fields for a new item.
type CreateItemInput struct {
	Title        string
	Price        int64
	Description  string
	ObjectURL    string
	Image        string
	SellableType string
}

// Service exposes catalog reads and item creation, with a read-through
// cache in front of the repository.
type Service struct {
	repo  Repository
	cache cache.Cache // nil disables caching
}

func NewService(repo Repository, c cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

// List returns every sellable item.
func (s *Service) List(ctx context.Context) ([]SellableItem, error) {
	if s.cache != nil {
		key := s.cache.GenerateKey("items", "all")
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var items []SellableItem
			if json.Unmarshal([]byte(raw), &items) == nil {
				return items, nil
			}
		}
	}

	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fault.Internal(err, "could not list items")
	}

	s.cacheSet(ctx, "items", "all", items)
	return items, nil
}

// Get returns a single item by id.
func (s *Service) Get(ctx context.Context, id string) (*SellableItem, error) {
	if s.cache != nil {
		key := s.cache.GenerateKey("item", id)
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var item SellableItem
			if json.Unmarshal([]byte(raw), &item) == nil {
				return &item, nil
			}
		}
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, "item", id, item)
	return item, nil
}

// GetMany resolves a set of item ids to full records, e.g. for the
// owned-items listing. Missing ids are silently skipped.
func (s *Service) GetMany(ctx context.Context, ids []string) ([]SellableItem, error) {
	if len(ids) == 0 {
		return []SellableItem{}, nil
	}
	items, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fault.Internal(err, "could not resolve owned items")
	}
	return items, nil
}

// Create validates and persists a new sellable item for the creator.
func (s *Service) Create(ctx context.Context, creatorID string, in CreateItemInput) (*SellableItem, error) {
	if err := validateItemInput(in); err != nil {
		return nil, err
	}

	item := &SellableItem{
		ID:           uuid.NewString(),
		CreatorID:    creatorID,
		Title:        in.Title,
		Price:        in.Price,
		Description:  in.Description,
		ObjectURL:    in.ObjectURL,
		Image:        in.Image,
		SellableType: in.SellableType,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fault.Internal(err, "could not create item")
	}

	s.invalidateList(ctx)
	slog.InfoContext(ctx, "sellable item created", "item_id", item.ID, "creator_id", creatorID)
	return item, nil
}

func validateItemInput(in CreateItemInput) error {
	var missing []string
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if in.Description == "" {
		missing = append(missing, "description")
	}
	if in.ObjectURL == "" {
		missing = append(missing, "objectUrl")
	}
	if in.Image == "" {
		missing = append(missing, "image")
	}
	if in.SellableType == "" {
		missing = append(missing, "sellableType")
	}
	if len(missing) > 0 {
		return fault.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}
	if in.Price < 0 {
		return fault.Validation("price must not be negative")
	}
	return nil
}

func (s *Service) cacheSet(ctx context.Context, operation, key string, v any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.GenerateKey(operation, key), raw, cacheTTL); err != nil {
		slog.WarnContext(ctx, "catalog cache set failed", "error", err)
	}
}

func (s *Service) invalidateList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.GenerateKey("items", "all")); err != nil {
		slog.WarnContext(ctx, "catalog cache invalidation failed", "error", err)
	}
}
