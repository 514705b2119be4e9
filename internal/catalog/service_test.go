package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ac2302/3d-ecommerce-backend/internal/fault"
)

type memoryRepo struct {
	mu    sync.Mutex
	items map[string]*SellableItem
	calls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]*SellableItem{}}
}

func (r *memoryRepo) FindAll(ctx context.Context) ([]SellableItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	out := []SellableItem{}
	for _, item := range r.items {
		out = append(out, *item)
	}
	return out, nil
}

func (r *memoryRepo) FindByID(ctx context.Context, id string) (*SellableItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	item, ok := r.items[id]
	if !ok {
		return nil, fault.NotFound("item %s not found", id)
	}
	copied := *item
	return &copied, nil
}

func (r *memoryRepo) FindByIDs(ctx context.Context, ids []string) ([]SellableItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []SellableItem{}
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memoryRepo) Create(ctx context.Context, item *SellableItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *memoryRepo) IncrementPurchases(ctx context.Context, id string) error { return nil }
func (r *memoryRepo) DecrementPurchases(ctx context.Context, id string) error { return nil }

// memoryCache is a map-backed cache.Cache for tests.
type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := value.([]byte)
	if !ok {
		return errors.New("unexpected value type")
	}
	c.data[key] = string(raw)
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memoryCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.data, key)
	}
	return nil
}

func (c *memoryCache) GenerateKey(operation, key string) string {
	return "catalog:" + operation + ":" + key
}

func validInput() CreateItemInput {
	return CreateItemInput{
		Title:        "benchy",
		Price:        500,
		Description:  "calibration print",
		ObjectURL:    "https://example.com/benchy.stl",
		Image:        "https://example.com/benchy.png",
		SellableType: "model",
	}
}

func TestCreate(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	item, err := svc.Create(context.Background(), "creator-1", validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "creator-1", item.CreatorID)
	assert.Equal(t, int64(500), item.Price)
	assert.Zero(t, item.Purchases)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	tests := []struct {
		name   string
		mutate func(*CreateItemInput)
	}{
		{"missing title", func(in *CreateItemInput) { in.Title = "" }},
		{"missing description", func(in *CreateItemInput) { in.Description = "" }},
		{"missing object url", func(in *CreateItemInput) { in.ObjectURL = "" }},
		{"missing image", func(in *CreateItemInput) { in.Image = "" }},
		{"missing type", func(in *CreateItemInput) { in.SellableType = "" }},
		{"negative price", func(in *CreateItemInput) { in.Price = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), "creator-1", in)
			assert.True(t, fault.Is(err, fault.KindValidation))
		})
	}
}

func TestCreate_FreeItemAllowed(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	in := validInput()
	in.Price = 0
	_, err := svc.Create(context.Background(), "creator-1", in)
	assert.NoError(t, err)
}

func TestList_UsesCache(t *testing.T) {
	repo := newMemoryRepo()
	c := newMemoryCache()
	svc := NewService(repo, c)

	_, err := svc.Create(context.Background(), "creator-1", validInput())
	require.NoError(t, err)

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	callsAfterFirst := repo.calls

	// The second list is served from the cache.
	second, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, repo.calls)
}

func TestCreate_InvalidatesListCache(t *testing.T) {
	repo := newMemoryRepo()
	c := newMemoryCache()
	svc := NewService(repo, c)

	_, err := svc.Create(context.Background(), "creator-1", validInput())
	require.NoError(t, err)
	_, err = svc.List(context.Background())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "creator-1", validInput())
	require.NoError(t, err)

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestGet_CachesItem(t *testing.T) {
	repo := newMemoryRepo()
	c := newMemoryCache()
	svc := NewService(repo, c)

	created, err := svc.Create(context.Background(), "creator-1", validInput())
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// The cached copy round-trips through JSON.
	raw, err := c.Get(context.Background(), c.GenerateKey("item", created.ID))
	require.NoError(t, err)
	var cached SellableItem
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, created.ID, cached.ID)
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, fault.Is(err, fault.KindNotFound))
}
