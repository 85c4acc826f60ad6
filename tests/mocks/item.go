package mocks

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	itemDomain "github.com/davicafu/crudlab/internal/item/domain"
	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
)

// InMemoryItemRepo simula ItemRepository sobre un mapa, con el mismo
// contrato de filtros, orden y paginación que los repos reales.
type InMemoryItemRepo struct {
	Items  map[uuid.UUID]*itemDomain.Item
	schema sharedDomain.Schema
	mu     sync.Mutex
}

var _ itemDomain.ItemRepository = (*InMemoryItemRepo)(nil)

func NewInMemoryItemRepo() *InMemoryItemRepo {
	return &InMemoryItemRepo{
		Items:  make(map[uuid.UUID]*itemDomain.Item),
		schema: itemDomain.Schema(),
	}
}

func (r *InMemoryItemRepo) Insert(ctx context.Context, it *itemDomain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *it
	r.Items[it.ID] = &copied
	return nil
}

func (r *InMemoryItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.Items[id]
	if !ok {
		return nil, sharedDomain.ErrNotFound
	}
	copied := *it
	return &copied, nil
}

func (r *InMemoryItemRepo) Update(ctx context.Context, it *itemDomain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Items[it.ID]; !ok {
		return sharedDomain.ErrNotFound
	}
	copied := *it
	r.Items[it.ID] = &copied
	return nil
}

func (r *InMemoryItemRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Items[id]; !ok {
		return sharedDomain.ErrNotFound
	}
	delete(r.Items, id)
	return nil
}

func (r *InMemoryItemRepo) List(ctx context.Context, q sharedDomain.Query) ([]*itemDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filtered(q)
}

func (r *InMemoryItemRepo) ListPage(ctx context.Context, q sharedDomain.Query) ([]*itemDomain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.filtered(q)
	if err != nil {
		return nil, err
	}

	start := q.Offset()
	if start >= len(list) {
		return []*itemDomain.Item{}, nil
	}
	end := start + q.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end], nil
}

func (r *InMemoryItemRepo) Count(ctx context.Context, q sharedDomain.Query) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.filtered(q)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

// filtered aplica filtros y orden; el caller ya tiene el lock.
func (r *InMemoryItemRepo) filtered(q sharedDomain.Query) ([]*itemDomain.Item, error) {
	if err := q.Validate(r.schema); err != nil {
		return nil, err
	}

	var list []*itemDomain.Item
	for _, it := range r.Items {
		if matches(it, q) {
			copied := *it
			list = append(list, &copied)
		}
	}

	field, err := r.schema.SortField(q.SortBy)
	if err != nil {
		return nil, err
	}
	sortItems(list, field, q.Desc())
	return list, nil
}

func matches(it *itemDomain.Item, q sharedDomain.Query) bool {
	if q.MinDate != nil && it.CreatedAt.Before(*q.MinDate) {
		return false
	}
	if q.MaxDate != nil && it.CreatedAt.After(*q.MaxDate) {
		return false
	}
	if q.MinValue != nil && it.Value < *q.MinValue {
		return false
	}
	if q.MaxValue != nil && it.Value > *q.MaxValue {
		return false
	}
	if q.Search != "" && q.SearchField != "" {
		var haystack string
		switch q.SearchField {
		case "name":
			haystack = it.Name
		case "description":
			haystack = it.Description
		}
		if !strings.Contains(strings.ToLower(haystack), strings.ToLower(q.Search)) {
			return false
		}
	}
	return true
}

func sortItems(list []*itemDomain.Item, field string, desc bool) {
	less := func(a, b *itemDomain.Item) bool {
		switch field {
		case "id":
			return a.ID.String() < b.ID.String()
		case "name":
			return a.Name < b.Name
		case "value":
			return a.Value < b.Value
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		default: // created_at
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}

// ------------------- Repo que falla -------------------

// FailingItemRepo devuelve un fallo de storage en toda operación, para
// probar la traducción de errores de infraestructura.
type FailingItemRepo struct{}

var _ itemDomain.ItemRepository = (*FailingItemRepo)(nil)

func storageFailure() error {
	return sharedDomain.Storage(errors.New("connection refused"))
}

func (FailingItemRepo) Insert(ctx context.Context, it *itemDomain.Item) error {
	return storageFailure()
}

func (FailingItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	return nil, storageFailure()
}

func (FailingItemRepo) Update(ctx context.Context, it *itemDomain.Item) error {
	return storageFailure()
}

func (FailingItemRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return storageFailure()
}

func (FailingItemRepo) List(ctx context.Context, q sharedDomain.Query) ([]*itemDomain.Item, error) {
	return nil, storageFailure()
}

func (FailingItemRepo) ListPage(ctx context.Context, q sharedDomain.Query) ([]*itemDomain.Item, error) {
	return nil, storageFailure()
}

func (FailingItemRepo) Count(ctx context.Context, q sharedDomain.Query) (int64, error) {
	return 0, storageFailure()
}

// ------------------- Cache -------------------

// DummyCache simula una cache en memoria
type DummyCache struct {
	store map[string]*itemDomain.Item
	mu    sync.Mutex
}

// NewDummyCache crea un DummyCache inicializado
func NewDummyCache() *DummyCache {
	return &DummyCache{
		store: make(map[string]*itemDomain.Item),
	}
}

func (c *DummyCache) SetForTest(key string, it *itemDomain.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = it
}

func (c *DummyCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.store[key]
	if !ok {
		return false, nil
	}

	itemPtr, ok := dest.(**itemDomain.Item)
	if !ok {
		return false, nil
	}

	copied := *it
	*itemPtr = &copied
	return true, nil
}

func (c *DummyCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := val.(*itemDomain.Item)
	if !ok {
		return nil
	}
	c.store[key] = it
	return nil
}

func (c *DummyCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// ------------------- EventBus -------------------

type DummyPublisher struct {
	Published []string
	mu        sync.Mutex
}

func (p *DummyPublisher) Publish(ctx context.Context, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Guardar una versión JSON como evidencia
	data, _ := json.Marshal(event)
	p.Published = append(p.Published, string(data))
	log.Printf("Mock Published: %s", data)
	return nil
}

func (p *DummyPublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Published)
}

// ------------------- CapabilityChecker -------------------

// DenyGuard rechaza cualquier capability con un 403 ya clasificado.
type DenyGuard struct{}

var _ sharedDomain.CapabilityChecker = DenyGuard{}

func (DenyGuard) Check(ctx context.Context, cap sharedDomain.Capability) error {
	return &sharedDomain.StatusError{Code: http.StatusForbidden, Message: "insufficient permissions for " + string(cap)}
}
