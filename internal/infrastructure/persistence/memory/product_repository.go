package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/warehouse/backend/internal/domain/shared"
	"github.com/warehouse/backend/internal/domain/stock"
)

type productRepository struct {
	store *Store
}

// FindByID returns a copy so callers cannot mutate stored state
func (r *productRepository) FindByID(_ context.Context, id uuid.UUID) (*stock.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	product, ok := r.store.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &product, nil
}

func (r *productRepository) FindBySKU(_ context.Context, sku string) (*stock.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, product := range r.store.products {
		if product.SKU == sku {
			return &product, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *productRepository) FindAll(_ context.Context, filter shared.Filter) ([]stock.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	products := make([]stock.Product, 0, len(r.store.products))
	for _, product := range r.store.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})

	return paginate(products, filter), nil
}

func (r *productRepository) Save(_ context.Context, product *stock.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, existing := range r.store.products {
		if existing.SKU == product.SKU && id != product.ID {
			return shared.ErrAlreadyExists
		}
	}
	r.store.products[product.ID] = *product
	return nil
}

// SaveWithLock rejects the save when the stored version does not immediately
// precede the incoming one, mirroring the database optimistic lock.
func (r *productRepository) SaveWithLock(_ context.Context, product *stock.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.products[product.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != product.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.store.products[product.ID] = *product
	return nil
}

func (r *productRepository) CountActive(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for _, product := range r.store.products {
		if !product.Archived {
			count++
		}
	}
	return count, nil
}

func (r *productRepository) CountLowStock(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for _, product := range r.store.products {
		if !product.Archived && product.IsLowStock() {
			count++
		}
	}
	return count, nil
}

func paginate[T any](items []T, filter shared.Filter) []T {
	if filter.Page <= 0 || filter.PageSize <= 0 {
		return items
	}
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + filter.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

var _ stock.ProductRepository = (*productRepository)(nil)
