package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warehouse/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by its unique SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindAll finds products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// SaveWithLock saves with optimistic locking: the update only succeeds if
	// the stored version is exactly product.Version-1, otherwise it fails
	// with ErrConcurrencyConflict.
	SaveWithLock(ctx context.Context, product *Product) error

	// CountActive counts non-archived products
	CountActive(ctx context.Context) (int64, error)

	// CountLowStock counts active products at or below their low-stock threshold
	CountLowStock(ctx context.Context) (int64, error)
}

// LedgerEntryRepository defines the interface for the append-only movement
// ledger. Entries are never deleted; the only update allowed after Append is
// the PENDING -> APPLIED|FAILED finalization.
type LedgerEntryRepository interface {
	// Append stores a new pending entry and assigns its strictly increasing ID
	Append(ctx context.Context, entry *LedgerEntry) error

	// FindByID finds an entry by its ID
	FindByID(ctx context.Context, id int64) (*LedgerEntry, error)

	// ListByProduct lists entries for a product ordered by creation time
	// ascending. Pagination via the filter makes the sequence restartable.
	ListByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]LedgerEntry, error)

	// Finalize persists the status transition carried by the entry
	// (status, failure reason, before/after quantities).
	Finalize(ctx context.Context, entry *LedgerEntry) error

	// CountByDirectionAndDateRange counts applied entries for a direction
	// within [start, end).
	CountByDirectionAndDateRange(ctx context.Context, direction MovementDirection, start, end time.Time) (int64, error)

	// SumValueByDirectionAndDateRange sums quantity*unit_cost of applied
	// entries for a direction within [start, end).
	SumValueByDirectionAndDateRange(ctx context.Context, direction MovementDirection, start, end time.Time) (decimal.Decimal, error)

	// ListAppliedWithoutAudit returns applied entries that have no matching
	// audit record yet, oldest first. Used by the reconciliation sweep.
	ListAppliedWithoutAudit(ctx context.Context, limit int) ([]LedgerEntry, error)
}
