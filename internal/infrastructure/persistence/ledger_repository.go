package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/warehouse/backend/internal/domain/shared"
	"github.com/warehouse/backend/internal/domain/stock"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM.
// The ledger is append-only: nothing here updates an entry except Finalize,
// and nothing deletes.
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Append stores a new pending entry. The database assigns the strictly
// increasing ID.
func (r *GormLedgerEntryRepository) Append(ctx context.Context, entry *stock.LedgerEntry) error {
	entry.Status = stock.EntryStatusPending
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByID finds an entry by its ID
func (r *GormLedgerEntryRepository) FindByID(ctx context.Context, id int64) (*stock.LedgerEntry, error) {
	var entry stock.LedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListByProduct lists entries for a product ordered by creation time ascending
func (r *GormLedgerEntryRepository) ListByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]stock.LedgerEntry, error) {
	var entries []stock.LedgerEntry
	query := r.db.WithContext(ctx).
		Model(&stock.LedgerEntry{}).
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC")

	for key, value := range filter.Filters {
		switch key {
		case "direction":
			query = query.Where("direction = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Finalize persists the PENDING -> APPLIED|FAILED transition carried by the
// entry. Only the finalization columns are touched; the appended fields stay
// immutable. A terminal row in the store refuses a conflicting transition.
func (r *GormLedgerEntryRepository) Finalize(ctx context.Context, entry *stock.LedgerEntry) error {
	if !entry.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATUS", "Only terminal statuses can be finalized")
	}

	result := r.db.WithContext(ctx).
		Model(&stock.LedgerEntry{}).
		Where("id = ? AND (status = ? OR status = ?)", entry.ID, stock.EntryStatusPending, entry.Status).
		Updates(map[string]interface{}{
			"status":          entry.Status,
			"failure_reason":  entry.FailureReason,
			"quantity_before": entry.QuantityBefore,
			"quantity_after":  entry.QuantityAfter,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInvalidTransition
	}
	return nil
}

// CountByDirectionAndDateRange counts applied entries for a direction within [start, end)
func (r *GormLedgerEntryRepository) CountByDirectionAndDateRange(ctx context.Context, direction stock.MovementDirection, start, end time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.LedgerEntry{}).
		Where("direction = ? AND status = ? AND created_at >= ? AND created_at < ?",
			direction, stock.EntryStatusApplied, start, end).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumValueByDirectionAndDateRange sums quantity*unit_cost of applied entries
// for a direction within [start, end)
func (r *GormLedgerEntryRepository) SumValueByDirectionAndDateRange(ctx context.Context, direction stock.MovementDirection, start, end time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&stock.LedgerEntry{}).
		Select("COALESCE(SUM(quantity * unit_cost), 0) as total").
		Where("direction = ? AND status = ? AND created_at >= ? AND created_at < ?",
			direction, stock.EntryStatusApplied, start, end).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// ListAppliedWithoutAudit returns applied entries with no audit record yet,
// oldest first
func (r *GormLedgerEntryRepository) ListAppliedWithoutAudit(ctx context.Context, limit int) ([]stock.LedgerEntry, error) {
	var entries []stock.LedgerEntry
	if err := r.db.WithContext(ctx).
		Model(&stock.LedgerEntry{}).
		Joins("LEFT JOIN audit_records ON audit_records.ledger_entry_id = ledger_entries.id").
		Where("ledger_entries.status = ? AND audit_records.id IS NULL", stock.EntryStatusApplied).
		Order("ledger_entries.id ASC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Ensure GormLedgerEntryRepository implements LedgerEntryRepository
var _ stock.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
