package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/warehouse/backend/internal/domain/audit"
	"github.com/warehouse/backend/internal/domain/shared"
)

// GormAuditRepository implements the audit Repository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append stores a new audit record. The unique index on ledger_entry_id
// guarantees at most one record per applied ledger entry.
func (r *GormAuditRepository) Append(ctx context.Context, record *audit.Record) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Recent returns the most recent records, newest first
func (r *GormAuditRepository) Recent(ctx context.Context, limit int) ([]audit.Record, error) {
	var records []audit.Record
	if err := r.db.WithContext(ctx).
		Model(&audit.Record{}).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ExistsForLedgerEntry reports whether an audit record exists for the entry
func (r *GormAuditRepository) ExistsForLedgerEntry(ctx context.Context, entryID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&audit.Record{}).
		Where("ledger_entry_id = ?", entryID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormAuditRepository implements Repository
var _ audit.Repository = (*GormAuditRepository)(nil)
