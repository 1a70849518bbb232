package memory

import (
	"context"

	"github.com/warehouse/backend/internal/domain/audit"
	"github.com/warehouse/backend/internal/domain/shared"
)

type auditRepository struct {
	store *Store
}

func (r *auditRepository) Append(_ context.Context, record *audit.Record) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if record.LedgerEntryID != nil {
		for _, existing := range r.store.records {
			if existing.LedgerEntryID != nil && *existing.LedgerEntryID == *record.LedgerEntryID {
				return shared.ErrAlreadyExists
			}
		}
	}

	r.store.nextRecordID++
	record.ID = r.store.nextRecordID
	r.store.records = append(r.store.records, *record)
	return nil
}

func (r *auditRepository) Recent(_ context.Context, limit int) ([]audit.Record, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	// Records are appended in id order; walk backwards for newest first.
	records := make([]audit.Record, 0, limit)
	for i := len(r.store.records) - 1; i >= 0 && len(records) < limit; i-- {
		records = append(records, r.store.records[i])
	}
	return records, nil
}

func (r *auditRepository) ExistsForLedgerEntry(_ context.Context, entryID int64) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, record := range r.store.records {
		if record.LedgerEntryID != nil && *record.LedgerEntryID == entryID {
			return true, nil
		}
	}
	return false, nil
}

var _ audit.Repository = (*auditRepository)(nil)
