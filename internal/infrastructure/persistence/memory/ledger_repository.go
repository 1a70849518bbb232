package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warehouse/backend/internal/domain/shared"
	"github.com/warehouse/backend/internal/domain/stock"
)

type ledgerRepository struct {
	store *Store
}

func (r *ledgerRepository) Append(_ context.Context, entry *stock.LedgerEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextEntryID++
	entry.ID = r.store.nextEntryID
	entry.Status = stock.EntryStatusPending
	r.store.entries = append(r.store.entries, *entry)
	return nil
}

func (r *ledgerRepository) FindByID(_ context.Context, id int64) (*stock.LedgerEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for i := range r.store.entries {
		if r.store.entries[i].ID == id {
			entry := r.store.entries[i]
			return &entry, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *ledgerRepository) ListByProduct(_ context.Context, productID uuid.UUID, filter shared.Filter) ([]stock.LedgerEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var entries []stock.LedgerEntry
	for _, entry := range r.store.entries {
		if entry.ProductID == productID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return paginate(entries, filter), nil
}

func (r *ledgerRepository) Finalize(_ context.Context, entry *stock.LedgerEntry) error {
	if !entry.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATUS", "Only terminal statuses can be finalized")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range r.store.entries {
		if r.store.entries[i].ID != entry.ID {
			continue
		}
		stored := &r.store.entries[i]
		if stored.Status.IsTerminal() && stored.Status != entry.Status {
			return shared.ErrInvalidTransition
		}
		stored.Status = entry.Status
		stored.FailureReason = entry.FailureReason
		stored.QuantityBefore = entry.QuantityBefore
		stored.QuantityAfter = entry.QuantityAfter
		return nil
	}
	return shared.ErrNotFound
}

func (r *ledgerRepository) CountByDirectionAndDateRange(_ context.Context, direction stock.MovementDirection, start, end time.Time) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for _, entry := range r.store.entries {
		if entry.Direction == direction && entry.IsApplied() && inRange(entry.CreatedAt, start, end) {
			count++
		}
	}
	return count, nil
}

func (r *ledgerRepository) SumValueByDirectionAndDateRange(_ context.Context, direction stock.MovementDirection, start, end time.Time) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	total := decimal.Zero
	for _, entry := range r.store.entries {
		if entry.Direction == direction && entry.IsApplied() && inRange(entry.CreatedAt, start, end) {
			total = total.Add(entry.TotalCost())
		}
	}
	return total, nil
}

func (r *ledgerRepository) ListAppliedWithoutAudit(_ context.Context, limit int) ([]stock.LedgerEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	audited := make(map[int64]bool, len(r.store.records))
	for _, record := range r.store.records {
		if record.LedgerEntryID != nil {
			audited[*record.LedgerEntryID] = true
		}
	}

	var entries []stock.LedgerEntry
	for _, entry := range r.store.entries {
		if len(entries) >= limit {
			break
		}
		if entry.IsApplied() && !audited[entry.ID] {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

var _ stock.LedgerEntryRepository = (*ledgerRepository)(nil)
