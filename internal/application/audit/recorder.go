package audit

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/warehouse/backend/internal/domain/audit"
	"github.com/warehouse/backend/internal/domain/stock"
)

const defaultRecentLimit = 20

// Recorder writes audit records for applied stock movements and serves the
// recent-activity feed. Every APPLIED ledger entry gets exactly one record;
// the unique index on the ledger entry id enforces this across the recorder
// and the reconciliation sweep.
type Recorder struct {
	records  audit.Repository
	products stock.ProductRepository
	logger   *zap.Logger
}

// NewRecorder creates a new audit recorder
func NewRecorder(records audit.Repository, products stock.ProductRepository, logger *zap.Logger) *Recorder {
	return &Recorder{
		records:  records,
		products: products,
		logger:   logger,
	}
}

// RecordMovement appends the audit record for an applied ledger entry
func (r *Recorder) RecordMovement(ctx context.Context, entry *stock.LedgerEntry) error {
	record, err := movementRecord(entry, r.subjectFor(ctx, entry))
	if err != nil {
		return err
	}
	if err := r.records.Append(ctx, record); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// Recent returns the newest audit records. A non-positive limit falls back to
// the default feed size.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]audit.Record, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	records, err := r.records.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent audit records: %w", err)
	}
	return records, nil
}

// subjectFor resolves a human-readable subject for the audited product.
// Falls back to the raw product id when the lookup fails, the audit record
// matters more than its label.
func (r *Recorder) subjectFor(ctx context.Context, entry *stock.LedgerEntry) string {
	product, err := r.products.FindByID(ctx, entry.ProductID)
	if err != nil {
		r.logger.Warn("cannot resolve product for audit subject",
			zap.String("product_id", entry.ProductID.String()),
			zap.Error(err))
		return fmt.Sprintf("product %s", entry.ProductID)
	}
	return fmt.Sprintf("product %s", product.SKU)
}

// movementRecord builds the audit record for an applied entry. The diff lists
// only the field the movement changed.
func movementRecord(entry *stock.LedgerEntry, subject string) (*audit.Record, error) {
	if !entry.IsApplied() {
		return nil, fmt.Errorf("ledger entry %d is %s, only applied entries are audited", entry.ID, entry.Status)
	}

	verb := audit.VerbInbound
	if entry.Direction == stock.DirectionOutbound {
		verb = audit.VerbOutbound
	}

	record, err := audit.NewRecord(entry.CreatedBy, verb, subject, audit.Diff{
		"quantity": {
			Old: strconv.FormatInt(entry.QuantityBefore, 10),
			New: strconv.FormatInt(entry.QuantityAfter, 10),
		},
	})
	if err != nil {
		return nil, err
	}
	return record.WithLedgerEntry(entry.ID), nil
}
