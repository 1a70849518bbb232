package audit

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/warehouse/backend/internal/domain/audit"
	"github.com/warehouse/backend/internal/domain/shared"
	"github.com/warehouse/backend/internal/domain/stock"
)

const defaultSweepBatchSize = 100

// Reconciler repairs partial failures: movements that applied but whose audit
// record was never written. It runs periodically and backfills the missing
// records from the ledger, which holds everything the record needs.
type Reconciler struct {
	ledger    stock.LedgerEntryRepository
	records   audit.Repository
	products  stock.ProductRepository
	logger    *zap.Logger
	batchSize int
}

// NewReconciler creates a new audit reconciler
func NewReconciler(ledger stock.LedgerEntryRepository, records audit.Repository, products stock.ProductRepository, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		ledger:    ledger,
		records:   records,
		products:  products,
		logger:    logger,
		batchSize: defaultSweepBatchSize,
	}
}

// Sweep backfills audit records for applied entries that have none, oldest
// first, and returns how many records it wrote. A single bad entry does not
// stop the sweep.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	entries, err := r.ledger.ListAppliedWithoutAudit(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list entries without audit: %w", err)
	}

	written := 0
	for i := range entries {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		entry := &entries[i]
		if err := r.backfill(ctx, entry); err != nil {
			// The movement service may have retried the audit write
			// concurrently; the unique index makes that a non-event.
			if errors.Is(err, shared.ErrAlreadyExists) {
				continue
			}
			r.logger.Error("cannot backfill audit record",
				zap.Int64("ledger_entry_id", entry.ID),
				zap.Error(err))
			continue
		}
		written++
	}

	if written > 0 {
		r.logger.Info("audit reconciliation swept", zap.Int("backfilled", written))
	}
	return written, nil
}

func (r *Reconciler) backfill(ctx context.Context, entry *stock.LedgerEntry) error {
	subject := fmt.Sprintf("product %s", entry.ProductID)
	if product, err := r.products.FindByID(ctx, entry.ProductID); err == nil {
		subject = fmt.Sprintf("product %s", product.SKU)
	}

	record, err := audit.NewRecord(entry.CreatedBy, audit.VerbReconcile, subject, audit.Diff{
		"quantity": {
			Old: strconv.FormatInt(entry.QuantityBefore, 10),
			New: strconv.FormatInt(entry.QuantityAfter, 10),
		},
	})
	if err != nil {
		return err
	}
	return r.records.Append(ctx, record.WithLedgerEntry(entry.ID))
}
