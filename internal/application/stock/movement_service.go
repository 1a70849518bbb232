package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warehouse/backend/internal/domain/shared"
	"github.com/warehouse/backend/internal/domain/stock"
)

// AuditRecorder writes the audit trail for applied movements. It is called
// after the movement transaction has committed; a failure here surfaces as
// ErrPartialFailure and is repaired later by the reconciliation sweep.
type AuditRecorder interface {
	RecordMovement(ctx context.Context, entry *stock.LedgerEntry) error
}

// IdempotencyStore deduplicates movement requests by caller-supplied key
type IdempotencyStore interface {
	// MarkProcessed returns false when the key was already accepted within ttl
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// MovementMetrics records counters for applied and rejected movements
type MovementMetrics interface {
	MovementApplied(ctx context.Context, direction string, duration time.Duration)
	MovementRejected(ctx context.Context, direction string, code string)
}

// MovementConfig tunes the coordinator's retry and batch behaviour
type MovementConfig struct {
	// MaxRetries bounds how often an optimistic lock conflict is retried
	// before the movement is rejected as BUSY
	MaxRetries int
	// RetryBackoff is the base delay between retries, scaled linearly per attempt
	RetryBackoff time.Duration
	// ApplyTimeout bounds a single movement end to end
	ApplyTimeout time.Duration
	// BatchConcurrency bounds how many batch items are applied in parallel
	BatchConcurrency int
	// IdempotencyTTL is how long accepted idempotency keys are remembered
	IdempotencyTTL time.Duration
}

// DefaultMovementConfig returns the coordinator defaults
func DefaultMovementConfig() MovementConfig {
	return MovementConfig{
		MaxRetries:       5,
		RetryBackoff:     20 * time.Millisecond,
		ApplyTimeout:     5 * time.Second,
		BatchConcurrency: 8,
		IdempotencyTTL:   24 * time.Hour,
	}
}

func (c *MovementConfig) applyDefaults() {
	defaults := DefaultMovementConfig()
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaults.MaxRetries
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaults.RetryBackoff
	}
	if c.ApplyTimeout <= 0 {
		c.ApplyTimeout = defaults.ApplyTimeout
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = defaults.BatchConcurrency
	}
	if c.IdempotencyTTL <= 0 {
		c.IdempotencyTTL = defaults.IdempotencyTTL
	}
}

// MovementService coordinates stock movements: it appends the ledger entry,
// applies the quantity change under optimistic locking and finalizes the entry
// in the same transaction, then emits the audit record. Movements for the same
// product are serialized through version conflicts and bounded retries; there
// is no global lock, so movements for different products proceed in parallel.
type MovementService struct {
	scope       TransactionScope
	products    stock.ProductRepository
	ledger      stock.LedgerEntryRepository
	auditor     AuditRecorder
	idempotency IdempotencyStore
	metrics     MovementMetrics
	validate    *validator.Validate
	logger      *zap.Logger
	cfg         MovementConfig
}

// NewMovementService creates a new movement coordinator
func NewMovementService(
	scope TransactionScope,
	products stock.ProductRepository,
	ledger stock.LedgerEntryRepository,
	auditor AuditRecorder,
	logger *zap.Logger,
	cfg MovementConfig,
) *MovementService {
	cfg.applyDefaults()
	return &MovementService{
		scope:    scope,
		products: products,
		ledger:   ledger,
		auditor:  auditor,
		validate: validator.New(),
		logger:   logger,
		cfg:      cfg,
	}
}

// WithIdempotencyStore enables request deduplication by idempotency key
func (s *MovementService) WithIdempotencyStore(store IdempotencyStore) *MovementService {
	s.idempotency = store
	return s
}

// WithMetrics enables movement counters
func (s *MovementService) WithMetrics(metrics MovementMetrics) *MovementService {
	s.metrics = metrics
	return s
}

// RecordMovement records a single stock movement. On success the returned
// entry is APPLIED and carries the quantities before and after the change.
// Rejected movements are finalized as FAILED with the rejection code and the
// product quantity is left untouched. When the movement applied but the audit
// record could not be written, the applied entry is returned together with an
// error wrapping ErrPartialFailure.
func (s *MovementService) RecordMovement(ctx context.Context, req MovementRequest) (*stock.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, shared.ErrCancelled
	}
	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		fresh, err := s.idempotency.MarkProcessed(ctx, req.IdempotencyKey, s.cfg.IdempotencyTTL)
		if err != nil {
			// Deduplication is best effort: an unreachable store must not
			// block movements.
			s.logger.Warn("idempotency store unavailable, accepting request",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Error(err))
		} else if !fresh {
			return nil, shared.ErrDuplicateRequest
		}
	}

	productID, err := s.resolveProductID(ctx, req)
	if err != nil {
		return nil, err
	}

	entry, err := stock.NewLedgerEntry(productID, stock.MovementDirection(req.Direction), req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidRequest, err)
	}
	entry.WithUnitCost(req.UnitCost).
		WithCounterparty(req.Counterparty).
		WithActor(req.ActorID).
		WithAttachments(req.Attachments)

	if err := s.ledger.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}

	start := time.Now()
	if err := s.applyWithRetry(ctx, entry); err != nil {
		s.finalizeRejected(ctx, entry, err)
		if s.metrics != nil {
			s.metrics.MovementRejected(ctx, entry.Direction.String(), rejectionCode(err))
		}
		return entry, err
	}
	if s.metrics != nil {
		s.metrics.MovementApplied(ctx, entry.Direction.String(), time.Since(start))
	}

	s.logger.Info("stock movement applied",
		zap.Int64("ledger_entry_id", entry.ID),
		zap.String("product_id", entry.ProductID.String()),
		zap.String("direction", entry.Direction.String()),
		zap.Int64("quantity", entry.Quantity),
		zap.Int64("quantity_after", entry.QuantityAfter))

	if err := s.auditor.RecordMovement(ctx, entry); err != nil {
		s.logger.Error("audit record missing for applied movement",
			zap.Int64("ledger_entry_id", entry.ID),
			zap.Error(err))
		return entry, fmt.Errorf("%w: ledger entry %d", shared.ErrPartialFailure, entry.ID)
	}

	return entry, nil
}

// ListLedger returns a page of a product's movement history, oldest first.
// Paging by entry position keeps the sequence restartable across calls.
// Missing pagination falls back to the default page size.
func (s *MovementService) ListLedger(ctx context.Context, productID uuid.UUID, filter shared.Filter) (*LedgerPage, error) {
	if filter.Page <= 0 || filter.PageSize <= 0 {
		defaults := shared.DefaultFilter()
		filter.Page = defaults.Page
		filter.PageSize = defaults.PageSize
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	entries, err := s.ledger.ListByProduct(ctx, productID, filter)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return &LedgerPage{Entries: entries, Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (s *MovementService) validateRequest(req *MovementRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidRequest, err)
	}
	if req.ProductID == uuid.Nil && strings.TrimSpace(req.SKU) == "" {
		return fmt.Errorf("%w: product id or sku is required", shared.ErrInvalidRequest)
	}
	if req.UnitCost.IsNegative() {
		return fmt.Errorf("%w: unit cost cannot be negative", shared.ErrInvalidRequest)
	}
	return nil
}

func (s *MovementService) resolveProductID(ctx context.Context, req MovementRequest) (uuid.UUID, error) {
	if req.ProductID != uuid.Nil {
		return req.ProductID, nil
	}
	product, err := s.products.FindBySKU(ctx, req.SKU)
	if err != nil {
		return uuid.Nil, err
	}
	return product.ID, nil
}

// applyWithRetry applies the movement under optimistic locking. Each attempt
// re-reads the product inside a fresh transaction, applies the delta and
// saves with a version check; a conflict means another movement for the same
// product won the race, so the attempt is retried after a short backoff.
func (s *MovementService) applyWithRetry(ctx context.Context, entry *stock.LedgerEntry) error {
	applyCtx, cancel := context.WithTimeout(ctx, s.cfg.ApplyTimeout)
	defer cancel()

	var applied *stock.Product
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if err := applyCtx.Err(); err != nil {
			if ctx.Err() != nil {
				return shared.ErrCancelled
			}
			return shared.ErrBusy
		}

		err := s.scope.Execute(applyCtx, func(repos TransactionalRepositories) error {
			product, err := repos.Products().FindByID(applyCtx, entry.ProductID)
			if err != nil {
				return err
			}
			before := product.Quantity
			after, err := product.Apply(entry.Direction, entry.Quantity)
			if err != nil {
				return err
			}
			if err := repos.Products().SaveWithLock(applyCtx, product); err != nil {
				return err
			}
			if err := entry.MarkApplied(before, after); err != nil {
				return err
			}
			applied = product
			return repos.Ledger().Finalize(applyCtx, entry)
		})
		if err == nil {
			s.emitDomainEvents(applied)
			return nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}

		backoff := s.cfg.RetryBackoff * time.Duration(attempt+1)
		select {
		case <-time.After(backoff):
		case <-applyCtx.Done():
		}
	}

	s.logger.Warn("movement retries exhausted",
		zap.Int64("ledger_entry_id", entry.ID),
		zap.String("product_id", entry.ProductID.String()),
		zap.Int("max_retries", s.cfg.MaxRetries))
	return shared.ErrBusy
}

// finalizeRejected marks the entry FAILED with the rejection code so no entry
// is left PENDING. Runs detached from the caller's context: a cancelled batch
// must still record why its movements did not apply.
func (s *MovementService) finalizeRejected(ctx context.Context, entry *stock.LedgerEntry, cause error) {
	finalizeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := entry.MarkFailed(rejectionCode(cause)); err != nil {
		s.logger.Error("cannot mark rejected entry as failed",
			zap.Int64("ledger_entry_id", entry.ID),
			zap.String("status", entry.Status.String()),
			zap.Error(err))
		return
	}
	if err := s.ledger.Finalize(finalizeCtx, entry); err != nil {
		s.logger.Error("cannot finalize rejected ledger entry",
			zap.Int64("ledger_entry_id", entry.ID),
			zap.Error(err))
	}
}

func (s *MovementService) emitDomainEvents(product *stock.Product) {
	if product == nil {
		return
	}
	for _, event := range product.GetDomainEvents() {
		if event.EventType() == stock.EventTypeStockBelowThreshold {
			s.logger.Warn("product stock below threshold",
				zap.String("product_id", product.ID.String()),
				zap.String("sku", product.SKU),
				zap.Int64("quantity", product.Quantity),
				zap.Int64("threshold", product.LowStockThreshold))
		}
	}
	product.ClearDomainEvents()
}

// rejectionCode extracts the failure reason recorded on rejected entries
func rejectionCode(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL"
}
