package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warehouse/backend/internal/domain/shared"
)

// LedgerEntry is the immutable record of a single stock movement.
// Entries are append-only: the store assigns a strictly increasing ID and the
// only mutation allowed afterwards is the PENDING -> APPLIED|FAILED
// finalization. Applied entries are the source of truth for audit: the sum of
// signed applied quantities per product always equals the stored quantity.
type LedgerEntry struct {
	ID             int64             `gorm:"primaryKey;autoIncrement"`
	ProductID      uuid.UUID         `gorm:"type:uuid;not null;index:idx_ledger_product_time,priority:1"`
	Direction      MovementDirection `gorm:"type:varchar(10);not null;index"`
	Quantity       int64             `gorm:"not null"` // always positive, direction carries the sign
	UnitCost       decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Counterparty   string            `gorm:"type:varchar(255)"` // supplier or customer reference, optional
	Attachments    []string          `gorm:"type:text;serializer:json"`
	Status         EntryStatus       `gorm:"type:varchar(10);not null;index"`
	FailureReason  string            `gorm:"type:varchar(100)"`
	QuantityBefore int64             `gorm:"not null;default:0"`
	QuantityAfter  int64             `gorm:"not null;default:0"`
	CreatedBy      string            `gorm:"type:varchar(100)"` // opaque actor id supplied by the caller
	CreatedAt      time.Time         `gorm:"type:timestamptz;not null;index:idx_ledger_product_time,priority:2"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewLedgerEntry creates a new pending ledger entry
func NewLedgerEntry(productID uuid.UUID, direction MovementDirection, quantity int64) (*LedgerEntry, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Invalid movement direction")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}

	return &LedgerEntry{
		ProductID:   productID,
		Direction:   direction,
		Quantity:    quantity,
		UnitCost:    decimal.Zero,
		Attachments: make([]string, 0),
		Status:      EntryStatusPending,
		CreatedAt:   time.Now(),
	}, nil
}

// WithUnitCost sets the per-unit cost recorded with the movement
func (e *LedgerEntry) WithUnitCost(cost decimal.Decimal) *LedgerEntry {
	e.UnitCost = cost
	return e
}

// WithCounterparty sets the supplier/customer reference
func (e *LedgerEntry) WithCounterparty(counterparty string) *LedgerEntry {
	e.Counterparty = counterparty
	return e
}

// WithActor sets the actor id that initiated the movement
func (e *LedgerEntry) WithActor(actorID string) *LedgerEntry {
	e.CreatedBy = actorID
	return e
}

// WithAttachments sets the opaque attachment references
func (e *LedgerEntry) WithAttachments(refs []string) *LedgerEntry {
	if len(refs) > 0 {
		e.Attachments = append(e.Attachments[:0], refs...)
	}
	return e
}

// MarkApplied finalizes the entry as applied, recording the quantity the
// product held before and after the movement. Calling it again on an applied
// entry is a no-op; calling it on a failed entry returns ErrInvalidTransition.
func (e *LedgerEntry) MarkApplied(quantityBefore, quantityAfter int64) error {
	switch e.Status {
	case EntryStatusApplied:
		return nil
	case EntryStatusFailed:
		return shared.ErrInvalidTransition
	}
	e.Status = EntryStatusApplied
	e.QuantityBefore = quantityBefore
	e.QuantityAfter = quantityAfter
	return nil
}

// MarkFailed finalizes the entry as failed with the rejection code.
// Idempotent for already-failed entries; returns ErrInvalidTransition when the
// entry was already applied.
func (e *LedgerEntry) MarkFailed(reason string) error {
	switch e.Status {
	case EntryStatusFailed:
		return nil
	case EntryStatusApplied:
		return shared.ErrInvalidTransition
	}
	e.Status = EntryStatusFailed
	e.FailureReason = reason
	return nil
}

// SignedQuantity returns the quantity with sign based on direction
func (e *LedgerEntry) SignedQuantity() int64 {
	return e.Direction.Sign() * e.Quantity
}

// TotalCost returns quantity * unit cost
func (e *LedgerEntry) TotalCost() decimal.Decimal {
	return e.UnitCost.Mul(decimal.NewFromInt(e.Quantity))
}

// IsApplied returns true if the entry reached the APPLIED state
func (e *LedgerEntry) IsApplied() bool {
	return e.Status == EntryStatusApplied
}
