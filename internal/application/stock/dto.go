package stock

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warehouse/backend/internal/domain/stock"
)

// MovementRequest carries the input for recording a single stock movement.
// The product may be addressed by ID or by SKU; when both are set the ID wins.
type MovementRequest struct {
	ProductID      uuid.UUID       `json:"product_id"`
	SKU            string          `json:"sku"`
	Direction      string          `json:"direction" validate:"required,oneof=INBOUND OUTBOUND"`
	Quantity       int64           `json:"quantity" validate:"required,gt=0"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	Counterparty   string          `json:"counterparty" validate:"max=255"`
	ActorID        string          `json:"actor_id" validate:"max=100"`
	Attachments    []string        `json:"attachments"`
	IdempotencyKey string          `json:"idempotency_key" validate:"max=128"`
}

// MovementResult pairs the outcome of one batch item with its ledger entry.
// Entry is set whenever an entry was appended, including rejected movements
// that were finalized as FAILED. Partial failures carry both Entry and Err.
type MovementResult struct {
	Entry *stock.LedgerEntry `json:"entry,omitempty"`
	Err   error              `json:"-"`
}

// LedgerPage is a restartable slice of a product's movement history
type LedgerPage struct {
	Entries  []stock.LedgerEntry `json:"entries"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}
