package stock

import (
	"github.com/warehouse/backend/internal/domain/shared"
)

// Event types for the stock domain
const (
	EventTypeStockBelowThreshold = "stock.below_threshold"
)

// StockBelowThresholdEvent is emitted when an outbound movement takes an
// active product to or below its low-stock threshold.
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	SKU       string `json:"sku"`
	Quantity  int64  `json:"quantity"`
	Threshold int64  `json:"threshold"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(p *Product) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, "Product", p.ID),
		SKU:             p.SKU,
		Quantity:        p.Quantity,
		Threshold:       p.LowStockThreshold,
	}
}
