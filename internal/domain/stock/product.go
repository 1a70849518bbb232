package stock

import (
	"strings"
	"time"

	"github.com/warehouse/backend/internal/domain/shared"
)

// Product represents a product held in the warehouse.
// It is the aggregate root for stock operations: Quantity is mutated only
// through Apply, never assigned directly by callers.
type Product struct {
	shared.BaseAggregateRoot
	SKU               string   `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name              string   `gorm:"type:varchar(255);not null"`
	Category          string   `gorm:"type:varchar(100)"`
	Tags              []string `gorm:"type:text;serializer:json"`
	Quantity          int64    `gorm:"not null;default:0;check:quantity >= 0"`
	LowStockThreshold int64    `gorm:"not null;default:10"`
	Archived          bool     `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with zero stock
func NewProduct(sku, name string) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		Tags:              make([]string, 0),
		Quantity:          0,
		LowStockThreshold: 10,
	}, nil
}

// Apply applies a stock movement to the product and returns the new quantity.
// Inbound movements always succeed for an active product; outbound movements
// fail with ErrInsufficientStock when they would drive the quantity negative,
// leaving the product unchanged.
func (p *Product) Apply(direction MovementDirection, delta int64) (int64, error) {
	if !direction.IsValid() {
		return p.Quantity, shared.ErrInvalidRequest
	}
	if delta <= 0 {
		return p.Quantity, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity must be positive")
	}
	if p.Archived {
		return p.Quantity, shared.ErrProductArchived
	}

	newQuantity := p.Quantity + direction.Sign()*delta
	if newQuantity < 0 {
		return p.Quantity, shared.ErrInsufficientStock
	}

	wasLow := p.IsLowStock()
	p.Quantity = newQuantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	if direction == DirectionOutbound && !wasLow && p.IsLowStock() {
		p.AddDomainEvent(NewStockBelowThresholdEvent(p))
	}

	return p.Quantity, nil
}

// IsLowStock returns true when the quantity is at or below the threshold
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// Archive soft-deletes the product. Ledger history stays valid; further
// movements are rejected with ErrProductArchived.
func (p *Product) Archive() {
	if p.Archived {
		return
	}
	p.Archived = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Unarchive restores an archived product to active use
func (p *Product) Unarchive() {
	if !p.Archived {
		return
	}
	p.Archived = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetLowStockThreshold updates the low-stock alert threshold
func (p *Product) SetLowStockThreshold(threshold int64) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Low stock threshold cannot be negative")
	}
	p.LowStockThreshold = threshold
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// HasTag reports whether the product carries the given tag
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// AddTag adds a tag to the product if not already present
func (p *Product) AddTag(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" || p.HasTag(tag) {
		return
	}
	p.Tags = append(p.Tags, tag)
	p.UpdatedAt = time.Now()
}
