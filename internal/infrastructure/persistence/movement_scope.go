package persistence

import (
	"context"

	"gorm.io/gorm"

	appstock "github.com/warehouse/backend/internal/application/stock"
	"github.com/warehouse/backend/internal/domain/stock"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// The product quantity update and the ledger entry finalization run in the
// same transaction so they commit or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories scoped to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Products returns the product repository scoped to the current transaction
func (r *gormTransactionalRepositories) Products() stock.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// Ledger returns the ledger entry repository scoped to the current transaction
func (r *gormTransactionalRepositories) Ledger() stock.LedgerEntryRepository {
	return NewGormLedgerEntryRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appstock.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appstock.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
