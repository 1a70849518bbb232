package stock

import (
	"context"

	"github.com/warehouse/backend/internal/domain/stock"
)

// TransactionalRepositories exposes the repositories bound to the transaction
// in which a movement is applied. The product update and the ledger entry
// finalization must commit or roll back together.
type TransactionalRepositories interface {
	Products() stock.ProductRepository
	Ledger() stock.LedgerEntryRepository
}

// TransactionScope manages transaction boundaries for applying movements
type TransactionScope interface {
	// Execute runs the function within a transaction. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// NoOpTransactionScope provides a pass-through scope for callers that manage
// their own transaction or for read paths that only need a consistent snapshot
// from the underlying repositories.
type NoOpTransactionScope struct {
	products stock.ProductRepository
	ledger   stock.LedgerEntryRepository
}

// NewNoOpTransactionScope creates a scope that executes without a transaction
func NewNoOpTransactionScope(products stock.ProductRepository, ledger stock.LedgerEntryRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{products: products, ledger: ledger}
}

// Execute runs the function directly against the configured repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(noOpRepositories{products: s.products, ledger: s.ledger})
}

type noOpRepositories struct {
	products stock.ProductRepository
	ledger   stock.LedgerEntryRepository
}

func (r noOpRepositories) Products() stock.ProductRepository   { return r.products }
func (r noOpRepositories) Ledger() stock.LedgerEntryRepository { return r.ledger }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
