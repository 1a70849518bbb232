// Package memory provides in-memory implementations of the stock and audit
// repositories. They back unit tests and the zero-dependency demo mode; the
// production path is the GORM persistence layer.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	appstock "github.com/warehouse/backend/internal/application/stock"
	"github.com/warehouse/backend/internal/domain/audit"
	"github.com/warehouse/backend/internal/domain/stock"
)

// Store holds all in-memory state behind a single lock
type Store struct {
	mu sync.RWMutex

	products map[uuid.UUID]stock.Product

	entries     []stock.LedgerEntry
	nextEntryID int64

	records      []audit.Record
	nextRecordID int64

	// txMu serializes Execute calls. The in-memory scope has no rollback, so
	// transactions must not interleave.
	txMu sync.Mutex
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		products: make(map[uuid.UUID]stock.Product),
	}
}

// Products returns the product repository view of the store
func (s *Store) Products() stock.ProductRepository {
	return &productRepository{store: s}
}

// Ledger returns the ledger entry repository view of the store
func (s *Store) Ledger() stock.LedgerEntryRepository {
	return &ledgerRepository{store: s}
}

// Audit returns the audit repository view of the store
func (s *Store) Audit() audit.Repository {
	return &auditRepository{store: s}
}

// Scope returns a transaction scope over the store. Unlike the database
// scope it serializes all transactions globally, which is acceptable for its
// purpose; writes before a failing step are not rolled back.
func (s *Store) Scope() appstock.TransactionScope {
	return &transactionScope{store: s}
}

type transactionScope struct {
	store *Store
}

func (t *transactionScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()
	return fn(scopedRepositories{store: t.store})
}

type scopedRepositories struct {
	store *Store
}

func (r scopedRepositories) Products() stock.ProductRepository {
	return r.store.Products()
}

func (r scopedRepositories) Ledger() stock.LedgerEntryRepository {
	return r.store.Ledger()
}

var _ appstock.TransactionScope = (*transactionScope)(nil)
var _ appstock.TransactionalRepositories = (scopedRepositories{})
