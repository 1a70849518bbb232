package persistence

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	appstock "github.com/warehouse/backend/internal/application/stock"
)

// GormReadScope runs read-only work in a REPEATABLE READ transaction so every
// query inside the closure observes the same snapshot. At READ COMMITTED each
// statement would get its own snapshot and a movement committing mid-closure
// could make the figures disagree with each other.
//
// sqlite transactions are serializable already and its driver rejects
// explicit isolation levels, so the options are only set for postgres.
type GormReadScope struct {
	db   *gorm.DB
	opts []*sql.TxOptions
}

// NewGormReadScope creates a snapshot-consistent read scope
func NewGormReadScope(db *gorm.DB) *GormReadScope {
	scope := &GormReadScope{db: db}
	if db.Dialector.Name() == "postgres" {
		scope.opts = append(scope.opts, &sql.TxOptions{
			Isolation: sql.LevelRepeatableRead,
			ReadOnly:  true,
		})
	}
	return scope
}

// Execute runs the given function within one read transaction
func (s *GormReadScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	}, s.opts...)
}

// Ensure GormReadScope implements TransactionScope
var _ appstock.TransactionScope = (*GormReadScope)(nil)
