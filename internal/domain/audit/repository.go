package audit

import "context"

// Repository defines the interface for audit record persistence.
// The store is append-only: there is deliberately no update or delete.
type Repository interface {
	// Append stores a new record and assigns its increasing ID
	Append(ctx context.Context, record *Record) error

	// Recent returns the most recent records, newest first. Only records
	// committed before the call began are visible.
	Recent(ctx context.Context, limit int) ([]Record, error)

	// ExistsForLedgerEntry reports whether an audit record exists for the
	// given ledger entry
	ExistsForLedgerEntry(ctx context.Context, entryID int64) (bool, error)
}
