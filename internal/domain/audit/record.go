package audit

import (
	"strings"
	"time"

	"github.com/warehouse/backend/internal/domain/shared"
)

// Verbs recorded by the stock movement coordinator
const (
	VerbInbound   = "inbound"
	VerbOutbound  = "outbound"
	VerbReconcile = "reconcile"
)

// Change holds the before/after values of a single field
type Change struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Diff maps field names to their before/after values. The coordinator lists
// only fields it intentionally changed; no reflection over models.
type Diff map[string]Change

// Record is an append-only audit trail entry. Records are never updated or
// deleted; dashboards consume them via Recent.
type Record struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	ActorID       string    `gorm:"type:varchar(100);index"`
	Verb          string    `gorm:"type:varchar(50);not null"`
	Subject       string    `gorm:"type:varchar(255);not null"` // human-readable description of the object acted on
	LedgerEntryID *int64    `gorm:"uniqueIndex"`                // set for movement records, one audit record per applied entry
	Changes       Diff      `gorm:"type:text;serializer:json"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "audit_records"
}

// NewRecord creates a new audit record
func NewRecord(actorID, verb, subject string, changes Diff) (*Record, error) {
	if strings.TrimSpace(verb) == "" {
		return nil, shared.NewDomainError("INVALID_VERB", "Audit verb cannot be empty")
	}
	if strings.TrimSpace(subject) == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Audit subject cannot be empty")
	}
	if changes == nil {
		changes = make(Diff)
	}

	return &Record{
		ActorID:   actorID,
		Verb:      verb,
		Subject:   subject,
		Changes:   changes,
		CreatedAt: time.Now(),
	}, nil
}

// WithLedgerEntry links the record to the ledger entry it describes
func (r *Record) WithLedgerEntry(entryID int64) *Record {
	r.LedgerEntryID = &entryID
	return r
}
