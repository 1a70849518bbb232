package stock

// MovementDirection represents the direction of a stock movement
type MovementDirection string

const (
	// DirectionInbound represents stock coming into the warehouse (receiving)
	DirectionInbound MovementDirection = "INBOUND"
	// DirectionOutbound represents stock leaving the warehouse (dispatch)
	DirectionOutbound MovementDirection = "OUTBOUND"
)

// String returns the string representation of MovementDirection
func (d MovementDirection) String() string {
	return string(d)
}

// IsValid returns true if the direction is recognized
func (d MovementDirection) IsValid() bool {
	switch d {
	case DirectionInbound, DirectionOutbound:
		return true
	}
	return false
}

// Sign returns +1 for inbound and -1 for outbound movements
func (d MovementDirection) Sign() int64 {
	if d == DirectionOutbound {
		return -1
	}
	return 1
}

// EntryStatus represents the lifecycle state of a ledger entry
type EntryStatus string

const (
	// EntryStatusPending is the initial state of every ledger entry
	EntryStatusPending EntryStatus = "PENDING"
	// EntryStatusApplied means the quantity change has been committed
	EntryStatusApplied EntryStatus = "APPLIED"
	// EntryStatusFailed means the movement was rejected and no quantity changed
	EntryStatusFailed EntryStatus = "FAILED"
)

// String returns the string representation of EntryStatus
func (s EntryStatus) String() string {
	return string(s)
}

// IsTerminal returns true once an entry can no longer change state
func (s EntryStatus) IsTerminal() bool {
	return s == EntryStatusApplied || s == EntryStatusFailed
}
