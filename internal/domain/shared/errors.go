package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists     = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidRequest    = NewDomainError("INVALID_REQUEST", "Invalid request")
	ErrProductArchived   = NewDomainError("PRODUCT_ARCHIVED", "Product is archived")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrInvalidTransition = NewDomainError("INVALID_TRANSITION", "Ledger entry is already in a terminal state")
	ErrBusy              = NewDomainError("BUSY", "Stock is contended, retry later")
	ErrPartialFailure    = NewDomainError("PARTIAL_FAILURE", "Movement applied but audit record could not be written")
	ErrCancelled         = NewDomainError("CANCELLED", "Operation cancelled before it was applied")
	ErrDuplicateRequest  = NewDomainError("DUPLICATE_REQUEST", "A request with this idempotency key was already accepted")

	// ErrConcurrencyConflict is internal to the write path: optimistic lock
	// failures are retried by the coordinator and surface as ErrBusy once the
	// retry budget is exhausted.
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
)
