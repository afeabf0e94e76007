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
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Posting and ledger errors
var (
	ErrEmptyDocument       = NewDomainError("EMPTY_DOCUMENT", "Document has no lines")
	ErrInvalidQuantity     = NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	ErrNegativeStock       = NewDomainError("STK-NEG-001", "Posting would drive stock below zero")
	ErrLedgerImbalance     = NewDomainError("ARAP-ALLOC-422", "Ledger entry must be either debit or credit")
	ErrDuplicateExternalID = NewDomainError("DUPLICATE_EXTERNAL_ID", "External id already used by another document")
	ErrOverAllocation      = NewDomainError("ARAP-ALLOC-422", "Allocation exceeds the entry outstanding amount")
	ErrInvalidFxRate       = NewDomainError("INVALID_FX_RATE", "FX rate must be positive for foreign currency documents")
)
