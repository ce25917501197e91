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

// Error codes used across the ledger and billing cores. Every rejected
// operation maps to exactly one of these codes.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidReference   = "INVALID_REFERENCE"
	CodeInvalidAmount      = "INVALID_AMOUNT"
	CodeOverPayment        = "OVER_PAYMENT"
	CodeOverAllocation     = "OVER_ALLOCATION"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeImmutableInvoice   = "IMMUTABLE_INVOICE"
	CodeNotRefundable      = "NOT_REFUNDABLE"
	CodeConfigurationError = "CONFIGURATION_ERROR"
	CodeIntegrityViolation = "INTEGRITY_VIOLATION"
	CodeInvalidInput       = "INVALID_INPUT"
)

// Common domain errors
var (
	ErrNotFound           = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidReference   = NewDomainError(CodeInvalidReference, "Referenced entity does not belong to the expected parent")
	ErrInvalidAmount      = NewDomainError(CodeInvalidAmount, "Amount is invalid")
	ErrOverPayment        = NewDomainError(CodeOverPayment, "Payment amount exceeds the remaining balance")
	ErrOverAllocation     = NewDomainError(CodeOverAllocation, "Term percentages exceed 100 percent")
	ErrInvalidTransition  = NewDomainError(CodeInvalidTransition, "Status transition is not allowed")
	ErrImmutableInvoice   = NewDomainError(CodeImmutableInvoice, "Invoice can no longer be modified")
	ErrNotRefundable      = NewDomainError(CodeNotRefundable, "Invoice has no payments to refund")
	ErrConfigurationError = NewDomainError(CodeConfigurationError, "No default ledger account is configured")
	ErrIntegrityViolation = NewDomainError(CodeIntegrityViolation, "Operation would orphan dependent records")
	ErrInvalidInput       = NewDomainError(CodeInvalidInput, "Invalid input provided")
)
