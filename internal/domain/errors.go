package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrBooksAlreadyExist = errors.New("books_already_exist")
	ErrBooksNotFound     = errors.New("books_not_found")
	ErrEmptyMassQuote    = errors.New("empty_mass_quote")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RejectReason classifies why an order request was recorded as an
// OrderRejectedEvent instead of being placed.
type RejectReason string

const (
	RejectUnknownSymbol                  RejectReason = "UNKNOWN_SYMBOL"
	RejectExchangeClosed                 RejectReason = "EXCHANGE_CLOSED"
	RejectIncorrectQuantity              RejectReason = "INCORRECT_QUANTITY"
	RejectUnsupportedOrderCharacteristic RejectReason = "UNSUPPORTED_ORDER_CHARACTERISTIC"
	RejectDuplicateOrder                 RejectReason = "DUPLICATE_ORDER"
	RejectOther                          RejectReason = "OTHER"
)
