package errs

import "errors"

// Domain-specific sentinel errors for CQRS usecase layers
var (
	// Booking errors
	ErrBookingNotFound     = errors.New("booking not found")
	ErrBookingAccessDenied = errors.New("booking access denied")

	// Invoice errors
	ErrInvoiceNotFound = errors.New("invoice not found")
)
