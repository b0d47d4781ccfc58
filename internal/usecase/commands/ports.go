package commands

import "context"

// PaymentCard carries the fields the payment collaborator validates.
// The core never inspects them beyond passing them through.
type PaymentCard struct {
	Number         string
	ExpiryMonth    string
	ExpiryYear     string
	CVV            string
	PassportNumber string
}

// PaymentRecord is the collaborator's verdict. Captured=false with a
// reason is a decline, not an infrastructure failure.
type PaymentRecord struct {
	Captured      bool
	Reference     string
	DeclineReason string
}

type PaymentGateway interface {
	Charge(ctx context.Context, card PaymentCard, amountCents int64, currency string) (*PaymentRecord, error)
}
