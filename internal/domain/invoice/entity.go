package invoice

import (
	"errors"
	"time"

	"flynext/internal/domain/booking"

	"github.com/google/uuid"
)

var (
	ErrBookingPending = errors.New("booking is still pending, no invoice")
	ErrInvalidRefund  = errors.New("refund amount must be positive")
	ErrInvoiceVoid    = errors.New("invoice is void")
)

type Status string

const (
	StatusIssued Status = "ISSUED"
	StatusVoid   Status = "VOID"
)

func (s Status) String() string {
	return string(s)
}

// Invoice is the financial record issued 1:1 against a booking at checkout.
// It is append-only: after issue the only legal mutation is accumulating
// refunds as cancellations land against the confirmed booking.
type Invoice struct {
	id              uuid.UUID
	bookingID       uuid.UUID
	status          Status
	hotelCostCents  int64
	flightCostCents int64
	refundCents     *int64
	currencyList    []string
	createdAt       time.Time
	updatedAt       time.Time
}

// NewInvoice captures the booking's cost breakdown at checkout time.
// A PENDING booking has no invoice.
func NewInvoice(b *booking.Booking, now time.Time) (*Invoice, error) {
	if b.Status() == booking.StatusPending {
		return nil, ErrBookingPending
	}

	return &Invoice{
		id:              uuid.New(),
		bookingID:       b.ID(),
		status:          StatusIssued,
		hotelCostCents:  b.HotelCostCents(),
		flightCostCents: b.FlightCostCents(),
		currencyList:    b.CurrencyList(),
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

func ReconstructInvoice(
	id, bookingID uuid.UUID,
	status Status,
	hotelCostCents, flightCostCents int64,
	refundCents *int64,
	currencyList []string,
	createdAt, updatedAt time.Time,
) *Invoice {
	return &Invoice{
		id:              id,
		bookingID:       bookingID,
		status:          status,
		hotelCostCents:  hotelCostCents,
		flightCostCents: flightCostCents,
		refundCents:     refundCents,
		currencyList:    currencyList,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (i *Invoice) ID() uuid.UUID          { return i.id }
func (i *Invoice) BookingID() uuid.UUID   { return i.bookingID }
func (i *Invoice) Status() Status         { return i.status }
func (i *Invoice) HotelCostCents() int64  { return i.hotelCostCents }
func (i *Invoice) FlightCostCents() int64 { return i.flightCostCents }
func (i *Invoice) RefundCents() *int64    { return i.refundCents }
func (i *Invoice) CurrencyList() []string { return i.currencyList }
func (i *Invoice) CreatedAt() time.Time   { return i.createdAt }
func (i *Invoice) UpdatedAt() time.Time   { return i.updatedAt }

// AddRefund accumulates a refund from a cancellation. Multiple partial
// cancellations add up; they never overwrite each other.
func (i *Invoice) AddRefund(cents int64, now time.Time) error {
	if i.status == StatusVoid {
		return ErrInvoiceVoid
	}
	if cents <= 0 {
		return ErrInvalidRefund
	}

	total := cents
	if i.refundCents != nil {
		total += *i.refundCents
	}
	i.refundCents = &total
	i.updatedAt = now
	return nil
}
