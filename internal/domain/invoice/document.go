package invoice

import (
	"time"

	"flynext/internal/domain/booking"

	"github.com/google/uuid"
)

// Document is the structured breakdown handed to the render collaborator.
// The renderer owns turning it into bytes; nothing here is presentation.
type Document struct {
	BookingID     uuid.UUID          `json:"booking_id"`
	UserID        uuid.UUID          `json:"user_id"`
	BookingStatus string             `json:"booking_status"`
	InvoiceStatus string             `json:"invoice_status"`
	IssuedAt      time.Time          `json:"issued_at"`
	Lines         []booking.CostLine `json:"lines"`
	TotalCents    int64              `json:"total_cents"`
	TotalCurrency string             `json:"total_currency"`
	RefundCents   *int64             `json:"refund_cents,omitempty"`
}

// DocumentSource carries the stored booking and invoice state a document is
// flattened from. Read paths fill it from their own row shapes so the
// flattening rules stay in one place.
type DocumentSource struct {
	BookingID       uuid.UUID
	UserID          uuid.UUID
	BookingStatus   string
	InvoiceStatus   string
	IssuedAt        time.Time
	HotelCostCents  int64
	FlightCostCents int64
	CurrencyList    []string
	RefundCents     *int64
}

// NewDocument flattens an issued invoice and its booking into render input.
// The total is the bare cross-component sum in the first listed currency;
// per-line amounts are the authoritative figures. A zero-cost component
// gets no line.
func NewDocument(src DocumentSource) Document {
	lines := []booking.CostLine{}
	currencies := src.CurrencyList

	if src.HotelCostCents > 0 && len(currencies) > 0 {
		lines = append(lines, booking.CostLine{
			Component:   booking.CostComponentHotel,
			AmountCents: src.HotelCostCents,
			Currency:    currencies[0],
		})
	}
	if src.FlightCostCents > 0 && len(currencies) > 0 {
		lines = append(lines, booking.CostLine{
			Component:   booking.CostComponentFlights,
			AmountCents: src.FlightCostCents,
			Currency:    currencies[len(currencies)-1],
		})
	}

	totalCurrency := ""
	if len(currencies) > 0 {
		totalCurrency = currencies[0]
	}

	return Document{
		BookingID:     src.BookingID,
		UserID:        src.UserID,
		BookingStatus: src.BookingStatus,
		InvoiceStatus: src.InvoiceStatus,
		IssuedAt:      src.IssuedAt,
		Lines:         lines,
		TotalCents:    src.HotelCostCents + src.FlightCostCents,
		TotalCurrency: totalCurrency,
		RefundCents:   src.RefundCents,
	}
}
