package queries

import (
	"context"

	"flynext/internal/domain/booking"
	"flynext/internal/domain/invoice"
	"flynext/internal/infra"
	"flynext/internal/pkg/errs"

	"github.com/google/uuid"
)

type InvoiceQueries interface {
	GetByBookingID(ctx context.Context, actor uuid.UUID, bookingID uuid.UUID) (*InvoiceView, error)
	// RenderDocument hands the structured invoice to the render
	// collaborator and returns the produced bytes untouched.
	RenderDocument(ctx context.Context, actor uuid.UUID, bookingID uuid.UUID) ([]byte, error)
}

type InvoiceReadStore interface {
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*InvoiceView, error)
}

// Renderer is the external collaborator that turns a structured invoice
// into a byte stream. Layout and format are entirely its concern.
type Renderer interface {
	Render(ctx context.Context, doc invoice.Document) ([]byte, error)
}

type invoiceQueriesImpl struct {
	invoices InvoiceReadStore
	bookings BookingReadStore
	renderer Renderer
}

func NewInvoiceQueries(invoices InvoiceReadStore, bookings BookingReadStore, renderer Renderer) InvoiceQueries {
	return &invoiceQueriesImpl{
		invoices: invoices,
		bookings: bookings,
		renderer: renderer,
	}
}

func (q *invoiceQueriesImpl) GetByBookingID(ctx context.Context, actor uuid.UUID, bookingID uuid.UUID) (*InvoiceView, error) {
	bookingView, err := q.authorizedBooking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if bookingView.Status == booking.StatusPending.String() {
		return nil, invoice.ErrBookingPending
	}

	view, err := q.invoices.FindByBookingID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrInvoiceNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *invoiceQueriesImpl) RenderDocument(ctx context.Context, actor uuid.UUID, bookingID uuid.UUID) ([]byte, error) {
	bookingView, err := q.authorizedBooking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	invoiceView, err := q.GetByBookingID(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}

	return q.renderer.Render(ctx, documentFromViews(bookingView, invoiceView))
}

func (q *invoiceQueriesImpl) authorizedBooking(ctx context.Context, actor uuid.UUID, bookingID uuid.UUID) (*BookingView, error) {
	view, err := q.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, err
	}
	if view.UserID != actor {
		return nil, errs.ErrBookingAccessDenied
	}
	return view, nil
}

func documentFromViews(b *BookingView, inv *InvoiceView) invoice.Document {
	var refund *int64
	if inv.RefundCents != nil {
		v := *inv.RefundCents
		refund = &v
	}

	return invoice.NewDocument(invoice.DocumentSource{
		BookingID:       b.ID,
		UserID:          b.UserID,
		BookingStatus:   b.Status,
		InvoiceStatus:   inv.Status,
		IssuedAt:        inv.CreatedAt,
		HotelCostCents:  inv.HotelCostCents,
		FlightCostCents: inv.FlightCostCents,
		CurrencyList:    inv.CurrencyList,
		RefundCents:     refund,
	})
}
