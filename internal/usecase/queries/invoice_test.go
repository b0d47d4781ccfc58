//go:build unit

package queries

import (
	"context"
	"testing"
	"time"

	"flynext/internal/domain/invoice"
	"flynext/internal/infra"
	"flynext/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingReadStore struct {
	mock.Mock
}

func (m *MockBookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BookingView), args.Error(1)
}

func (m *MockBookingReadStore) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*BookingView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BookingView), args.Error(1)
}

func (m *MockBookingReadStore) FindByUser(ctx context.Context, userID uuid.UUID) ([]*BookingListItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*BookingListItem), args.Error(1)
}

type MockInvoiceReadStore struct {
	mock.Mock
}

func (m *MockInvoiceReadStore) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*InvoiceView, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*InvoiceView), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, doc invoice.Document) ([]byte, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func confirmedView(userID uuid.UUID) *BookingView {
	return &BookingView{
		ID:     uuid.New(),
		UserID: userID,
		Status: "CONFIRMED",
	}
}

func issuedInvoiceView(bookingID uuid.UUID) *InvoiceView {
	return &InvoiceView{
		ID:              uuid.New(),
		BookingID:       bookingID,
		Status:          "ISSUED",
		HotelCostCents:  30000,
		FlightCostCents: 20000,
		CurrencyList:    []string{"EUR", "USD"},
		CreatedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestInvoiceQueries_GetByBookingID(t *testing.T) {
	userID := uuid.New()

	t.Run("returns the invoice for a confirmed booking", func(t *testing.T) {
		bookings := new(MockBookingReadStore)
		invoices := new(MockInvoiceReadStore)
		q := NewInvoiceQueries(invoices, bookings, new(MockRenderer))

		view := confirmedView(userID)
		invView := issuedInvoiceView(view.ID)
		bookings.On("FindByID", mock.Anything, view.ID).Return(view, nil).Once()
		invoices.On("FindByBookingID", mock.Anything, view.ID).Return(invView, nil).Once()

		got, err := q.GetByBookingID(context.Background(), userID, view.ID)
		require.NoError(t, err)
		assert.Equal(t, invView.ID, got.ID)
	})

	t.Run("pending booking has no invoice", func(t *testing.T) {
		bookings := new(MockBookingReadStore)
		invoices := new(MockInvoiceReadStore)
		q := NewInvoiceQueries(invoices, bookings, new(MockRenderer))

		view := confirmedView(userID)
		view.Status = "PENDING"
		bookings.On("FindByID", mock.Anything, view.ID).Return(view, nil).Once()

		_, err := q.GetByBookingID(context.Background(), userID, view.ID)
		assert.ErrorIs(t, err, invoice.ErrBookingPending)
		invoices.AssertNotCalled(t, "FindByBookingID", mock.Anything, mock.Anything)
	})

	t.Run("other users cannot read the invoice", func(t *testing.T) {
		bookings := new(MockBookingReadStore)
		q := NewInvoiceQueries(new(MockInvoiceReadStore), bookings, new(MockRenderer))

		view := confirmedView(uuid.New())
		bookings.On("FindByID", mock.Anything, view.ID).Return(view, nil).Once()

		_, err := q.GetByBookingID(context.Background(), userID, view.ID)
		assert.ErrorIs(t, err, errs.ErrBookingAccessDenied)
	})

	t.Run("missing booking maps to not found", func(t *testing.T) {
		bookings := new(MockBookingReadStore)
		q := NewInvoiceQueries(new(MockInvoiceReadStore), bookings, new(MockRenderer))

		id := uuid.New()
		bookings.On("FindByID", mock.Anything, id).
			Return(nil, infra.WrapRepoErr("no row", nil, infra.KindNotFound)).Once()

		_, err := q.GetByBookingID(context.Background(), userID, id)
		assert.ErrorIs(t, err, errs.ErrBookingNotFound)
	})

	t.Run("missing invoice on a confirmed booking maps to invoice not found", func(t *testing.T) {
		bookings := new(MockBookingReadStore)
		invoices := new(MockInvoiceReadStore)
		q := NewInvoiceQueries(invoices, bookings, new(MockRenderer))

		view := confirmedView(userID)
		bookings.On("FindByID", mock.Anything, view.ID).Return(view, nil).Once()
		invoices.On("FindByBookingID", mock.Anything, view.ID).
			Return(nil, infra.WrapRepoErr("no row", nil, infra.KindNotFound)).Once()

		_, err := q.GetByBookingID(context.Background(), userID, view.ID)
		assert.ErrorIs(t, err, errs.ErrInvoiceNotFound)
	})
}

func TestInvoiceQueries_RenderDocument(t *testing.T) {
	userID := uuid.New()

	t.Run("hands a flattened document to the renderer", func(t *testing.T) {
		bookings := new(MockBookingReadStore)
		invoices := new(MockInvoiceReadStore)
		renderer := new(MockRenderer)
		q := NewInvoiceQueries(invoices, bookings, renderer)

		view := confirmedView(userID)
		invView := issuedInvoiceView(view.ID)
		refund := int64(5000)
		invView.RefundCents = &refund

		bookings.On("FindByID", mock.Anything, view.ID).Return(view, nil)
		invoices.On("FindByBookingID", mock.Anything, view.ID).Return(invView, nil)
		renderer.On("Render", mock.Anything, mock.MatchedBy(func(doc invoice.Document) bool {
			return doc.BookingID == view.ID &&
				doc.TotalCents == 50000 &&
				doc.TotalCurrency == "EUR" &&
				len(doc.Lines) == 2 &&
				doc.RefundCents != nil && *doc.RefundCents == 5000
		})).Return([]byte("INVOICE"), nil).Once()

		out, err := q.RenderDocument(context.Background(), userID, view.ID)
		require.NoError(t, err)
		assert.Equal(t, []byte("INVOICE"), out)
		renderer.AssertExpectations(t)
	})

	t.Run("render is refused for a pending booking", func(t *testing.T) {
		bookings := new(MockBookingReadStore)
		renderer := new(MockRenderer)
		q := NewInvoiceQueries(new(MockInvoiceReadStore), bookings, renderer)

		view := confirmedView(userID)
		view.Status = "PENDING"
		bookings.On("FindByID", mock.Anything, view.ID).Return(view, nil)

		_, err := q.RenderDocument(context.Background(), userID, view.ID)
		assert.ErrorIs(t, err, invoice.ErrBookingPending)
		renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
	})
}
