//go:build unit

package commands

import (
	"context"
	"testing"
	"time"

	"flynext/internal/domain/booking"
	"flynext/internal/domain/invoice"
	reqdto "flynext/internal/handler/dto/request"
	"flynext/internal/infra"
	"flynext/internal/infra/db"
	"flynext/internal/pkg/clock"
	"flynext/internal/usecase/queries"
	"flynext/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// ---- unit of work doubles ----

// stubUoW runs every callback against the same stubbed transaction. The
// commands under test only care about the repository calls, not tx wiring.
type stubUoW struct {
	tx shared.Tx
}

func (s *stubUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, s.tx)
}

func (s *stubUoW) WithDB(ctx context.Context, fn func(ctx context.Context, exec db.Executor) error) error {
	return fn(ctx, nil)
}

type stubTx struct {
	bookings      *MockBookingRepository
	invoices      *MockInvoiceRepository
	notifications *MockNotificationRepository
}

func (s *stubTx) Bookings() shared.BookingRepository           { return s.bookings }
func (s *stubTx) Invoices() shared.InvoiceRepository           { return s.invoices }
func (s *stubTx) Users() shared.UserRepository                 { return nil }
func (s *stubTx) Notifications() shared.NotificationRepository { return s.notifications }
func (s *stubTx) DB() db.Executor                              { return nil }

// ---- repository mocks ----

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) Update(ctx context.Context, b *booking.Booking, expectedVersion int64) error {
	args := m.Called(ctx, b, expectedVersion)
	return args.Error(0)
}

func (m *MockBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*booking.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	args := m.Called(ctx, kind, topic, payload, runAt)
	return args.Error(0)
}

// ---- read store and gateway mocks ----

type MockBookingReadStore struct {
	mock.Mock
}

func (m *MockBookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.BookingView), args.Error(1)
}

func (m *MockBookingReadStore) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*queries.BookingView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.BookingView), args.Error(1)
}

func (m *MockBookingReadStore) FindByUser(ctx context.Context, userID uuid.UUID) ([]*queries.BookingListItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*queries.BookingListItem), args.Error(1)
}

type MockInvoiceReadStore struct {
	mock.Mock
}

func (m *MockInvoiceReadStore) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*queries.InvoiceView, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.InvoiceView), args.Error(1)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Charge(ctx context.Context, card PaymentCard, amountCents int64, currency string) (*PaymentRecord, error) {
	args := m.Called(ctx, card, amountCents, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentRecord), args.Error(1)
}

// ---- fixtures ----

type commandFixture struct {
	bookings      *MockBookingRepository
	invoices      *MockInvoiceRepository
	notifications *MockNotificationRepository
	bookingReads  *MockBookingReadStore
	invoiceReads  *MockInvoiceReadStore
	gateway       *MockPaymentGateway
	commands      BookingCommands
}

func newCommandFixture() *commandFixture {
	f := &commandFixture{
		bookings:      new(MockBookingRepository),
		invoices:      new(MockInvoiceRepository),
		notifications: new(MockNotificationRepository),
		bookingReads:  new(MockBookingReadStore),
		invoiceReads:  new(MockInvoiceReadStore),
		gateway:       new(MockPaymentGateway),
	}
	uow := &stubUoW{tx: &stubTx{
		bookings:      f.bookings,
		invoices:      f.invoices,
		notifications: f.notifications,
	}}
	f.commands = NewBookingCommands(uow, f.bookingReads, f.invoiceReads, f.gateway, clock.NewMockClock(testNow))
	return f
}

func notFoundErr() error {
	return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
}

func conflictErr() error {
	return infra.WrapRepoErr("version mismatch", nil, infra.KindConflict)
}

func addHotelRequest() reqdto.AddHotelRequest {
	return reqdto.AddHotelRequest{
		Room: reqdto.RoomSelectionPayload{
			HotelID:           "htl_1",
			HotelName:         "Harbour View",
			HotelCity:         "Lisbon",
			RoomType:          "double",
			NightlyPriceCents: 15000,
			Currency:          "EUR",
		},
		CheckIn:  "2025-07-10",
		CheckOut: "2025-07-12",
	}
}

func pendingBookingWithHotel(t *testing.T, userID uuid.UUID) *booking.Booking {
	t.Helper()
	b := booking.NewBooking(userID, testNow)
	room, stay, err := addHotelRequest().ToDomain()
	require.NoError(t, err)
	require.NoError(t, b.AddOrReplaceHotel(room, stay, testNow))
	return b
}

func confirmedBookingWithHotel(t *testing.T, userID uuid.UUID) *booking.Booking {
	t.Helper()
	b := pendingBookingWithHotel(t, userID)
	require.NoError(t, b.Confirm(testNow))
	return b
}

func checkoutRequest() reqdto.CheckoutRequest {
	return reqdto.CheckoutRequest{
		CardNumber:     "4242424242424242",
		ExpiryMonth:    "12",
		ExpiryYear:     "30",
		CVV:            "123",
		PassportNumber: "X1234567",
	}
}

// ---- tests ----

func TestBookingCommands_AddHotel(t *testing.T) {
	t.Run("creates the shell when the user has no open booking", func(t *testing.T) {
		f := newCommandFixture()
		userID := uuid.New()

		f.bookings.On("FindActiveByUser", mock.Anything, userID).Return(nil, notFoundErr()).Once()
		f.bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *booking.Booking) bool {
			return b.HasHotel() && b.Status() == booking.StatusPending
		})).Return(nil).Once()
		f.bookingReads.On("FindByID", mock.Anything, mock.Anything).
			Return(&queries.BookingView{Itinerary: "HOTEL_RESERVATION"}, nil).Once()

		view, err := f.commands.AddHotel(context.Background(), userID, addHotelRequest())
		require.NoError(t, err)
		assert.Equal(t, "HOTEL_RESERVATION", view.Itinerary)
		f.bookings.AssertExpectations(t)
	})

	t.Run("retries once after a version conflict", func(t *testing.T) {
		f := newCommandFixture()
		userID := uuid.New()

		f.bookings.On("FindActiveByUser", mock.Anything, userID).
			Return(booking.NewBooking(userID, testNow), nil).Once()
		f.bookings.On("Update", mock.Anything, mock.Anything, mock.Anything).
			Return(conflictErr()).Once()
		f.bookings.On("FindActiveByUser", mock.Anything, userID).
			Return(booking.NewBooking(userID, testNow), nil).Once()
		f.bookings.On("Update", mock.Anything, mock.Anything, mock.Anything).
			Return(nil).Once()
		f.bookingReads.On("FindByID", mock.Anything, mock.Anything).
			Return(&queries.BookingView{}, nil).Once()

		_, err := f.commands.AddHotel(context.Background(), userID, addHotelRequest())
		require.NoError(t, err)
		f.bookings.AssertNumberOfCalls(t, "Update", 2)
	})

	t.Run("gives up after repeated conflicts", func(t *testing.T) {
		f := newCommandFixture()
		userID := uuid.New()

		f.bookings.On("FindActiveByUser", mock.Anything, userID).
			Return(booking.NewBooking(userID, testNow), nil).Times(3)
		f.bookings.On("Update", mock.Anything, mock.Anything, mock.Anything).
			Return(conflictErr()).Times(3)

		_, err := f.commands.AddHotel(context.Background(), userID, addHotelRequest())
		assert.ErrorIs(t, err, ErrConcurrentModification)
		f.bookings.AssertNumberOfCalls(t, "Update", 3)
	})

	t.Run("surfaces domain validation without writing", func(t *testing.T) {
		f := newCommandFixture()
		userID := uuid.New()
		req := addHotelRequest()
		req.CheckOut = req.CheckIn

		_, err := f.commands.AddHotel(context.Background(), userID, req)
		assert.ErrorIs(t, err, booking.ErrInvalidDateRange)
		f.bookings.AssertNotCalled(t, "FindActiveByUser", mock.Anything, mock.Anything)
	})
}

func TestBookingCommands_RemoveHotel(t *testing.T) {
	t.Run("no open booking maps to not found", func(t *testing.T) {
		f := newCommandFixture()
		userID := uuid.New()

		f.bookings.On("FindActiveByUser", mock.Anything, userID).Return(nil, notFoundErr()).Once()

		_, err := f.commands.RemoveHotel(context.Background(), userID)
		assert.ErrorIs(t, err, ErrBookingNotFound)
		f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("removing an absent component surfaces the domain error", func(t *testing.T) {
		f := newCommandFixture()
		userID := uuid.New()

		f.bookings.On("FindActiveByUser", mock.Anything, userID).
			Return(booking.NewBooking(userID, testNow), nil).Once()

		_, err := f.commands.RemoveHotel(context.Background(), userID)
		assert.ErrorIs(t, err, booking.ErrNothingToRemove)
		f.bookings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBookingCommands_Checkout(t *testing.T) {
	t.Run("charges the total and issues the invoice", func(t *testing.T) {
		f := newCommandFixture()
		userID := uuid.New()
		b := pendingBookingWithHotel(t, userID)

		f.bookings.On("FindActiveByUser", mock.Anything, userID).Return(b, nil).Once()
		f.gateway.On("Charge", mock.Anything, mock.Anything, int64(30000), "EUR").
			Return(&PaymentRecord{Captured: true, Reference: "ch_1"}, nil).Once()
		f.bookings.On("Update", mock.Anything, b, int64(0)).Return(nil).Once()
		f.invoices.On("Create", mock.Anything, mock.MatchedBy(func(inv *invoice.Invoice) bool {
			return inv.BookingID() == b.ID() && inv.HotelCostCents() == 30000
		})).Return(nil).Once()
		f.notifications.On("CreateJob", mock.Anything, "email", "booking_confirmed", mock.Anything, testNow).
			Return(nil).Once()
		f.invoiceReads.On("FindByBookingID", mock.Anything, b.ID()).
			Return(&queries.InvoiceView{BookingID: b.ID(), Status: "ISSUED"}, nil).Once()

		view, err := f.commands.Checkout(context.Background(), userID, checkoutRequest())
		require.NoError(t, err)
		assert.Equal(t, b.ID(), view.BookingID)
		assert.Equal(t, booking.StatusConfirmed, b.Status())
		f.gateway.AssertExpectations(t)
		f.invoices.AssertExpectations(t)
	})

	t.Run("empty cart is rejected before charging", func(t *testing.T) {
		f := newCommandFixture()
		userID := uuid.New()

		f.bookings.On("FindActiveByUser", mock.Anything, userID).
			Return(booking.NewBooking(userID, testNow), nil).Once()

		_, err := f.commands.Checkout(context.Background(), userID, checkoutRequest())
		assert.ErrorIs(t, err, booking.ErrEmptyItinerary)
		f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("declined payment leaves the booking pending and unbilled", func(t *testing.T) {
		f := newCommandFixture()
		userID := uuid.New()
		b := pendingBookingWithHotel(t, userID)

		f.bookings.On("FindActiveByUser", mock.Anything, userID).Return(b, nil).Once()
		f.gateway.On("Charge", mock.Anything, mock.Anything, int64(30000), "EUR").
			Return(&PaymentRecord{Captured: false, DeclineReason: "card expired"}, nil).Once()

		_, err := f.commands.Checkout(context.Background(), userID, checkoutRequest())
		assert.ErrorIs(t, err, ErrPaymentDeclined)
		assert.Equal(t, booking.StatusPending, b.Status())
		f.bookings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		f.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("gateway failure is marked, not treated as a decline", func(t *testing.T) {
		f := newCommandFixture()
		userID := uuid.New()
		b := pendingBookingWithHotel(t, userID)

		f.bookings.On("FindActiveByUser", mock.Anything, userID).Return(b, nil).Once()
		f.gateway.On("Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, assert.AnError).Once()

		_, err := f.commands.Checkout(context.Background(), userID, checkoutRequest())
		assert.ErrorIs(t, err, ErrPaymentFailed)
	})

	t.Run("conflict after capture is surfaced, never retried", func(t *testing.T) {
		f := newCommandFixture()
		userID := uuid.New()
		b := pendingBookingWithHotel(t, userID)

		f.bookings.On("FindActiveByUser", mock.Anything, userID).Return(b, nil).Once()
		f.gateway.On("Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&PaymentRecord{Captured: true, Reference: "ch_1"}, nil).Once()
		f.bookings.On("Update", mock.Anything, mock.Anything, mock.Anything).
			Return(conflictErr()).Once()

		_, err := f.commands.Checkout(context.Background(), userID, checkoutRequest())
		assert.ErrorIs(t, err, ErrConcurrentModification)
		f.gateway.AssertNumberOfCalls(t, "Charge", 1)
	})
}

func TestBookingCommands_CancelBooking(t *testing.T) {
	t.Run("cancelling a paid booking records the refund", func(t *testing.T) {
		f := newCommandFixture()
		userID := uuid.New()
		b := confirmedBookingWithHotel(t, userID)
		inv, err := invoice.NewInvoice(b, testNow)
		require.NoError(t, err)

		f.bookings.On("FindByID", mock.Anything, b.ID()).Return(b, nil).Once()
		f.bookings.On("Update", mock.Anything, b, int64(0)).Return(nil).Once()
		f.invoices.On("FindByBookingID", mock.Anything, b.ID()).Return(inv, nil).Once()
		f.invoices.On("Update", mock.Anything, inv).Return(nil).Once()
		f.notifications.On("CreateJob", mock.Anything, "email", "booking_cancelled", mock.Anything, testNow).
			Return(nil).Once()
		f.bookingReads.On("FindByID", mock.Anything, b.ID()).
			Return(&queries.BookingView{ID: b.ID(), Status: "CANCELLED"}, nil).Once()

		view, err := f.commands.CancelBooking(context.Background(), userID, b.ID(), booking.CancelAll)
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", view.Status)
		require.NotNil(t, inv.RefundCents())
		assert.Equal(t, int64(30000), *inv.RefundCents())
	})

	t.Run("cancelling an unpaid booking records no refund", func(t *testing.T) {
		f := newCommandFixture()
		userID := uuid.New()
		b := pendingBookingWithHotel(t, userID)

		f.bookings.On("FindByID", mock.Anything, b.ID()).Return(b, nil).Once()
		f.bookings.On("Update", mock.Anything, b, int64(0)).Return(nil).Once()
		f.notifications.On("CreateJob", mock.Anything, "email", "booking_cancelled", mock.Anything, testNow).
			Return(nil).Once()
		f.bookingReads.On("FindByID", mock.Anything, b.ID()).
			Return(&queries.BookingView{ID: b.ID(), Status: "CANCELLED"}, nil).Once()

		_, err := f.commands.CancelBooking(context.Background(), userID, b.ID(), booking.CancelAll)
		require.NoError(t, err)
		f.invoices.AssertNotCalled(t, "FindByBookingID", mock.Anything, mock.Anything)
	})

	t.Run("someone else's booking is denied", func(t *testing.T) {
		f := newCommandFixture()
		owner := uuid.New()
		b := confirmedBookingWithHotel(t, owner)

		f.bookings.On("FindByID", mock.Anything, b.ID()).Return(b, nil).Once()

		_, err := f.commands.CancelBooking(context.Background(), uuid.New(), b.ID(), booking.CancelAll)
		assert.ErrorIs(t, err, ErrBookingAccessDenied)
		f.bookings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("double cancellation surfaces the domain error", func(t *testing.T) {
		f := newCommandFixture()
		userID := uuid.New()
		b := confirmedBookingWithHotel(t, userID)
		_, err := b.Cancel(booking.CancelAll, testNow)
		require.NoError(t, err)

		f.bookings.On("FindByID", mock.Anything, b.ID()).Return(b, nil).Once()

		_, err = f.commands.CancelBooking(context.Background(), userID, b.ID(), booking.CancelAll)
		assert.ErrorIs(t, err, booking.ErrAlreadyCancelled)
	})
}
