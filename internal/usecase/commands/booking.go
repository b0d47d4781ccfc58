package commands

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"flynext/internal/domain/booking"
	"flynext/internal/domain/invoice"
	reqdto "flynext/internal/handler/dto/request"
	"flynext/internal/infra"
	"flynext/internal/pkg/clock"
	"flynext/internal/pkg/errs"
	"flynext/internal/usecase/queries"
	"flynext/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound         = errs.New("booking not found")
	ErrBookingAccessDenied     = errs.New("booking access denied")
	ErrConcurrentModification  = errs.New("booking was modified concurrently")
	ErrPaymentDeclined         = errs.New("payment declined")
	ErrPaymentFailed           = errs.New("payment processing failed")
	ErrDatabaseOperationFailed = errs.New("database operation failed")

	// internal retry marker for optimistic-concurrency conflicts
	errVersionConflict = errs.New("booking version conflict")
)

// maxWriteAttempts bounds the optimistic-concurrency retry loop. Each
// retry re-reads the aggregate, so the loser of a race applies its
// change against the winner's state.
const maxWriteAttempts = 3

type BookingCommands interface {
	CreateOrGetActive(ctx context.Context, userID uuid.UUID) (*queries.BookingView, error)
	AddHotel(ctx context.Context, userID uuid.UUID, req reqdto.AddHotelRequest) (*queries.BookingView, error)
	AddFlights(ctx context.Context, userID uuid.UUID, req reqdto.AddFlightsRequest) (*queries.BookingView, error)
	RemoveHotel(ctx context.Context, userID uuid.UUID) (*queries.BookingView, error)
	RemoveFlights(ctx context.Context, userID uuid.UUID) (*queries.BookingView, error)
	Checkout(ctx context.Context, userID uuid.UUID, req reqdto.CheckoutRequest) (*queries.InvoiceView, error)
	CancelBooking(ctx context.Context, userID, bookingID uuid.UUID, scope booking.CancelScope) (*queries.BookingView, error)
}

type bookingCommandsImpl struct {
	uow          shared.UnitOfWork
	bookingReads queries.BookingReadStore
	invoiceReads queries.InvoiceReadStore
	gateway      PaymentGateway
	clock        clock.Clock
}

func NewBookingCommands(
	uow shared.UnitOfWork,
	bookingReads queries.BookingReadStore,
	invoiceReads queries.InvoiceReadStore,
	gateway PaymentGateway,
	clock clock.Clock,
) BookingCommands {
	return &bookingCommandsImpl{
		uow:          uow,
		bookingReads: bookingReads,
		invoiceReads: invoiceReads,
		gateway:      gateway,
		clock:        clock,
	}
}

// CreateOrGetActive returns the user's open booking, creating the empty
// PENDING shell when none exists. The partial unique index on active
// bookings makes a racing second create surface as a duplicate key,
// which resolves to the winner's booking on retry.
func (c *bookingCommandsImpl) CreateOrGetActive(ctx context.Context, userID uuid.UUID) (*queries.BookingView, error) {
	return c.mutateActive(ctx, userID, true, func(_ *booking.Booking) error {
		return nil
	})
}

func (c *bookingCommandsImpl) AddHotel(ctx context.Context, userID uuid.UUID, req reqdto.AddHotelRequest) (*queries.BookingView, error) {
	room, stay, err := req.ToDomain()
	if err != nil {
		return nil, err
	}

	return c.mutateActive(ctx, userID, true, func(b *booking.Booking) error {
		return b.AddOrReplaceHotel(room, stay, c.clock.Now())
	})
}

func (c *bookingCommandsImpl) AddFlights(ctx context.Context, userID uuid.UUID, req reqdto.AddFlightsRequest) (*queries.BookingView, error) {
	segments := req.ToDomain()

	return c.mutateActive(ctx, userID, true, func(b *booking.Booking) error {
		return b.AddFlights(segments, c.clock.Now())
	})
}

func (c *bookingCommandsImpl) RemoveHotel(ctx context.Context, userID uuid.UUID) (*queries.BookingView, error) {
	return c.mutateActive(ctx, userID, false, func(b *booking.Booking) error {
		return b.RemoveHotel(c.clock.Now())
	})
}

func (c *bookingCommandsImpl) RemoveFlights(ctx context.Context, userID uuid.UUID) (*queries.BookingView, error) {
	return c.mutateActive(ctx, userID, false, func(b *booking.Booking) error {
		return b.RemoveFlights(c.clock.Now())
	})
}

// Checkout captures payment for the active booking and issues the
// invoice. Confirming the booking and creating the invoice share one
// transaction; a version conflict after capture is surfaced rather than
// retried so the charge is never applied to a changed cart.
func (c *bookingCommandsImpl) Checkout(ctx context.Context, userID uuid.UUID, req reqdto.CheckoutRequest) (*queries.InvoiceView, error) {
	card := PaymentCard{
		Number:         req.CardNumber,
		ExpiryMonth:    req.ExpiryMonth,
		ExpiryYear:     req.ExpiryYear,
		CVV:            req.CVV,
		PassportNumber: req.PassportNumber,
	}

	var bookingID uuid.UUID
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().FindActiveByUser(ctx, userID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrBookingNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if b.IsEmpty() {
			return booking.ErrEmptyItinerary
		}

		currency := ""
		if list := b.CurrencyList(); len(list) > 0 {
			currency = list[0]
		}

		record, err := c.gateway.Charge(ctx, card, b.TotalCents(), currency)
		if err != nil {
			return errs.Mark(err, ErrPaymentFailed)
		}
		if !record.Captured {
			return ErrPaymentDeclined
		}

		now := c.clock.Now()
		expectedVersion := b.Version()
		if err := b.Confirm(now); err != nil {
			return err
		}
		if err := tx.Bookings().Update(ctx, b, expectedVersion); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return ErrConcurrentModification
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		inv, err := invoice.NewInvoice(b, now)
		if err != nil {
			return err
		}
		if err := tx.Invoices().Create(ctx, inv); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := c.enqueueNotification(ctx, tx, b.ID(), "booking_confirmed"); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		bookingID = b.ID()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.invoiceReads.FindByBookingID(ctx, bookingID)
}

// CancelBooking applies the requested scope and, when the booking was
// already paid, records the removed cost as a refund on its invoice.
// Both writes happen in the same transaction: a cancelled booking with
// a missing refund (or the reverse) cannot be observed.
func (c *bookingCommandsImpl) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID, scope booking.CancelScope) (*queries.BookingView, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			b, err := tx.Bookings().FindByID(ctx, bookingID)
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return ErrBookingNotFound
				}
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			if b.UserID() != userID {
				return ErrBookingAccessDenied
			}

			wasConfirmed := b.Status() == booking.StatusConfirmed
			now := c.clock.Now()
			expectedVersion := b.Version()

			refund, err := b.Cancel(scope, now)
			if err != nil {
				return err
			}

			if err := tx.Bookings().Update(ctx, b, expectedVersion); err != nil {
				if infra.IsKind(err, infra.KindConflict) {
					return errVersionConflict
				}
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}

			if wasConfirmed && refund > 0 {
				if err := c.recordRefund(ctx, tx, bookingID, refund, now); err != nil {
					return err
				}
			}

			return c.enqueueNotification(ctx, tx, bookingID, "booking_cancelled")
		})
		if err == nil {
			return c.bookingReads.FindByID(ctx, bookingID)
		}
		if errors.Is(err, errVersionConflict) {
			continue
		}
		return nil, err
	}

	return nil, ErrConcurrentModification
}

// mutateActive loads the user's open booking, applies fn, and persists
// the result under the version check. With createIfMissing the mutation
// starts from a fresh PENDING shell instead of failing on NOT_FOUND.
func (c *bookingCommandsImpl) mutateActive(
	ctx context.Context,
	userID uuid.UUID,
	createIfMissing bool,
	fn func(b *booking.Booking) error,
) (*queries.BookingView, error) {
	var bookingID uuid.UUID

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			b, err := tx.Bookings().FindActiveByUser(ctx, userID)
			switch {
			case err == nil:
				expectedVersion := b.Version()
				if err := fn(b); err != nil {
					return err
				}
				if err := tx.Bookings().Update(ctx, b, expectedVersion); err != nil {
					if infra.IsKind(err, infra.KindConflict) {
						return errVersionConflict
					}
					return errs.Mark(err, ErrDatabaseOperationFailed)
				}

			case infra.IsKind(err, infra.KindNotFound):
				if !createIfMissing {
					return ErrBookingNotFound
				}
				b = booking.NewBooking(userID, c.clock.Now())
				if err := fn(b); err != nil {
					return err
				}
				if err := tx.Bookings().Create(ctx, b); err != nil {
					if infra.IsKind(err, infra.KindDuplicateKey) {
						// lost the race for the partial unique index;
						// the next attempt finds the winner's booking
						return errVersionConflict
					}
					return errs.Mark(err, ErrDatabaseOperationFailed)
				}

			default:
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}

			bookingID = b.ID()
			return nil
		})
		if err == nil {
			return c.bookingReads.FindByID(ctx, bookingID)
		}
		if errors.Is(err, errVersionConflict) {
			continue
		}
		return nil, err
	}

	return nil, ErrConcurrentModification
}

func (c *bookingCommandsImpl) recordRefund(ctx context.Context, tx shared.Tx, bookingID uuid.UUID, refundCents int64, now time.Time) error {
	inv, err := tx.Invoices().FindByBookingID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			// confirmed without an invoice should not happen; nothing to refund against
			return nil
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := inv.AddRefund(refundCents, now); err != nil {
		return err
	}
	if err := tx.Invoices().Update(ctx, inv); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

func (c *bookingCommandsImpl) enqueueNotification(ctx context.Context, tx shared.Tx, bookingID uuid.UUID, event string) error {
	payload, err := json.Marshal(map[string]string{
		"booking_id": bookingID.String(),
		"event":      event,
	})
	if err != nil {
		return errs.Wrap(err, "marshal notification payload")
	}
	return tx.Notifications().CreateJob(ctx, "email", event, payload, c.clock.Now())
}
