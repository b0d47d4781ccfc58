package shared

import (
	"context"
	"time"

	"flynext/internal/domain/booking"
	"flynext/internal/domain/invoice"
	"flynext/internal/domain/user"
	"flynext/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, exec db.Executor) error) error
}

// Tx exposes repositories bound to the transaction's connection. All
// writes inside one Within call commit or roll back together; that is
// the atomic boundary cancellation-plus-refund relies on.
type Tx interface {
	Bookings() BookingRepository
	Invoices() InvoiceRepository
	Users() UserRepository
	Notifications() NotificationRepository
	DB() db.Executor
}

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	// Update persists the aggregate only when the stored version still
	// matches expectedVersion; a stale version surfaces as a CONFLICT
	// repository error for the caller's retry loop.
	Update(ctx context.Context, b *booking.Booking, expectedVersion int64) error
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*booking.Booking, error)
}

type InvoiceRepository interface {
	Create(ctx context.Context, inv *invoice.Invoice) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*invoice.Invoice, error)
	Update(ctx context.Context, inv *invoice.Invoice) error
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
}
