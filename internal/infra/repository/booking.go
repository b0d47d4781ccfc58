package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"flynext/internal/domain/booking"
	"flynext/internal/infra"
	"flynext/internal/infra/db"
	"flynext/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
)

type BookingRepository struct {
	exec db.Executor
}

func NewBookingRepository(exec db.Executor) shared.BookingRepository {
	return &BookingRepository{exec: exec}
}

const bookingColumns = `id, user_id, itinerary, status, room, check_in, check_out,
	hotel_cost_cents, flights, version, created_at, updated_at`

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	roomJSON, flightsJSON, err := marshalSnapshots(b)
	if err != nil {
		return infra.WrapRepoErr("marshal booking snapshots", err)
	}

	var checkIn, checkOut *time.Time
	if !b.Stay().IsZero() {
		ci, co := b.Stay().CheckIn(), b.Stay().CheckOut()
		checkIn, checkOut = &ci, &co
	}

	_, err = r.exec.Exec(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID(), b.UserID(), string(b.Itinerary()), string(b.Status()),
		roomJSON, checkIn, checkOut, b.HotelCostCents(), flightsJSON,
		b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
	if err != nil {
		return wrapBookingErr("insert booking", err)
	}
	return nil
}

// Update persists the aggregate and bumps version, guarded by the version
// the caller read. Zero rows affected means another writer won the race.
func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking, expectedVersion int64) error {
	roomJSON, flightsJSON, err := marshalSnapshots(b)
	if err != nil {
		return infra.WrapRepoErr("marshal booking snapshots", err)
	}

	var checkIn, checkOut *time.Time
	if !b.Stay().IsZero() {
		ci, co := b.Stay().CheckIn(), b.Stay().CheckOut()
		checkIn, checkOut = &ci, &co
	}

	tag, err := r.exec.Exec(ctx, `
		UPDATE bookings
		SET itinerary = $1, status = $2, room = $3, check_in = $4, check_out = $5,
			hotel_cost_cents = $6, flights = $7, version = version + 1, updated_at = $8
		WHERE id = $9 AND version = $10`,
		string(b.Itinerary()), string(b.Status()), roomJSON, checkIn, checkOut,
		b.HotelCostCents(), flightsJSON, b.UpdatedAt(), b.ID(), expectedVersion,
	)
	if err != nil {
		return wrapBookingErr("update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking version mismatch", nil, infra.KindConflict)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	row := r.exec.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1`, id)
	return scanBooking(row)
}

func (r *BookingRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*booking.Booking, error) {
	row := r.exec.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE user_id = $1 AND status != 'CANCELLED'`, userID)
	return scanBooking(row)
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		id, userID         uuid.UUID
		itinerary, status  string
		roomJSON           []byte
		checkIn, checkOut  *time.Time
		hotelCostCents     int64
		flightsJSON        []byte
		version            int64
		createdAt, updated time.Time
	)

	err := row.Scan(&id, &userID, &itinerary, &status, &roomJSON, &checkIn, &checkOut,
		&hotelCostCents, &flightsJSON, &version, &createdAt, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("scan booking", err)
	}

	var room *booking.RoomSelection
	if len(roomJSON) > 0 {
		room = &booking.RoomSelection{}
		if err := json.Unmarshal(roomJSON, room); err != nil {
			return nil, infra.WrapRepoErr("unmarshal room snapshot", err)
		}
	}

	var stay booking.StayPeriod
	if checkIn != nil && checkOut != nil {
		stay, err = booking.NewStayPeriod(*checkIn, *checkOut)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid stay period in storage", err)
		}
	}

	var flights []booking.FlightSegment
	if len(flightsJSON) > 0 {
		if err := json.Unmarshal(flightsJSON, &flights); err != nil {
			return nil, infra.WrapRepoErr("unmarshal flight snapshots", err)
		}
	}

	return booking.ReconstructBooking(
		id, userID,
		booking.ItineraryKind(itinerary),
		booking.Status(status),
		room, stay, hotelCostCents, flights,
		version, createdAt, updated,
	), nil
}

// marshalSnapshots renders the JSONB columns. Absent components store SQL
// NULL rather than JSON null so partial indexes and IS NULL checks work.
func marshalSnapshots(b *booking.Booking) ([]byte, []byte, error) {
	var roomJSON []byte
	if b.Room() != nil {
		var err error
		roomJSON, err = json.Marshal(b.Room())
		if err != nil {
			return nil, nil, err
		}
	}

	var flightsJSON []byte
	if len(b.Flights()) > 0 {
		var err error
		flightsJSON, err = json.Marshal(b.Flights())
		if err != nil {
			return nil, nil, err
		}
	}

	return roomJSON, flightsJSON, nil
}

func wrapBookingErr(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrCodeUniqueViolation:
			return infra.WrapRepoErr(msg, err, infra.KindDuplicateKey)
		case pgErrCodeForeignKeyViolation:
			return infra.WrapRepoErr(msg, err, infra.KindForeignKeyViolated)
		}
	}
	return infra.WrapRepoErr(msg, err)
}
