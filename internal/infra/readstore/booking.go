package readstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"flynext/internal/infra"
	"flynext/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingReadStore struct {
	pool *pgxpool.Pool
}

func NewBookingReadStore(pool *pgxpool.Pool) queries.BookingReadStore {
	return &BookingReadStore{pool: pool}
}

const bookingViewColumns = `id, user_id, itinerary, status, room, check_in, check_out,
	hotel_cost_cents, flights, version, created_at, updated_at`

func (s *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+bookingViewColumns+`
		FROM bookings
		WHERE id = $1`, id)
	return scanBookingView(row)
}

func (s *BookingReadStore) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*queries.BookingView, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+bookingViewColumns+`
		FROM bookings
		WHERE user_id = $1 AND status != 'CANCELLED'`, userID)
	return scanBookingView(row)
}

func (s *BookingReadStore) FindByUser(ctx context.Context, userID uuid.UUID) ([]*queries.BookingListItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, itinerary, status,
			hotel_cost_cents + COALESCE((
				SELECT SUM((f->>'cost_cents')::bigint)
				FROM jsonb_array_elements(COALESCE(flights, '[]'::jsonb)) AS f
			), 0) AS total_cents,
			created_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("query bookings by user", err)
	}
	defer rows.Close()

	var items []*queries.BookingListItem
	for rows.Next() {
		var item queries.BookingListItem
		if err := rows.Scan(&item.ID, &item.Itinerary, &item.Status, &item.TotalCents, &item.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("scan booking list item", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("iterate booking list", err)
	}
	return items, nil
}

func scanBookingView(row pgx.Row) (*queries.BookingView, error) {
	var (
		view              queries.BookingView
		roomJSON          []byte
		flightsJSON       []byte
		checkIn, checkOut *time.Time
	)

	err := row.Scan(&view.ID, &view.UserID, &view.Itinerary, &view.Status,
		&roomJSON, &checkIn, &checkOut, &view.HotelCostCents, &flightsJSON,
		&view.Version, &view.CreatedAt, &view.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("scan booking view", err)
	}

	view.CheckIn = checkIn
	view.CheckOut = checkOut
	view.Flights = []queries.FlightSegmentView{}

	if len(roomJSON) > 0 {
		var room queries.RoomView
		if err := json.Unmarshal(roomJSON, &room); err != nil {
			return nil, infra.WrapRepoErr("unmarshal room view", err)
		}
		view.Room = &room
	}
	if len(flightsJSON) > 0 {
		if err := json.Unmarshal(flightsJSON, &view.Flights); err != nil {
			return nil, infra.WrapRepoErr("unmarshal flight views", err)
		}
	}

	var flightCost int64
	for _, f := range view.Flights {
		flightCost += f.CostCents
	}
	view.TotalCents = view.HotelCostCents + flightCost

	// zero-cost components get no currency slot, matching the aggregate
	if view.Room != nil && view.HotelCostCents > 0 {
		view.CurrencyList = append(view.CurrencyList, view.Room.Currency)
	}
	if flightCost > 0 {
		view.CurrencyList = append(view.CurrencyList, view.Flights[0].Currency)
	}

	return &view, nil
}
