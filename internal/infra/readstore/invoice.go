package readstore

import (
	"context"
	"errors"

	"flynext/internal/infra"
	"flynext/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InvoiceReadStore struct {
	pool *pgxpool.Pool
}

func NewInvoiceReadStore(pool *pgxpool.Pool) queries.InvoiceReadStore {
	return &InvoiceReadStore{pool: pool}
}

func (s *InvoiceReadStore) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*queries.InvoiceView, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, booking_id, status, hotel_cost_cents, flight_cost_cents,
			refund_cents, currency_list, created_at
		FROM invoices
		WHERE booking_id = $1`, bookingID)

	var view queries.InvoiceView
	err := row.Scan(&view.ID, &view.BookingID, &view.Status,
		&view.HotelCostCents, &view.FlightCostCents,
		&view.RefundCents, &view.CurrencyList, &view.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("invoice not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("scan invoice view", err)
	}
	if view.CurrencyList == nil {
		view.CurrencyList = []string{}
	}
	return &view, nil
}
