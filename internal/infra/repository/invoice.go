package repository

import (
	"context"
	"errors"
	"time"

	"flynext/internal/domain/invoice"
	"flynext/internal/infra"
	"flynext/internal/infra/db"
	"flynext/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InvoiceRepository struct {
	exec db.Executor
}

func NewInvoiceRepository(exec db.Executor) shared.InvoiceRepository {
	return &InvoiceRepository{exec: exec}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	_, err := r.exec.Exec(ctx, `
		INSERT INTO invoices (id, booking_id, status, hotel_cost_cents, flight_cost_cents,
			refund_cents, currency_list, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inv.ID(), inv.BookingID(), inv.Status().String(),
		inv.HotelCostCents(), inv.FlightCostCents(),
		inv.RefundCents(), inv.CurrencyList(), inv.CreatedAt(), inv.UpdatedAt(),
	)
	if err != nil {
		return wrapBookingErr("insert invoice", err)
	}
	return nil
}

func (r *InvoiceRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*invoice.Invoice, error) {
	row := r.exec.QueryRow(ctx, `
		SELECT id, booking_id, status, hotel_cost_cents, flight_cost_cents,
			refund_cents, currency_list, created_at, updated_at
		FROM invoices
		WHERE booking_id = $1`, bookingID)

	var (
		id, bID            uuid.UUID
		status             string
		hotelCents         int64
		flightCents        int64
		refundCents        *int64
		currencyList       []string
		createdAt, updated time.Time
	)
	err := row.Scan(&id, &bID, &status, &hotelCents, &flightCents,
		&refundCents, &currencyList, &createdAt, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("invoice not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("scan invoice", err)
	}

	return invoice.ReconstructInvoice(
		id, bID, invoice.Status(status),
		hotelCents, flightCents, refundCents, currencyList,
		createdAt, updated,
	), nil
}

func (r *InvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	tag, err := r.exec.Exec(ctx, `
		UPDATE invoices
		SET status = $1, refund_cents = $2, updated_at = $3
		WHERE id = $4`,
		inv.Status().String(), inv.RefundCents(), inv.UpdatedAt(), inv.ID(),
	)
	if err != nil {
		return infra.WrapRepoErr("update invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("invoice not found", nil, infra.KindNotFound)
	}
	return nil
}
