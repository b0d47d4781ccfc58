package queries

import (
	"context"

	"flynext/internal/infra"
	"flynext/internal/pkg/errs"

	"github.com/google/uuid"
)

type BookingQueries interface {
	// GetActiveForUser returns nil without error when the user has no
	// open booking; the handler renders that as an empty object.
	GetActiveForUser(ctx context.Context, userID uuid.UUID) (*BookingView, error)
	GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*BookingView, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*BookingListItem, error)
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*BookingView, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*BookingListItem, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
}

func NewBookingQueries(store BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{store: store}
}

func (q *bookingQueriesImpl) GetActiveForUser(ctx context.Context, userID uuid.UUID) (*BookingView, error) {
	view, err := q.store.FindActiveByUser(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return view, nil
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*BookingView, error) {
	view, err := q.store.FindByID(ctx, id)
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

func (q *bookingQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*BookingListItem, error) {
	return q.store.FindByUser(ctx, userID)
}
