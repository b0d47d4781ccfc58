package queries

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"flynext/internal/pkg/errs"

	"github.com/google/uuid"
)

// Candidate shapes returned by the supplier collaborator. The core never
// searches itself; it only ranks and relays what the supplier offers.
type RoomCandidate struct {
	HotelID           string   `json:"hotel_id"`
	HotelName         string   `json:"hotel_name"`
	City              string   `json:"city"`
	RoomType          string   `json:"room_type"`
	NightlyPriceCents int64    `json:"nightly_price_cents"`
	Currency          string   `json:"currency"`
	Rating            float64  `json:"rating"`
	Amenities         []string `json:"amenities,omitempty"`
}

type FlightCandidate struct {
	FlightID    string    `json:"flight_id"`
	Carrier     string    `json:"carrier"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartAt    time.Time `json:"depart_at"`
	ArriveAt    time.Time `json:"arrive_at"`
	CostCents   int64     `json:"cost_cents"`
	Currency    string    `json:"currency"`
}

type Suggestion struct {
	Kind   string           `json:"kind"` // "hotel" or "flight"
	Room   *RoomCandidate   `json:"room,omitempty"`
	Flight *FlightCandidate `json:"flight,omitempty"`
}

type SupplierClient interface {
	SearchRooms(ctx context.Context, city string, checkIn, checkOut time.Time) ([]RoomCandidate, error)
	SearchFlights(ctx context.Context, origin, destination string, date time.Time) ([]FlightCandidate, error)
	VerifyFlight(ctx context.Context, flightID string) (bool, error)
}

type SuggestionCache interface {
	Get(ctx context.Context, key string) ([]Suggestion, bool, error)
	Set(ctx context.Context, key string, suggestions []Suggestion) error
}

type FlightVerification struct {
	FlightID  string `json:"flight_id"`
	Scheduled bool   `json:"scheduled"`
}

type SuggestionQueries interface {
	// SuggestionsForBooking proposes the complementary component: hotels
	// at the flight destination when the booking holds flights, flights
	// toward the hotel's city when it holds a room.
	SuggestionsForBooking(ctx context.Context, userID uuid.UUID) ([]Suggestion, error)
	// VerifyBookingFlights re-checks each booked segment with the supplier.
	VerifyBookingFlights(ctx context.Context, actor uuid.UUID, bookingID uuid.UUID) ([]FlightVerification, error)
}

const maxSuggestions = 5

type suggestionQueriesImpl struct {
	bookings BookingQueries
	supplier SupplierClient
	cache    SuggestionCache
}

func NewSuggestionQueries(bookings BookingQueries, supplier SupplierClient, cache SuggestionCache) SuggestionQueries {
	return &suggestionQueriesImpl{
		bookings: bookings,
		supplier: supplier,
		cache:    cache,
	}
}

func (q *suggestionQueriesImpl) SuggestionsForBooking(ctx context.Context, userID uuid.UUID) ([]Suggestion, error) {
	view, err := q.bookings.GetActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, errs.ErrBookingNotFound
	}

	key := suggestionKey(view)
	if cached, ok, cacheErr := q.cache.Get(ctx, key); cacheErr == nil && ok {
		return cached, nil
	} else if cacheErr != nil {
		slog.Warn("suggestion cache read failed", "key", key, "error", cacheErr.Error())
	}

	suggestions, err := q.fetch(ctx, view)
	if err != nil {
		return nil, err
	}

	if err := q.cache.Set(ctx, key, suggestions); err != nil {
		slog.Warn("suggestion cache write failed", "key", key, "error", err.Error())
	}
	return suggestions, nil
}

func (q *suggestionQueriesImpl) fetch(ctx context.Context, view *BookingView) ([]Suggestion, error) {
	suggestions := []Suggestion{}

	switch {
	case len(view.Flights) > 0 && view.Room == nil:
		outbound := view.Flights[0]
		checkIn := outbound.ArriveAt
		checkOut := checkIn.Add(72 * time.Hour)
		rooms, err := q.supplier.SearchRooms(ctx, outbound.Destination, checkIn, checkOut)
		if err != nil {
			return nil, err
		}
		for i := range rooms {
			if len(suggestions) == maxSuggestions {
				break
			}
			suggestions = append(suggestions, Suggestion{Kind: "hotel", Room: &rooms[i]})
		}

	case view.Room != nil && len(view.Flights) == 0 && view.CheckIn != nil:
		flights, err := q.supplier.SearchFlights(ctx, "", view.Room.HotelCity, *view.CheckIn)
		if err != nil {
			return nil, err
		}
		for i := range flights {
			if len(suggestions) == maxSuggestions {
				break
			}
			suggestions = append(suggestions, Suggestion{Kind: "flight", Flight: &flights[i]})
		}
	}

	return suggestions, nil
}

func (q *suggestionQueriesImpl) VerifyBookingFlights(ctx context.Context, actor uuid.UUID, bookingID uuid.UUID) ([]FlightVerification, error) {
	view, err := q.bookings.GetByID(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}

	results := make([]FlightVerification, 0, len(view.Flights))
	for _, seg := range view.Flights {
		scheduled, err := q.supplier.VerifyFlight(ctx, seg.FlightID)
		if err != nil {
			return nil, err
		}
		results = append(results, FlightVerification{FlightID: seg.FlightID, Scheduled: scheduled})
	}
	return results, nil
}

func suggestionKey(view *BookingView) string {
	return fmt.Sprintf("suggestions:%s:%d", view.ID, view.Version)
}
