package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type RoomView struct {
	HotelID           string   `json:"hotel_id"`
	HotelName         string   `json:"hotel_name"`
	HotelCity         string   `json:"hotel_city"`
	RoomType          string   `json:"room_type"`
	NightlyPriceCents int64    `json:"nightly_price_cents"`
	Currency          string   `json:"currency"`
	Amenities         []string `json:"amenities,omitempty"`
	Images            []string `json:"images,omitempty"`
}

type FlightSegmentView struct {
	FlightID    string    `json:"flight_id"`
	Carrier     string    `json:"carrier"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartAt    time.Time `json:"depart_at"`
	ArriveAt    time.Time `json:"arrive_at"`
	CostCents   int64     `json:"cost_cents"`
	Currency    string    `json:"currency"`
}

type BookingView struct {
	ID             uuid.UUID           `json:"id"`
	UserID         uuid.UUID           `json:"user_id"`
	Itinerary      string              `json:"itinerary,omitempty"`
	Status         string              `json:"status"`
	HotelCostCents int64               `json:"hotel_cost_cents"`
	CheckIn        *time.Time          `json:"check_in,omitempty"`
	CheckOut       *time.Time          `json:"check_out,omitempty"`
	Room           *RoomView           `json:"room,omitempty"`
	Flights        []FlightSegmentView `json:"flights"`
	TotalCents     int64               `json:"total_cents"`
	CurrencyList   []string            `json:"currency_list,omitempty"`
	Version        int64               `json:"-"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type BookingListItem struct {
	ID         uuid.UUID `json:"id"`
	Itinerary  string    `json:"itinerary,omitempty"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

type InvoiceView struct {
	ID              uuid.UUID `json:"id"`
	BookingID       uuid.UUID `json:"booking_id"`
	Status          string    `json:"status"`
	HotelCostCents  int64     `json:"hotel_cost_cents"`
	FlightCostCents int64     `json:"flight_cost_cents"`
	RefundCents     *int64    `json:"refund_cents,omitempty"`
	CurrencyList    []string  `json:"currency_list"`
	CreatedAt       time.Time `json:"created_at"`
}

type AuthorizedUserView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
}
