package request

import (
	"time"

	"flynext/internal/domain/booking"
)

const dateLayout = "2006-01-02"

type RoomSelectionPayload struct {
	HotelID           string   `json:"hotel_id" binding:"required"`
	HotelName         string   `json:"hotel_name" binding:"required"`
	HotelCity         string   `json:"hotel_city" binding:"required"`
	RoomType          string   `json:"room_type" binding:"required"`
	NightlyPriceCents int64    `json:"nightly_price_cents" binding:"min=1"`
	Currency          string   `json:"currency" binding:"required,len=3"`
	Amenities         []string `json:"amenities"`
	Images            []string `json:"images"`
}

type AddHotelRequest struct {
	Room     RoomSelectionPayload `json:"room" binding:"required"`
	CheckIn  string               `json:"check_in" binding:"required"`
	CheckOut string               `json:"check_out" binding:"required"`
}

func (r AddHotelRequest) ToDomain() (booking.RoomSelection, booking.StayPeriod, error) {
	room := booking.RoomSelection{
		HotelID:           r.Room.HotelID,
		HotelName:         r.Room.HotelName,
		HotelCity:         r.Room.HotelCity,
		RoomType:          r.Room.RoomType,
		NightlyPriceCents: r.Room.NightlyPriceCents,
		Currency:          r.Room.Currency,
		Amenities:         r.Room.Amenities,
		Images:            r.Room.Images,
	}

	checkIn, err := time.Parse(dateLayout, r.CheckIn)
	if err != nil {
		return booking.RoomSelection{}, booking.StayPeriod{}, booking.ErrInvalidDateRange
	}
	checkOut, err := time.Parse(dateLayout, r.CheckOut)
	if err != nil {
		return booking.RoomSelection{}, booking.StayPeriod{}, booking.ErrInvalidDateRange
	}

	stay, err := booking.NewStayPeriod(checkIn, checkOut)
	if err != nil {
		return booking.RoomSelection{}, booking.StayPeriod{}, err
	}
	return room, stay, nil
}

type FlightSegmentPayload struct {
	FlightID    string    `json:"flight_id" binding:"required"`
	Carrier     string    `json:"carrier" binding:"required"`
	Origin      string    `json:"origin" binding:"required"`
	Destination string    `json:"destination" binding:"required"`
	DepartAt    time.Time `json:"depart_at" binding:"required"`
	ArriveAt    time.Time `json:"arrive_at" binding:"required"`
	CostCents   int64     `json:"cost_cents" binding:"min=1"`
	Currency    string    `json:"currency" binding:"required,len=3"`
}

type AddFlightsRequest struct {
	Flights []FlightSegmentPayload `json:"flights" binding:"required,min=1,max=2"`
}

func (r AddFlightsRequest) ToDomain() []booking.FlightSegment {
	segments := make([]booking.FlightSegment, len(r.Flights))
	for i, f := range r.Flights {
		segments[i] = booking.FlightSegment{
			FlightID:    f.FlightID,
			Carrier:     f.Carrier,
			Origin:      f.Origin,
			Destination: f.Destination,
			DepartAt:    f.DepartAt,
			ArriveAt:    f.ArriveAt,
			CostCents:   f.CostCents,
			Currency:    f.Currency,
		}
	}
	return segments
}

// UpdateBookingRequest carries either a hotel selection, a flight
// selection, or both. Each present section replaces that component on the
// active booking.
type UpdateBookingRequest struct {
	Hotel   *AddHotelRequest       `json:"hotel,omitempty"`
	Flights []FlightSegmentPayload `json:"flights,omitempty" binding:"omitempty,min=1,max=2"`
}

func (r UpdateBookingRequest) HasHotel() bool   { return r.Hotel != nil }
func (r UpdateBookingRequest) HasFlights() bool { return len(r.Flights) > 0 }

func (r UpdateBookingRequest) FlightsRequest() AddFlightsRequest {
	return AddFlightsRequest{Flights: r.Flights}
}

type CheckoutRequest struct {
	CardNumber     string `json:"card_number" binding:"required"`
	ExpiryMonth    string `json:"expiry_month" binding:"required"`
	ExpiryYear     string `json:"expiry_year" binding:"required"`
	CVV            string `json:"cvv" binding:"required"`
	PassportNumber string `json:"passport_number" binding:"required"`
}

type CancelBookingRequest struct {
	Scope string `json:"scope" binding:"omitempty,oneof=ALL HOTEL_ONLY FLIGHTS_ONLY"`
}

func (r CancelBookingRequest) ToScope() booking.CancelScope {
	if r.Scope == "" {
		return booking.CancelAll
	}
	return booking.CancelScope(r.Scope)
}
