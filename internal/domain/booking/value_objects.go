package booking

import (
	"strings"
	"time"
)

const MaxFlightSegments = 2

// StayPeriod is the hotel check-in/check-out range. Nights are whole days;
// check-in must be strictly before check-out.
type StayPeriod struct {
	checkIn  time.Time
	checkOut time.Time
}

func NewStayPeriod(checkIn, checkOut time.Time) (StayPeriod, error) {
	checkIn = truncateToDay(checkIn)
	checkOut = truncateToDay(checkOut)
	if !checkIn.Before(checkOut) {
		return StayPeriod{}, ErrInvalidDateRange
	}
	return StayPeriod{checkIn: checkIn, checkOut: checkOut}, nil
}

func (p StayPeriod) CheckIn() time.Time  { return p.checkIn }
func (p StayPeriod) CheckOut() time.Time { return p.checkOut }

func (p StayPeriod) Nights() int {
	return int(p.checkOut.Sub(p.checkIn).Hours() / 24)
}

func (p StayPeriod) IsZero() bool {
	return p.checkIn.IsZero() && p.checkOut.IsZero()
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// RoomSelection is a snapshot of the supplier's room offer, frozen at
// selection time. Later repricing of the room never changes the booking
// or any invoice derived from it.
type RoomSelection struct {
	HotelID           string   `json:"hotel_id"`
	HotelName         string   `json:"hotel_name"`
	HotelCity         string   `json:"hotel_city"`
	RoomType          string   `json:"room_type"`
	NightlyPriceCents int64    `json:"nightly_price_cents"`
	Currency          string   `json:"currency"`
	Amenities         []string `json:"amenities,omitempty"`
	Images            []string `json:"images,omitempty"`
}

func (r RoomSelection) Validate() error {
	if strings.TrimSpace(r.HotelID) == "" || strings.TrimSpace(r.RoomType) == "" {
		return ErrInvalidRoomSelection
	}
	if r.NightlyPriceCents <= 0 {
		return ErrNonPositiveCost
	}
	if len(r.Currency) != 3 {
		return ErrInvalidCurrency
	}
	return nil
}

// FlightSegment is an immutable snapshot of one booked flight leg.
type FlightSegment struct {
	FlightID    string    `json:"flight_id"`
	Carrier     string    `json:"carrier"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartAt    time.Time `json:"depart_at"`
	ArriveAt    time.Time `json:"arrive_at"`
	CostCents   int64     `json:"cost_cents"`
	Currency    string    `json:"currency"`
}

func (f FlightSegment) Validate() error {
	if strings.TrimSpace(f.FlightID) == "" {
		return ErrInvalidFlightSegment
	}
	if f.CostCents <= 0 {
		return ErrNonPositiveCost
	}
	if len(f.Currency) != 3 {
		return ErrInvalidCurrency
	}
	return nil
}

// CostLine is one component of the booking's cost breakdown. Amounts keep
// their own currency; they are never converted or summed across currencies.
type CostLine struct {
	Component   string `json:"component"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

const (
	CostComponentHotel   = "hotel"
	CostComponentFlights = "flights"
)
