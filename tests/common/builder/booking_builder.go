//go:build unit || e2e

package builder

import (
	"time"

	dombooking "flynext/internal/domain/booking"
	reqdto "flynext/internal/handler/dto/request"
	"flynext/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingBuilder struct {
	UserID            uuid.UUID
	HotelID           string
	HotelName         string
	HotelCity         string
	RoomType          string
	NightlyPriceCents int64
	RoomCurrency      string
	CheckIn           time.Time
	CheckOut          time.Time
	Flights           []dombooking.FlightSegment
	Now               time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	checkIn := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	return &BookingBuilder{
		UserID:            uuid.New(),
		HotelID:           "htl_100",
		HotelName:         "Harbour View",
		HotelCity:         "Lisbon",
		RoomType:          "double",
		NightlyPriceCents: 15000,
		RoomCurrency:      "EUR",
		CheckIn:           checkIn,
		CheckOut:          checkIn.AddDate(0, 0, 2),
		Flights: []dombooking.FlightSegment{{
			FlightID:    "fl_200",
			Carrier:     "TP",
			Origin:      "AMS",
			Destination: "LIS",
			DepartAt:    checkIn.Add(8 * time.Hour),
			ArriveAt:    checkIn.Add(11 * time.Hour),
			CostCents:   20000,
			Currency:    "EUR",
		}},
		Now: now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) roomSelection() dombooking.RoomSelection {
	return dombooking.RoomSelection{
		HotelID:           b.HotelID,
		HotelName:         b.HotelName,
		HotelCity:         b.HotelCity,
		RoomType:          b.RoomType,
		NightlyPriceCents: b.NightlyPriceCents,
		Currency:          b.RoomCurrency,
	}
}

// BuildDomain assembles a PENDING booking holding the builder's hotel and
// flight components.
func (b *BookingBuilder) BuildDomain() (*dombooking.Booking, error) {
	booked := dombooking.NewBooking(b.UserID, b.Now)

	stay, err := dombooking.NewStayPeriod(b.CheckIn, b.CheckOut)
	if err != nil {
		return nil, err
	}
	if err := booked.AddOrReplaceHotel(b.roomSelection(), stay, b.Now); err != nil {
		return nil, err
	}
	if len(b.Flights) > 0 {
		if err := booked.AddFlights(b.Flights, b.Now); err != nil {
			return nil, err
		}
	}
	return booked, nil
}

func (b *BookingBuilder) BuildAddHotelRequestDTO() reqdto.AddHotelRequest {
	return reqdto.AddHotelRequest{
		Room: reqdto.RoomSelectionPayload{
			HotelID:           b.HotelID,
			HotelName:         b.HotelName,
			HotelCity:         b.HotelCity,
			RoomType:          b.RoomType,
			NightlyPriceCents: b.NightlyPriceCents,
			Currency:          b.RoomCurrency,
		},
		CheckIn:  b.CheckIn.Format("2006-01-02"),
		CheckOut: b.CheckOut.Format("2006-01-02"),
	}
}

func (b *BookingBuilder) BuildAddFlightsRequestDTO() reqdto.AddFlightsRequest {
	payloads := make([]reqdto.FlightSegmentPayload, len(b.Flights))
	for i, f := range b.Flights {
		payloads[i] = reqdto.FlightSegmentPayload{
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
	return reqdto.AddFlightsRequest{Flights: payloads}
}

func (b *BookingBuilder) BuildCheckoutRequestDTO() reqdto.CheckoutRequest {
	return reqdto.CheckoutRequest{
		CardNumber:     "4242424242424242",
		ExpiryMonth:    "12",
		ExpiryYear:     "30",
		CVV:            "123",
		PassportNumber: "X1234567",
	}
}

func (b *BookingBuilder) BuildViewQuery() *queries.BookingView {
	checkIn := b.CheckIn
	checkOut := b.CheckOut
	flights := make([]queries.FlightSegmentView, len(b.Flights))
	var flightTotal int64
	for i, f := range b.Flights {
		flights[i] = queries.FlightSegmentView{
			FlightID:    f.FlightID,
			Carrier:     f.Carrier,
			Origin:      f.Origin,
			Destination: f.Destination,
			DepartAt:    f.DepartAt,
			ArriveAt:    f.ArriveAt,
			CostCents:   f.CostCents,
			Currency:    f.Currency,
		}
		flightTotal += f.CostCents
	}

	nights := int64(checkOut.Sub(checkIn).Hours() / 24)
	hotelCost := b.NightlyPriceCents * nights

	currencies := []string{b.RoomCurrency}
	if len(b.Flights) > 0 {
		currencies = append(currencies, b.Flights[0].Currency)
	}

	kind, _ := dombooking.ClassifyItinerary(true, len(b.Flights))
	return &queries.BookingView{
		ID:             uuid.New(),
		UserID:         b.UserID,
		Itinerary:      kind.String(),
		Status:         dombooking.StatusPending.String(),
		HotelCostCents: hotelCost,
		CheckIn:        &checkIn,
		CheckOut:       &checkOut,
		Room: &queries.RoomView{
			HotelID:           b.HotelID,
			HotelName:         b.HotelName,
			HotelCity:         b.HotelCity,
			RoomType:          b.RoomType,
			NightlyPriceCents: b.NightlyPriceCents,
			Currency:          b.RoomCurrency,
		},
		Flights:      flights,
		TotalCents:   hotelCost + flightTotal,
		CurrencyList: currencies,
		Version:      1,
		CreatedAt:    b.Now,
		UpdatedAt:    b.Now,
	}
}

func (b *BookingBuilder) BuildInvoiceView(bookingID uuid.UUID) *queries.InvoiceView {
	view := b.BuildViewQuery()
	return &queries.InvoiceView{
		ID:              uuid.New(),
		BookingID:       bookingID,
		Status:          "ISSUED",
		HotelCostCents:  view.HotelCostCents,
		FlightCostCents: view.TotalCents - view.HotelCostCents,
		CurrencyList:    view.CurrencyList,
		CreatedAt:       b.Now,
	}
}
