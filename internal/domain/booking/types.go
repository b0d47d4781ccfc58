package booking

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

// ItineraryKind is derived from the booking's contents and never set by callers.
// The zero value means the booking shell holds no components yet.
type ItineraryKind string

const (
	ItineraryUnset           ItineraryKind = ""
	ItineraryHotel           ItineraryKind = "HOTEL_RESERVATION"
	ItineraryFlightOneWay    ItineraryKind = "FLIGHT_ONEWAY"
	ItineraryFlightRoundTrip ItineraryKind = "FLIGHT_ROUNDTRIP"
	ItineraryOneWayAndHotel  ItineraryKind = "ONEWAY_AND_HOTEL"
	ItineraryRoundTripHotel  ItineraryKind = "ROUNDTRIP_AND_HOTEL"
)

func (k ItineraryKind) String() string {
	return string(k)
}

func (k ItineraryKind) IsValid() bool {
	switch k {
	case ItineraryHotel, ItineraryFlightOneWay, ItineraryFlightRoundTrip,
		ItineraryOneWayAndHotel, ItineraryRoundTripHotel:
		return true
	default:
		return false
	}
}

// ClassifyItinerary maps the shape of a booking's contents onto its kind.
// The table is closed: any flight count other than 0, 1 or 2 is rejected,
// and a booking with no components at all has no valid itinerary.
func ClassifyItinerary(hasHotel bool, flightCount int) (ItineraryKind, error) {
	if flightCount < 0 || flightCount > MaxFlightSegments {
		return ItineraryUnset, ErrInvalidFlightCount
	}

	switch {
	case hasHotel && flightCount == 0:
		return ItineraryHotel, nil
	case hasHotel && flightCount == 1:
		return ItineraryOneWayAndHotel, nil
	case hasHotel && flightCount == 2:
		return ItineraryRoundTripHotel, nil
	case flightCount == 1:
		return ItineraryFlightOneWay, nil
	case flightCount == 2:
		return ItineraryFlightRoundTrip, nil
	default:
		return ItineraryUnset, ErrEmptyItinerary
	}
}

// CancelScope selects which portion of a booking a cancellation targets.
type CancelScope string

const (
	CancelAll         CancelScope = "ALL"
	CancelHotelOnly   CancelScope = "HOTEL_ONLY"
	CancelFlightsOnly CancelScope = "FLIGHTS_ONLY"
)

func (s CancelScope) IsValid() bool {
	switch s {
	case CancelAll, CancelHotelOnly, CancelFlightsOnly:
		return true
	default:
		return false
	}
}
