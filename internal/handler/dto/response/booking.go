package response

import "flynext/internal/usecase/queries"

// ActiveBookingResponse wraps the nullable active booking so clients get a
// stable shape whether or not one exists.
type ActiveBookingResponse struct {
	Booking *queries.BookingView `json:"booking"`
}

type BookingListResponse struct {
	Bookings []*queries.BookingListItem `json:"bookings"`
}

type SuggestionsResponse struct {
	Suggestions []queries.Suggestion `json:"suggestions"`
}

type FlightVerificationResponse struct {
	Flights []queries.FlightVerification `json:"flights"`
}
