package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyItinerary       = errors.New("booking has no components")
	ErrInvalidDateRange     = errors.New("check-in must be before check-out")
	ErrInvalidFlightCount   = errors.New("flight selection must hold one or two segments")
	ErrNothingToRemove      = errors.New("component is not present on the booking")
	ErrBookingFinalized     = errors.New("booking is no longer mutable")
	ErrAlreadyCancelled     = errors.New("booking is already cancelled")
	ErrNoFlightsToCancel    = errors.New("booking has no flights to cancel")
	ErrInvalidCancelScope   = errors.New("invalid cancellation scope")
	ErrInvalidRoomSelection = errors.New("invalid room selection")
	ErrInvalidFlightSegment = errors.New("invalid flight segment")
	ErrNonPositiveCost      = errors.New("cost must be a positive amount")
	ErrInvalidCurrency      = errors.New("currency must be a three-letter code")
)

// Booking is the aggregate root for a user's trip. It owns the room and
// flight snapshots attached to it and is the single consistency boundary
// for itinerary classification, cost totals and cancellation.
//
// A user has at most one non-cancelled booking at a time; the repository
// enforces that with a partial unique index, the aggregate enforces every
// other invariant on each mutation.
type Booking struct {
	id             uuid.UUID
	userID         uuid.UUID
	itinerary      ItineraryKind
	status         Status
	room           *RoomSelection
	stay           StayPeriod
	hotelCostCents int64
	flights        []FlightSegment
	version        int64
	createdAt      time.Time
	updatedAt      time.Time
}

// NewBooking returns the user's empty PENDING shell. The itinerary stays
// unset until the first component is added.
func NewBooking(userID uuid.UUID, now time.Time) *Booking {
	return &Booking{
		id:        uuid.New(),
		userID:    userID,
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}
}

func ReconstructBooking(
	id, userID uuid.UUID,
	itinerary ItineraryKind,
	status Status,
	room *RoomSelection,
	stay StayPeriod,
	hotelCostCents int64,
	flights []FlightSegment,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:             id,
		userID:         userID,
		itinerary:      itinerary,
		status:         status,
		room:           room,
		stay:           stay,
		hotelCostCents: hotelCostCents,
		flights:        flights,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (b *Booking) ID() uuid.UUID            { return b.id }
func (b *Booking) UserID() uuid.UUID        { return b.userID }
func (b *Booking) Itinerary() ItineraryKind { return b.itinerary }
func (b *Booking) Status() Status           { return b.status }
func (b *Booking) Room() *RoomSelection     { return b.room }
func (b *Booking) Stay() StayPeriod         { return b.stay }
func (b *Booking) HotelCostCents() int64    { return b.hotelCostCents }
func (b *Booking) Flights() []FlightSegment { return b.flights }
func (b *Booking) Version() int64           { return b.version }
func (b *Booking) CreatedAt() time.Time     { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time     { return b.updatedAt }

func (b *Booking) HasHotel() bool   { return b.room != nil }
func (b *Booking) FlightCount() int { return len(b.flights) }
func (b *Booking) IsEmpty() bool    { return b.room == nil && len(b.flights) == 0 }

// AddOrReplaceHotel attaches a room snapshot for the given stay, replacing
// any previous hotel component. Hotel cost is nightly price times nights.
func (b *Booking) AddOrReplaceHotel(room RoomSelection, stay StayPeriod, now time.Time) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if err := room.Validate(); err != nil {
		return err
	}
	if stay.IsZero() {
		return ErrInvalidDateRange
	}

	b.room = &room
	b.stay = stay
	b.hotelCostCents = room.NightlyPriceCents * int64(stay.Nights())
	b.reclassify()
	b.touch(now)
	return nil
}

// AddFlights replaces the booking's flight selection. A booking holds only
// the latest selection, never a running list: one segment for one-way, two
// for round-trip.
func (b *Booking) AddFlights(segments []FlightSegment, now time.Time) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if len(segments) < 1 || len(segments) > MaxFlightSegments {
		return ErrInvalidFlightCount
	}
	for _, seg := range segments {
		if err := seg.Validate(); err != nil {
			return err
		}
	}

	b.flights = append([]FlightSegment(nil), segments...)
	b.reclassify()
	b.touch(now)
	return nil
}

func (b *Booking) RemoveHotel(now time.Time) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if b.room == nil {
		return ErrNothingToRemove
	}

	b.clearHotel()
	b.reclassify()
	b.touch(now)
	return nil
}

func (b *Booking) RemoveFlights(now time.Time) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if len(b.flights) == 0 {
		return ErrNothingToRemove
	}

	b.flights = nil
	b.reclassify()
	b.touch(now)
	return nil
}

// Confirm transitions PENDING -> CONFIRMED once payment is captured.
func (b *Booking) Confirm(now time.Time) error {
	if err := b.ensureMutable(); err != nil {
		return err
	}
	if b.IsEmpty() {
		return ErrEmptyItinerary
	}

	b.status = StatusConfirmed
	b.touch(now)
	return nil
}

// Cancel applies a cancellation scope and returns the cost removed by it,
// which is the amount to refund when the booking was already paid.
//
// A full cancellation is terminal: cost-bearing state is cleared and the
// itinerary keeps its last value for audit display. Partial scopes clear
// one component and reclassify from what remains; removing the last
// component this way leaves the booking open rather than auto-cancelling
// it, so an explicit ALL cancellation stays the only path to CANCELLED.
func (b *Booking) Cancel(scope CancelScope, now time.Time) (int64, error) {
	if b.status == StatusCancelled {
		return 0, ErrAlreadyCancelled
	}

	var removed int64
	switch scope {
	case CancelAll:
		removed = b.TotalCents()
		b.clearHotel()
		b.flights = nil
		b.status = StatusCancelled

	case CancelHotelOnly:
		if b.room == nil {
			return 0, ErrNothingToRemove
		}
		removed = b.hotelCostCents
		b.clearHotel()
		b.reclassify()

	case CancelFlightsOnly:
		if len(b.flights) == 0 {
			return 0, ErrNoFlightsToCancel
		}
		removed = b.FlightCostCents()
		b.flights = nil
		b.reclassify()

	default:
		return 0, ErrInvalidCancelScope
	}

	b.touch(now)
	return removed, nil
}

func (b *Booking) FlightCostCents() int64 {
	var sum int64
	for _, f := range b.flights {
		sum += f.CostCents
	}
	return sum
}

// TotalCents is hotel cost plus the sum of flight segment costs, the only
// total formula the aggregate supports. Components may carry different
// currencies, so the bare sum is display-only; CostBreakdown is the
// financially meaningful view.
func (b *Booking) TotalCents() int64 {
	return b.hotelCostCents + b.FlightCostCents()
}

// CostBreakdown lists one line per cost-bearing component. Validation keeps
// component costs strictly positive, so the zero checks only matter for
// rows reconstructed from storage that predates it.
func (b *Booking) CostBreakdown() []CostLine {
	var lines []CostLine
	if b.room != nil && b.hotelCostCents > 0 {
		lines = append(lines, CostLine{
			Component:   CostComponentHotel,
			AmountCents: b.hotelCostCents,
			Currency:    b.room.Currency,
		})
	}
	if flightCost := b.FlightCostCents(); flightCost > 0 {
		lines = append(lines, CostLine{
			Component:   CostComponentFlights,
			AmountCents: flightCost,
			Currency:    b.flights[0].Currency,
		})
	}
	return lines
}

// CurrencyList yields one currency slot per cost-bearing component in the
// fixed order hotel, then flights. A missing or zero-cost component
// consumes no slot.
func (b *Booking) CurrencyList() []string {
	var list []string
	for _, line := range b.CostBreakdown() {
		list = append(list, line.Currency)
	}
	return list
}

func (b *Booking) ensureMutable() error {
	if b.status != StatusPending {
		return ErrBookingFinalized
	}
	return nil
}

func (b *Booking) clearHotel() {
	b.room = nil
	b.stay = StayPeriod{}
	b.hotelCostCents = 0
}

// reclassify re-derives the itinerary from current contents. When the last
// component was removed the kind reverts to unset, matching the empty shell.
func (b *Booking) reclassify() {
	kind, err := ClassifyItinerary(b.room != nil, len(b.flights))
	if err != nil {
		b.itinerary = ItineraryUnset
		return
	}
	b.itinerary = kind
}

func (b *Booking) touch(now time.Time) {
	b.updatedAt = now
}
