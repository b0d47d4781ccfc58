package api

import (
	"context"
	"errors"
	"net/http"

	"flynext/internal/domain/booking"
	reqdto "flynext/internal/handler/dto/request"
	resdto "flynext/internal/handler/dto/response"
	"flynext/internal/handler/middleware"
	"flynext/internal/pkg/errs"
	"flynext/internal/usecase/commands"
	"flynext/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingCommands   commands.BookingCommands
	bookingQueries    queries.BookingQueries
	suggestionQueries queries.SuggestionQueries
}

func NewBookingHandler(
	bookingCommands commands.BookingCommands,
	bookingQueries queries.BookingQueries,
	suggestionQueries queries.SuggestionQueries,
) *BookingHandler {
	return &BookingHandler{
		bookingCommands:   bookingCommands,
		bookingQueries:    bookingQueries,
		suggestionQueries: suggestionQueries,
	}
}

// @Summary Get active booking
// @Description Get the user's open booking cart, null when none exists
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.ActiveBookingResponse
// @Failure 401 {object} map[string]string
// @Router /bookings [get]
func (h *BookingHandler) GetActive(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	view, err := h.bookingQueries.GetActiveForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, resdto.ActiveBookingResponse{Booking: view})
}

// @Summary Create or get active booking
// @Description Create the user's booking cart, or return the existing open one
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} queries.BookingView
// @Failure 401 {object} map[string]string
// @Router /bookings [post]
func (h *BookingHandler) CreateOrGetActive(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	view, err := h.bookingCommands.CreateOrGetActive(c.Request.Context(), userID)
	if err != nil {
		h.renderBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Update active booking
// @Description Add or replace the hotel and/or flight selection on the active booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.UpdateBookingRequest true "Components to set"
// @Success 200 {object} queries.BookingView
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /bookings [patch]
func (h *BookingHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req reqdto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if !req.HasHotel() && !req.HasFlights() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	var (
		view *queries.BookingView
		err  error
	)
	if req.HasHotel() {
		view, err = h.bookingCommands.AddHotel(c.Request.Context(), userID, *req.Hotel)
		if err != nil {
			h.renderBookingError(c, err)
			return
		}
	}
	if req.HasFlights() {
		view, err = h.bookingCommands.AddFlights(c.Request.Context(), userID, req.FlightsRequest())
		if err != nil {
			h.renderBookingError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Remove hotel from booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} queries.BookingView
// @Failure 404 {object} map[string]string
// @Router /bookings/hotel [delete]
func (h *BookingHandler) RemoveHotel(c *gin.Context) {
	h.removeComponent(c, h.bookingCommands.RemoveHotel)
}

// @Summary Remove flights from booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} queries.BookingView
// @Failure 404 {object} map[string]string
// @Router /bookings/flights [delete]
func (h *BookingHandler) RemoveFlights(c *gin.Context) {
	h.removeComponent(c, h.bookingCommands.RemoveFlights)
}

// @Summary Suggestions for the active booking
// @Description Complementary candidates: hotels at the flight destination, or flights toward the booked hotel's city
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.SuggestionsResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/suggestions [get]
func (h *BookingHandler) Suggestions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	suggestions, err := h.suggestionQueries.SuggestionsForBooking(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, errs.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No active booking"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Supplier lookup failed"})
		return
	}

	c.JSON(http.StatusOK, resdto.SuggestionsResponse{Suggestions: suggestions})
}

// @Summary Checkout the active booking
// @Description Capture payment, confirm the booking and issue its invoice
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CheckoutRequest true "Payment details"
// @Success 201 {object} queries.InvoiceView
// @Failure 402 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /checkout [post]
func (h *BookingHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req reqdto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	view, err := h.bookingCommands.Checkout(c.Request.Context(), userID, req)
	if err != nil {
		h.renderBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// @Summary List booking records
// @Description All of the user's bookings, newest first
// @Tags records
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.BookingListResponse
// @Router /records [get]
func (h *BookingHandler) ListRecords(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	items, err := h.bookingQueries.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if items == nil {
		items = []*queries.BookingListItem{}
	}

	c.JSON(http.StatusOK, resdto.BookingListResponse{Bookings: items})
}

// @Summary Get booking record
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} queries.BookingView
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /records/{id} [get]
func (h *BookingHandler) GetRecord(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	view, err := h.bookingQueries.GetByID(c.Request.Context(), userID, bookingID)
	if err != nil {
		h.renderBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Cancel booking record
// @Description Cancel the whole booking or a single component; paid amounts are refunded on the invoice
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.CancelBookingRequest false "Cancellation scope, defaults to ALL"
// @Success 200 {object} queries.BookingView
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /records/{id} [patch]
func (h *BookingHandler) CancelRecord(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req reqdto.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
	}

	view, err := h.bookingCommands.CancelBooking(c.Request.Context(), userID, bookingID, req.ToScope())
	if err != nil {
		h.renderBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Verify booked flights
// @Description Re-check each booked segment's schedule with the supplier
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.FlightVerificationResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /records/{id}/verify [get]
func (h *BookingHandler) VerifyRecord(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	flights, err := h.suggestionQueries.VerifyBookingFlights(c.Request.Context(), userID, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, errs.ErrBookingAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your booking"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Supplier lookup failed"})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FlightVerificationResponse{Flights: flights})
}

func (h *BookingHandler) removeComponent(c *gin.Context, remove func(ctx context.Context, userID uuid.UUID) (*queries.BookingView, error)) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	view, err := remove(c.Request.Context(), userID)
	if err != nil {
		h.renderBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *BookingHandler) renderBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrBookingNotFound), errors.Is(err, errs.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, commands.ErrBookingAccessDenied), errors.Is(err, errs.ErrBookingAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your booking"})
	case errors.Is(err, commands.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": "Booking was modified concurrently, retry"})
	case errors.Is(err, commands.ErrPaymentDeclined):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment was declined"})
	case errors.Is(err, commands.ErrPaymentFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment processing failed"})
	case errors.Is(err, booking.ErrEmptyItinerary):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Booking has no components"})
	case errors.Is(err, booking.ErrBookingFinalized):
		c.JSON(http.StatusConflict, gin.H{"error": "Booking is no longer mutable"})
	case errors.Is(err, booking.ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, gin.H{"error": "Booking is already cancelled"})
	case errors.Is(err, booking.ErrNothingToRemove):
		c.JSON(http.StatusNotFound, gin.H{"error": "Component is not on the booking"})
	case errors.Is(err, booking.ErrNoFlightsToCancel):
		c.JSON(http.StatusConflict, gin.H{"error": "Booking has no flights to cancel"})
	case errors.Is(err, booking.ErrInvalidDateRange),
		errors.Is(err, booking.ErrInvalidFlightCount),
		errors.Is(err, booking.ErrInvalidCancelScope),
		errors.Is(err, booking.ErrInvalidRoomSelection),
		errors.Is(err, booking.ErrInvalidFlightSegment),
		errors.Is(err, booking.ErrNonPositiveCost),
		errors.Is(err, booking.ErrInvalidCurrency):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
