//go:build unit

package api_test

import (
	"context"
	"net/http"
	"testing"

	"flynext/internal/domain/booking"
	"flynext/internal/handler/api"
	reqdto "flynext/internal/handler/dto/request"
	"flynext/internal/pkg/errs"
	"flynext/internal/usecase/commands"
	"flynext/internal/usecase/queries"
	"flynext/tests/common/builder"
	commonhttp "flynext/tests/common/httptest"
	"flynext/tests/common/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// ---- mocks ----

type MockBookingCommands struct {
	mock.Mock
}

func (m *MockBookingCommands) CreateOrGetActive(ctx context.Context, userID uuid.UUID) (*queries.BookingView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.BookingView), args.Error(1)
}

func (m *MockBookingCommands) AddHotel(ctx context.Context, userID uuid.UUID, req reqdto.AddHotelRequest) (*queries.BookingView, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.BookingView), args.Error(1)
}

func (m *MockBookingCommands) AddFlights(ctx context.Context, userID uuid.UUID, req reqdto.AddFlightsRequest) (*queries.BookingView, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.BookingView), args.Error(1)
}

func (m *MockBookingCommands) RemoveHotel(ctx context.Context, userID uuid.UUID) (*queries.BookingView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.BookingView), args.Error(1)
}

func (m *MockBookingCommands) RemoveFlights(ctx context.Context, userID uuid.UUID) (*queries.BookingView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.BookingView), args.Error(1)
}

func (m *MockBookingCommands) Checkout(ctx context.Context, userID uuid.UUID, req reqdto.CheckoutRequest) (*queries.InvoiceView, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.InvoiceView), args.Error(1)
}

func (m *MockBookingCommands) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID, scope booking.CancelScope) (*queries.BookingView, error) {
	args := m.Called(ctx, userID, bookingID, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.BookingView), args.Error(1)
}

type MockBookingQueries struct {
	mock.Mock
}

func (m *MockBookingQueries) GetActiveForUser(ctx context.Context, userID uuid.UUID) (*queries.BookingView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.BookingView), args.Error(1)
}

func (m *MockBookingQueries) GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*queries.BookingView, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.BookingView), args.Error(1)
}

func (m *MockBookingQueries) ListByUser(ctx context.Context, userID uuid.UUID) ([]*queries.BookingListItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*queries.BookingListItem), args.Error(1)
}

type MockSuggestionQueries struct {
	mock.Mock
}

func (m *MockSuggestionQueries) SuggestionsForBooking(ctx context.Context, userID uuid.UUID) ([]queries.Suggestion, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queries.Suggestion), args.Error(1)
}

func (m *MockSuggestionQueries) VerifyBookingFlights(ctx context.Context, actor uuid.UUID, bookingID uuid.UUID) ([]queries.FlightVerification, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queries.FlightVerification), args.Error(1)
}

// ---- suite ----

type BookingHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockCommands    *MockBookingCommands
	mockQueries     *MockBookingQueries
	mockSuggestions *MockSuggestionQueries
	userID          uuid.UUID
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCommands = new(MockBookingCommands)
	s.mockQueries = new(MockBookingQueries)
	s.mockSuggestions = new(MockSuggestionQueries)
	s.userID = uuid.New()

	handler := api.NewBookingHandler(s.mockCommands, s.mockQueries, s.mockSuggestions)

	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set("user_id", s.userID)
		c.Set("user_role", "traveler")
		c.Next()
	}

	bookings := s.router.Group("/api/bookings", authMiddleware)
	bookings.GET("", handler.GetActive)
	bookings.POST("", handler.CreateOrGetActive)
	bookings.PATCH("", handler.Update)
	bookings.DELETE("/hotel", handler.RemoveHotel)
	bookings.DELETE("/flights", handler.RemoveFlights)
	bookings.GET("/suggestions", handler.Suggestions)

	s.router.POST("/api/checkout", authMiddleware, handler.Checkout)

	records := s.router.Group("/api/records", authMiddleware)
	records.GET("", handler.ListRecords)
	records.GET("/:id", handler.GetRecord)
	records.PATCH("/:id", handler.CancelRecord)
	records.GET("/:id/verify", handler.VerifyRecord)
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

func (s *BookingHandlerTestSuite) TestGetActive() {
	s.Run("returns the open booking", func() {
		view := builder.NewBookingBuilder().BuildViewQuery()
		s.mockQueries.On("GetActiveForUser", mock.Anything, s.userID).Return(view, nil).Once()

		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet, "/api/bookings", nil, "token")

		var body struct {
			Booking *queries.BookingView `json:"booking"`
		}
		commonhttp.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Require().NotNil(body.Booking)
		s.Equal(view.ID, body.Booking.ID)
	})

	s.Run("no open booking renders a null body", func() {
		s.mockQueries.On("GetActiveForUser", mock.Anything, s.userID).Return(nil, nil).Once()

		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet, "/api/bookings", nil, "token")

		var body struct {
			Booking *queries.BookingView `json:"booking"`
		}
		commonhttp.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Nil(body.Booking)
	})

	s.Run("unauthenticated request is rejected", func() {
		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet, "/api/bookings", nil, "")
		commonhttp.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "")
	})
}

func (s *BookingHandlerTestSuite) TestUpdate() {
	s.Run("hotel section is forwarded to AddHotel", func() {
		b := builder.NewBookingBuilder()
		view := b.BuildViewQuery()
		hotelReq := b.BuildAddHotelRequestDTO()

		s.mockCommands.On("AddHotel", mock.Anything, s.userID, hotelReq).Return(view, nil).Once()

		body := map[string]any{"hotel": hotelReq}
		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodPatch, "/api/bookings", body, "token")
		commonhttp.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
		s.mockCommands.AssertExpectations(s.T())
	})

	s.Run("empty body is a bad request", func() {
		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodPatch, "/api/bookings", map[string]any{}, "token")
		commonhttp.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Nothing to update")
	})

	s.Run("three flight segments fail validation", func() {
		seg := testutil.DtoMap(s.T(), builder.NewBookingBuilder().BuildAddFlightsRequestDTO().Flights[0])
		body := map[string]any{"flights": []any{seg, seg, seg}}

		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodPatch, "/api/bookings", body, "token")
		commonhttp.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

func (s *BookingHandlerTestSuite) TestCheckout() {
	s.Run("returns 201 with the invoice", func() {
		b := builder.NewBookingBuilder()
		bookingID := uuid.New()
		invView := b.BuildInvoiceView(bookingID)

		s.mockCommands.On("Checkout", mock.Anything, s.userID, b.BuildCheckoutRequestDTO()).
			Return(invView, nil).Once()

		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/api/checkout", b.BuildCheckoutRequestDTO(), "token")

		var body queries.InvoiceView
		commonhttp.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(bookingID, body.BookingID)
	})

	s.Run("empty cart maps to 422", func() {
		b := builder.NewBookingBuilder()
		s.mockCommands.On("Checkout", mock.Anything, s.userID, mock.Anything).
			Return(nil, booking.ErrEmptyItinerary).Once()

		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/api/checkout", b.BuildCheckoutRequestDTO(), "token")
		commonhttp.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "no components")
	})

	s.Run("declined payment maps to 402", func() {
		b := builder.NewBookingBuilder()
		s.mockCommands.On("Checkout", mock.Anything, s.userID, mock.Anything).
			Return(nil, commands.ErrPaymentDeclined).Once()

		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/api/checkout", b.BuildCheckoutRequestDTO(), "token")
		commonhttp.AssertErrorResponse(s.T(), rec, http.StatusPaymentRequired, "declined")
	})

	s.Run("missing card fields fail validation", func() {
		b := builder.NewBookingBuilder()
		body := testutil.DtoMap(s.T(), b.BuildCheckoutRequestDTO(), testutil.Field("card_number", nil))

		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/api/checkout", body, "token")
		commonhttp.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

func (s *BookingHandlerTestSuite) TestCancelRecord() {
	s.Run("defaults to a full cancellation without a body", func() {
		bookingID := uuid.New()
		view := builder.NewBookingBuilder().BuildViewQuery()
		view.Status = booking.StatusCancelled.String()

		s.mockCommands.On("CancelBooking", mock.Anything, s.userID, bookingID, booking.CancelAll).
			Return(view, nil).Once()

		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodPatch, "/api/records/"+bookingID.String(), nil, "token")
		commonhttp.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
		s.mockCommands.AssertExpectations(s.T())
	})

	s.Run("forwards an explicit scope", func() {
		bookingID := uuid.New()
		view := builder.NewBookingBuilder().BuildViewQuery()

		s.mockCommands.On("CancelBooking", mock.Anything, s.userID, bookingID, booking.CancelHotelOnly).
			Return(view, nil).Once()

		body := map[string]any{"scope": "HOTEL_ONLY"}
		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodPatch, "/api/records/"+bookingID.String(), body, "token")
		commonhttp.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("unknown scope fails validation", func() {
		bookingID := uuid.New()
		body := map[string]any{"scope": "EVERYTHING"}

		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodPatch, "/api/records/"+bookingID.String(), body, "token")
		commonhttp.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("double cancellation maps to 409", func() {
		bookingID := uuid.New()
		s.mockCommands.On("CancelBooking", mock.Anything, s.userID, bookingID, booking.CancelAll).
			Return(nil, booking.ErrAlreadyCancelled).Once()

		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodPatch, "/api/records/"+bookingID.String(), nil, "token")
		commonhttp.AssertErrorResponse(s.T(), rec, http.StatusConflict, "already cancelled")
	})

	s.Run("someone else's record maps to 403", func() {
		bookingID := uuid.New()
		s.mockCommands.On("CancelBooking", mock.Anything, s.userID, bookingID, booking.CancelAll).
			Return(nil, commands.ErrBookingAccessDenied).Once()

		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodPatch, "/api/records/"+bookingID.String(), nil, "token")
		commonhttp.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "")
	})

	s.Run("malformed id is a bad request", func() {
		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodPatch, "/api/records/not-a-uuid", nil, "token")
		commonhttp.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid booking ID")
	})
}

func (s *BookingHandlerTestSuite) TestSuggestions() {
	s.Run("returns supplier candidates", func() {
		suggestions := []queries.Suggestion{
			{Kind: "hotel", Room: &queries.RoomCandidate{HotelID: "htl_9", City: "Lisbon"}},
		}
		s.mockSuggestions.On("SuggestionsForBooking", mock.Anything, s.userID).
			Return(suggestions, nil).Once()

		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet, "/api/bookings/suggestions", nil, "token")

		var body struct {
			Suggestions []queries.Suggestion `json:"suggestions"`
		}
		commonhttp.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body.Suggestions, 1)
	})

	s.Run("no active booking maps to 404", func() {
		s.mockSuggestions.On("SuggestionsForBooking", mock.Anything, s.userID).
			Return(nil, errs.ErrBookingNotFound).Once()

		rec := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet, "/api/bookings/suggestions", nil, "token")
		commonhttp.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})
}
