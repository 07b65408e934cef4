package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shareit-app/service-booking/internal/application"
	bookingDomain "github.com/shareit-app/service-booking/internal/domain/booking"
	"github.com/shareit-app/service-booking/pkg/auth"
	"github.com/shareit-app/service-booking/pkg/clock"
	"github.com/shareit-app/service-booking/pkg/middleware"
	"github.com/shareit-app/service-booking/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
	clock   clock.Clock
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService, clk clock.Clock) *BookingHandler {
	return &BookingHandler{service: service, clock: clk}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager, extra ...gin.HandlerFunc) {
	bookings := r.Group("/api/v1/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager))
	bookings.Use(extra...)
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookerBookings)
		bookings.GET("/owner", h.ListOwnerBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id", h.DecideBooking)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	now := h.clock.Now()
	if !req.Start.After(now) || !req.End.After(now) {
		response.BadRequest(c, "start and end must be in the future")
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// DecideBooking handles PATCH /api/v1/bookings/:id?approved=true|false.
func (h *BookingHandler) DecideBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	approved, err := strconv.ParseBool(c.Query("approved"))
	if err != nil {
		response.BadRequest(c, "approved must be true or false")
		return
	}

	result, err := h.service.DecideBooking(c.Request.Context(), userID, bookingID, approved)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id. Bookings the caller may not see yield null data.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListBookerBookings handles GET /api/v1/bookings?state=.
func (h *BookingHandler) ListBookerBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	state, ok := parseState(c)
	if !ok {
		return
	}

	result, err := h.service.ListBookerBookings(c.Request.Context(), userID, state)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListOwnerBookings handles GET /api/v1/bookings/owner?state=.
func (h *BookingHandler) ListOwnerBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	state, ok := parseState(c)
	if !ok {
		return
	}

	result, err := h.service.ListOwnerBookings(c.Request.Context(), userID, state)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func parseState(c *gin.Context) (bookingDomain.State, bool) {
	state, err := bookingDomain.ParseState(c.DefaultQuery("state", string(bookingDomain.StateAll)))
	if err != nil {
		response.BadRequest(c, "Unknown state: "+c.Query("state"))
		return "", false
	}
	return state, true
}
