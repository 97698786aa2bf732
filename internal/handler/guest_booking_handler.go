package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/taxi-travel/service-travel/internal/application"
	"github.com/taxi-travel/service-travel/internal/platform/response"
)

// GuestBookingHandler handles bookings made by people who may not be
// registered customers yet.
type GuestBookingHandler struct {
	service *application.GuestBookingService
}

// NewGuestBookingHandler creates a new GuestBookingHandler.
func NewGuestBookingHandler(service *application.GuestBookingService) *GuestBookingHandler {
	return &GuestBookingHandler{service: service}
}

func (h *GuestBookingHandler) RegisterRoutes(r *gin.RouterGroup, idempotency gin.HandlerFunc) {
	r.POST("/api/guestBookings", chain(idempotency, h.CreateGuestBooking)...)
}

// CreateGuestBooking handles POST /api/guestBookings.
func (h *GuestBookingHandler) CreateGuestBooking(c *gin.Context) {
	var req application.GuestBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateGuestBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
