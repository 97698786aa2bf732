package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/taxi-travel/service-travel/internal/application"
	"github.com/taxi-travel/service-travel/internal/platform/response"
)

// TravelAgentHandler handles trips (taxi, flight and hotel booked together)
// and the orphan ledger those trips can leave behind.
type TravelAgentHandler struct {
	trips      *application.TravelAgentService
	orphans    *application.OrphanService
	reconciler *application.Reconciler
}

// NewTravelAgentHandler creates a new TravelAgentHandler.
func NewTravelAgentHandler(
	trips *application.TravelAgentService,
	orphans *application.OrphanService,
	reconciler *application.Reconciler,
) *TravelAgentHandler {
	return &TravelAgentHandler{trips: trips, orphans: orphans, reconciler: reconciler}
}

// RegisterRoutes registers the travel agent routes.
func (h *TravelAgentHandler) RegisterRoutes(r *gin.RouterGroup, idempotency gin.HandlerFunc) {
	agent := r.Group("/api/travelAgent")
	{
		agent.POST("", chain(idempotency, h.CreateTrip)...)
		agent.DELETE("", h.DeleteTrip)
		agent.GET("", h.ListTrips)
		agent.GET("/:id", h.GetTrip)
		agent.GET("/customerId/:id", h.ListTripsByCustomer)

		agent.GET("/orphans", h.ListOrphans)
		agent.POST("/orphans/:id/resolve", h.ResolveOrphan)
		agent.POST("/reconcile", h.Reconcile)
	}
}

// CreateTrip handles POST /api/travelAgent.
func (h *TravelAgentHandler) CreateTrip(c *gin.Context) {
	var req application.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.trips.CreateTrip(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// DeleteTrip handles DELETE /api/travelAgent with body {"id": ...}.
// An unknown id is a NotFound and maps to 404; a malformed body or an id
// whose customer no longer exists is a 400.
func (h *TravelAgentHandler) DeleteTrip(c *gin.Context) {
	var req application.DeleteTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.trips.DeleteTrip(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListTrips handles GET /api/travelAgent.
func (h *TravelAgentHandler) ListTrips(c *gin.Context) {
	result, err := h.trips.ListTrips(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetTrip handles GET /api/travelAgent/:id.
func (h *TravelAgentHandler) GetTrip(c *gin.Context) {
	id, ok := pathID(c, "id", "travel agent booking")
	if !ok {
		return
	}

	result, err := h.trips.GetTrip(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListTripsByCustomer handles GET /api/travelAgent/customerId/:id.
func (h *TravelAgentHandler) ListTripsByCustomer(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}

	result, err := h.trips.ListTripsByCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListOrphans handles GET /api/travelAgent/orphans.
func (h *TravelAgentHandler) ListOrphans(c *gin.Context) {
	result, err := h.orphans.ListUnresolved(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ResolveOrphan handles POST /api/travelAgent/orphans/:id/resolve.
func (h *TravelAgentHandler) ResolveOrphan(c *gin.Context) {
	id, ok := pathID(c, "id", "orphan")
	if !ok {
		return
	}

	result, err := h.orphans.Resolve(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Reconcile handles POST /api/travelAgent/reconcile and runs one sweep.
func (h *TravelAgentHandler) Reconcile(c *gin.Context) {
	report, err := h.reconciler.Sweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, report)
}
