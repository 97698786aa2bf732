package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/taxi-travel/service-travel/internal/application"
	"github.com/taxi-travel/service-travel/internal/platform/response"
)

// TaxiHandler handles HTTP requests for taxis.
type TaxiHandler struct {
	service *application.TaxiService
}

// NewTaxiHandler creates a new TaxiHandler.
func NewTaxiHandler(service *application.TaxiService) *TaxiHandler {
	return &TaxiHandler{service: service}
}

// RegisterRoutes registers taxi routes.
func (h *TaxiHandler) RegisterRoutes(r *gin.RouterGroup, idempotency gin.HandlerFunc) {
	taxis := r.Group("/api/taxis")
	{
		taxis.POST("", chain(idempotency, h.CreateTaxi)...)
		taxis.GET("", h.ListTaxis)
		taxis.GET("/:id", h.GetTaxi)
		taxis.PUT("/:id", h.UpdateTaxi)
		taxis.DELETE("/:id", h.DeleteTaxi)
	}
}

// CreateTaxi handles POST /api/taxis.
func (h *TaxiHandler) CreateTaxi(c *gin.Context) {
	var req application.TaxiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateTaxi(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListTaxis handles GET /api/taxis.
func (h *TaxiHandler) ListTaxis(c *gin.Context) {
	result, err := h.service.ListTaxis(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetTaxi handles GET /api/taxis/:id.
func (h *TaxiHandler) GetTaxi(c *gin.Context) {
	id, ok := pathID(c, "id", "taxi")
	if !ok {
		return
	}

	result, err := h.service.GetTaxi(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateTaxi handles PUT /api/taxis/:id.
func (h *TaxiHandler) UpdateTaxi(c *gin.Context) {
	id, ok := pathID(c, "id", "taxi")
	if !ok {
		return
	}

	var req application.TaxiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateTaxi(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteTaxi handles DELETE /api/taxis/:id.
func (h *TaxiHandler) DeleteTaxi(c *gin.Context) {
	id, ok := pathID(c, "id", "taxi")
	if !ok {
		return
	}

	result, err := h.service.DeleteTaxi(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
