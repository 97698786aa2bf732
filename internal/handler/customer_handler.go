package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/taxi-travel/service-travel/internal/application"
	"github.com/taxi-travel/service-travel/internal/platform/response"
)

// CustomerHandler handles HTTP requests for customers.
type CustomerHandler struct {
	service *application.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(service *application.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// RegisterRoutes registers customer routes.
func (h *CustomerHandler) RegisterRoutes(r *gin.RouterGroup, idempotency gin.HandlerFunc) {
	customers := r.Group("/api/customers")
	{
		customers.POST("", chain(idempotency, h.CreateCustomer)...)
		customers.GET("", h.ListCustomers)
		customers.GET("/:id", h.GetCustomer)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.DELETE("/:id", h.DeleteCustomer)
	}
}

// CreateCustomer handles POST /api/customers.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req application.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListCustomers handles GET /api/customers. ?email= looks up a single customer.
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	if email := c.Query("email"); email != "" {
		result, err := h.service.GetCustomerByEmail(c.Request.Context(), email)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, result)
		return
	}

	result, err := h.service.ListCustomers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetCustomer handles GET /api/customers/:id.
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}

	result, err := h.service.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateCustomer handles PUT /api/customers/:id.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}

	var req application.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateCustomer(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteCustomer handles DELETE /api/customers/:id.
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := pathID(c, "id", "customer")
	if !ok {
		return
	}

	result, err := h.service.DeleteCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
