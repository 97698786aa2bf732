// Package handler exposes the application services over HTTP.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taxi-travel/service-travel/internal/platform/response"
)

// chain prepends mw to h when mw is set. Create endpoints use it to honour
// the Idempotency-Key header when Redis is configured.
func chain(mw gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if mw == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{mw, h}
}

// pathID parses the named path parameter as a UUID, writing a 400 on failure.
func pathID(c *gin.Context, name, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid "+entity+" ID")
		return uuid.Nil, false
	}
	return id, true
}
