package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taxi-travel/service-travel/internal/domain"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Reasons map[string]string `json:"reasons,omitempty"`
	Details interface{}       `json:"details,omitempty"`
}

// FailedCompensation is reported in the details of a PARTIAL_FAILURE response.
type FailedCompensation struct {
	Step       string `json:"step"`
	ResourceID string `json:"resource_id,omitempty"`
	Error      string `json:"error"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, "NOT_FOUND", message)
}

// Fail writes an error envelope with an explicit status and code.
func Fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, Envelope{Success: false, Error: &ErrorBody{Code: code, Message: message}})
}

// Error maps err to a status code by its domain classification.
func Error(c *gin.Context, err error) {
	status, body := Describe(err)
	c.JSON(status, Envelope{Success: false, Error: body})
}

// Describe returns the status and body Error would write for err.
func Describe(err error) (int, *ErrorBody) {
	if pf, ok := domain.AsPartialFailure(err); ok {
		failed := make([]FailedCompensation, len(pf.Failed))
		for i, f := range pf.Failed {
			failed[i] = FailedCompensation{Step: f.Step, ResourceID: f.ResourceID, Error: f.Err.Error()}
		}
		return http.StatusInternalServerError, &ErrorBody{
			Code:    "PARTIAL_FAILURE",
			Message: pf.Error(),
			Details: failed,
		}
	}

	var de *domain.DomainError
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, &ErrorBody{Code: "INTERNAL_ERROR", Message: "internal server error"}
	}

	body := &ErrorBody{Code: string(de.Kind), Message: de.Error(), Reasons: de.Reasons}
	switch de.Kind {
	case domain.KindValidation:
		return http.StatusBadRequest, body
	case domain.KindNotFound:
		return http.StatusNotFound, body
	case domain.KindConflict:
		return http.StatusConflict, body
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable, body
	default:
		return http.StatusInternalServerError, body
	}
}
