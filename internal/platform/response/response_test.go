package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taxi-travel/service-travel/internal/domain"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.NewValidationError("bad"), http.StatusBadRequest, "VALIDATION"},
		{"not found", domain.NewNotFoundError("Customer", "1"), http.StatusNotFound, "NOT_FOUND"},
		{"wrapped conflict", fmt.Errorf("save: %w", domain.NewConflictError("dup")), http.StatusConflict, "CONFLICT"},
		{"unavailable", domain.NewUnavailableError("down", nil), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{
			"partial failure",
			&domain.PartialFailureError{
				Cause:  domain.NewUnavailableError("hotel down", nil),
				Failed: []domain.CompensationFailure{{Step: "create-flight-booking", ResourceID: "7", Err: errors.New("timeout")}},
			},
			http.StatusInternalServerError,
			"PARTIAL_FAILURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := Describe(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestDescribe_KeepsReasons(t *testing.T) {
	err := domain.NewConflictError("dup").WithReason("email", "taken")
	_, body := Describe(err)
	assert.Equal(t, map[string]string{"email": "taken"}, body.Reasons)
}
