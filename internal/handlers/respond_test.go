package handlers

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/drivelink/drivelink-backend/internal/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondWorkflowError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err  error
		code int
	}{
		{booking.ErrValidation, 400},
		{booking.ErrInvalidTransition, 400},
		{booking.ErrAuthorization, 403},
		{booking.ErrNotFound, 404},
		{booking.ErrConflict, 409},
		{fmt.Errorf("%w: end date must be after start date", booking.ErrValidation), 400},
		{fmt.Errorf("%w: request 5 already has a selected driver", booking.ErrConflict), 409},
		{booking.ErrPersistence, 500},
		{fmt.Errorf("dial tcp: connection refused"), 500},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondWorkflowError(c, tt.err)
		assert.Equal(t, tt.code, w.Code, "error %v", tt.err)
	}
}
