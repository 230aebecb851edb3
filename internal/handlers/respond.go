package handlers

import (
	"errors"

	"github.com/drivelink/drivelink-backend/internal/booking"
	"github.com/gin-gonic/gin"
)

// respondWorkflowError maps the booking error taxonomy onto HTTP statuses.
func respondWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrValidation), errors.Is(err, booking.ErrInvalidTransition):
		c.JSON(400, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrAuthorization):
		c.JSON(403, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrNotFound):
		c.JSON(404, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrConflict):
		c.JSON(409, gin.H{"error": err.Error()})
	default:
		c.JSON(500, gin.H{"error": "Something went wrong. Please try again."})
	}
}
