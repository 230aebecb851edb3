package handlers

import (
	"context"
	"strconv"

	"github.com/drivelink/drivelink-backend/internal/booking"
	"github.com/drivelink/drivelink-backend/internal/models"
	"github.com/drivelink/drivelink-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// GetBooking retrieves detailed booking information for one of its parties
func GetBooking(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		b, err := svc.GetBooking(c.Request.Context(), uint(bookingID), userID)
		if err != nil {
			respondWorkflowError(c, err)
			return
		}

		response := gin.H{
			"id":           b.ID,
			"requestId":    b.RequestID,
			"status":       b.Status,
			"startDate":    b.StartDate,
			"endDate":      b.EndDate,
			"route":        b.Route,
			"requirements": b.Requirements,
			"clientId":     b.ClientID,
			"driverId":     b.DriverID,
		}

		if b.Driver != nil {
			response["driver"] = gin.H{
				"username":     b.Driver.Username,
				"phoneNumber":  b.Driver.PhoneNumber,
				"rating":       b.Driver.Rating,
				"licenseType":  b.Driver.LicenseType,
				"vehicleMake":  b.Driver.VehicleMake,
				"vehiclePlate": b.Driver.VehiclePlate,
			}
		}
		if b.Client != nil {
			response["client"] = gin.H{
				"username":    b.Client.Username,
				"phoneNumber": b.Client.PhoneNumber,
			}
		}

		c.JSON(200, response)
	}
}

// GetClientBookings retrieves all bookings for a client
func GetClientBookings(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		bookings, err := svc.ListBookingsByClient(c.Request.Context(), userID)
		if err != nil {
			respondWorkflowError(c, err)
			return
		}

		c.JSON(200, gin.H{"data": bookings})
	}
}

// GetDriverBookings retrieves all bookings for a driver
func GetDriverBookings(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		bookings, err := svc.ListBookingsByDriver(c.Request.Context(), userID)
		if err != nil {
			respondWorkflowError(c, err)
			return
		}

		c.JSON(200, gin.H{"data": bookings})
	}
}

// UpdateBookingStatus moves a booking along the status transition table
func UpdateBookingStatus(svc *booking.Service, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid booking ID"})
			return
		}

		var input struct {
			Status string `json:"status" binding:"required,oneof=pending confirmed active completed cancelled"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		newStatus := models.BookingStatus(input.Status)
		if err := svc.UpdateBookingStatus(c.Request.Context(), uint(bookingID), userID, newStatus); err != nil {
			respondWorkflowError(c, err)
			return
		}

		// Notify both parties
		if b, err := svc.GetBooking(c.Request.Context(), uint(bookingID), userID); err == nil {
			event := services.BookingStatusChanged{
				BookingID: b.ID,
				Status:    string(b.Status),
			}
			hub.SendBookingStatusChanged(b.ClientID, event)
			hub.SendBookingStatusChanged(b.DriverID, event)

			services.PublishBookingEvent(context.Background(), "booking_status", b.RequestID, gin.H{
				"bookingId": b.ID,
				"status":    b.Status,
			})
		}

		c.JSON(200, gin.H{
			"message": "Booking status updated successfully",
			"status":  newStatus,
		})
	}
}
