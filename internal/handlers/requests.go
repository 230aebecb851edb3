package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/drivelink/drivelink-backend/internal/booking"
	"github.com/drivelink/drivelink-backend/internal/models"
	"github.com/drivelink/drivelink-backend/internal/services"
	"github.com/drivelink/drivelink-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateBookingRequest opens a new booking request for the calling client
func CreateBookingRequest(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetUint("userId")
		role := c.GetString("role")

		if role != string(models.RoleClient) {
			c.JSON(403, gin.H{"error": "Only clients can create booking requests"})
			return
		}

		var input struct {
			StartDate    time.Time `json:"startDate" binding:"required"`
			EndDate      time.Time `json:"endDate" binding:"required"`
			Route        string    `json:"route" binding:"required"`
			Requirements string    `json:"requirements"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		req, err := svc.CreateRequest(c.Request.Context(), clientID, booking.CreateRequestInput{
			StartDate:    input.StartDate,
			EndDate:      input.EndDate,
			Route:        input.Route,
			Requirements: input.Requirements,
		})
		if err != nil {
			respondWorkflowError(c, err)
			return
		}

		// New request pushes the oldest one out of the cached feed
		ctx := context.Background()
		services.InvalidateOpenFeed(ctx)
		services.PublishBookingEvent(ctx, "request_created", req.ID, gin.H{
			"clientId": clientID,
			"route":    req.Route,
		})

		c.JSON(201, gin.H{
			"message": "Booking request created successfully",
			"data":    req,
		})
	}
}

// GetOpenRequests returns the driver-facing feed of recent open requests
func GetOpenRequests(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role != string(models.RoleDriver) {
			c.JSON(403, gin.H{"error": "Only drivers can browse open requests"})
			return
		}

		ctx := c.Request.Context()
		if cached, err := services.GetCachedOpenFeed(ctx); err == nil {
			c.JSON(200, gin.H{"data": cached})
			return
		}

		requests, err := svc.ListOpenRequests(ctx)
		if err != nil {
			respondWorkflowError(c, err)
			return
		}

		services.CacheOpenFeed(ctx, requests)
		c.JSON(200, gin.H{"data": requests})
	}
}

// GetClientRequests returns the calling client's own requests
func GetClientRequests(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetUint("userId")

		requests, err := svc.ListRequestsByClient(c.Request.Context(), clientID)
		if err != nil {
			respondWorkflowError(c, err)
			return
		}

		c.JSON(200, gin.H{"data": requests})
	}
}

func requestIDParam(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid request ID"})
		return 0, false
	}
	return uint(id), true
}

// ApplyToRequest appends the calling driver to the request's candidate list
func ApplyToRequest(svc *booking.Service, db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")
		role := c.GetString("role")

		if role != string(models.RoleDriver) {
			c.JSON(403, gin.H{"error": "Only drivers can apply to booking requests"})
			return
		}

		// Unapproved drivers cannot apply
		var driver models.User
		if err := db.First(&driver, driverID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Driver not found"})
			return
		}
		if driver.Phase != models.PhaseActive {
			c.JSON(403, gin.H{"error": "Driver account is not approved yet"})
			return
		}

		requestID, ok := requestIDParam(c)
		if !ok {
			return
		}

		if err := svc.Apply(c.Request.Context(), requestID, driverID); err != nil {
			respondWorkflowError(c, err)
			return
		}

		// Notify the request owner
		var req models.BookingRequest
		if err := db.First(&req, requestID).Error; err == nil {
			hub.SendApplicationReceived(req.ClientID, services.ApplicationReceived{
				RequestID: requestID,
				DriverID:  driverID,
				Driver:    driver.Username,
			})
		}

		c.JSON(200, gin.H{
			"message":   "Application submitted successfully",
			"requestId": requestID,
		})
	}
}

// GetCandidates lists the public profiles of drivers who applied
func GetCandidates(svc *booking.Service, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetUint("userId")

		requestID, ok := requestIDParam(c)
		if !ok {
			return
		}

		// Candidates are visible to the request owner only
		var req models.BookingRequest
		if err := db.First(&req, requestID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Request not found"})
			return
		}
		if req.ClientID != clientID {
			c.JSON(403, gin.H{"error": "Unauthorized to view this request"})
			return
		}

		candidates, err := svc.Candidates(c.Request.Context(), requestID)
		if err != nil {
			respondWorkflowError(c, err)
			return
		}

		c.JSON(200, gin.H{"data": candidates})
	}
}

// SelectDriver records the client's choice of driver for the request
func SelectDriver(svc *booking.Service, db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetUint("userId")
		role := c.GetString("role")

		if role != string(models.RoleClient) {
			c.JSON(403, gin.H{"error": "Only clients can select a driver"})
			return
		}

		requestID, ok := requestIDParam(c)
		if !ok {
			return
		}

		var input struct {
			DriverID uint `json:"driverId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if err := svc.SelectDriver(c.Request.Context(), requestID, clientID, input.DriverID); err != nil {
			respondWorkflowError(c, err)
			return
		}

		ctx := context.Background()
		services.InvalidateOpenFeed(ctx)
		services.PublishBookingEvent(ctx, "driver_selected", requestID, gin.H{
			"driverId": input.DriverID,
		})

		hub.SendDriverSelected(input.DriverID, services.DriverSelected{
			RequestID: requestID,
			DriverID:  input.DriverID,
		})

		// Best-effort notification to the selected driver
		var client models.User
		var driver models.User
		var req models.BookingRequest
		if db.First(&client, clientID).Error == nil &&
			db.First(&driver, input.DriverID).Error == nil &&
			db.First(&req, requestID).Error == nil {
			if driver.FCMToken != "" {
				go services.SendDriverSelectedNotification(ctx, driver.FCMToken, requestID, client.Username, req.Route)
			}
			if driver.PhoneNumber != "" {
				go utils.SendDriverSelectedSMS(driver.PhoneNumber, client.Username, req.Route)
			}
			go utils.SendDriverSelectedEmail(driver.Email, client.Username, req.Route)
		}

		c.JSON(200, gin.H{
			"message":   "Driver selected successfully",
			"requestId": requestID,
			"driverId":  input.DriverID,
		})
	}
}

// FinalizeBooking lets the selected driver confirm and create the booking
func FinalizeBooking(svc *booking.Service, db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")
		role := c.GetString("role")

		if role != string(models.RoleDriver) {
			c.JSON(403, gin.H{"error": "Only drivers can finalize a booking"})
			return
		}

		requestID, ok := requestIDParam(c)
		if !ok {
			return
		}

		b, err := svc.Finalize(c.Request.Context(), requestID, driverID)
		if err != nil {
			respondWorkflowError(c, err)
			return
		}

		ctx := context.Background()
		services.InvalidateOpenFeed(ctx)
		services.PublishBookingEvent(ctx, "booking_finalized", requestID, gin.H{
			"bookingId": b.ID,
			"driverId":  driverID,
		})

		hub.SendBookingFinalized(b.ClientID, services.BookingFinalized{
			RequestID: requestID,
			BookingID: b.ID,
			DriverID:  driverID,
			Status:    string(b.Status),
		})

		var client models.User
		var driver models.User
		if db.First(&client, b.ClientID).Error == nil && db.First(&driver, driverID).Error == nil {
			if client.FCMToken != "" {
				go services.SendBookingFinalizedNotification(ctx, client.FCMToken, b.ID, driver.Username)
			}
			if client.PhoneNumber != "" {
				go utils.SendBookingFinalizedSMS(client.PhoneNumber, driver.Username)
			}
		}

		c.JSON(201, gin.H{
			"message": "Booking finalized successfully",
			"data":    b,
		})
	}
}
