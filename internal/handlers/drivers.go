package handlers

import (
	"context"

	"github.com/drivelink/drivelink-backend/internal/models"
	"github.com/drivelink/drivelink-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SubmitDriverForm accepts a driver's registration form for admin review.
// The form carries a licence photo as multipart data.
func SubmitDriverForm(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")
		role := c.GetString("role")

		if role != string(models.RoleDriver) {
			c.JSON(403, gin.H{"error": "Only drivers can submit registration forms"})
			return
		}

		var input struct {
			LicenseNumber   string `form:"licenseNumber" binding:"required"`
			LicenseType     string `form:"licenseType" binding:"required"`
			YearsExperience int    `form:"yearsExperience" binding:"required,min=0"`
			VehicleMake     string `form:"vehicleMake"`
			VehiclePlate    string `form:"vehiclePlate"`
		}

		if err := c.ShouldBind(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		// One pending form per driver
		var existing models.DriverForm
		if err := db.Where("driver_id = ? AND status = ?", driverID, models.FormStatusPending).
			First(&existing).Error; err == nil {
			c.JSON(409, gin.H{"error": "A registration form is already awaiting review"})
			return
		}

		form := models.DriverForm{
			DriverID:        driverID,
			LicenseNumber:   input.LicenseNumber,
			LicenseType:     input.LicenseType,
			YearsExperience: input.YearsExperience,
			VehicleMake:     input.VehicleMake,
			VehiclePlate:    input.VehiclePlate,
			Status:          models.FormStatusPending,
		}

		// Licence photo is optional at submission; admins can request it later
		if file, err := c.FormFile("licensePhoto"); err == nil {
			photoURL, err := services.UploadImage(file, "licenses")
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to upload licence photo", "details": err.Error()})
				return
			}
			form.LicensePhotoURL = photoURL
		}

		if err := db.Create(&form).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to submit registration form"})
			return
		}

		c.JSON(201, gin.H{
			"message": "Registration form submitted. An administrator will review it shortly.",
			"data":    form,
		})
	}
}

// GetMyDriverForm returns the calling driver's latest registration form
func GetMyDriverForm(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")

		var form models.DriverForm
		if err := db.Where("driver_id = ?", driverID).
			Order("created_at DESC").
			First(&form).Error; err != nil {
			c.JSON(404, gin.H{"error": "No registration form found"})
			return
		}

		c.JSON(200, gin.H{"data": form})
	}
}

// UpdateDriverAvailability toggles the driver's presence flag in Redis
func UpdateDriverAvailability(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID := c.GetUint("userId")
		role := c.GetString("role")

		if role != string(models.RoleDriver) {
			c.JSON(403, gin.H{"error": "Only drivers can update availability"})
			return
		}

		var input struct {
			IsAvailable *bool `json:"isAvailable" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		ctx := context.Background()
		if err := services.SetDriverAvailability(ctx, driverID, *input.IsAvailable); err != nil {
			c.JSON(500, gin.H{"error": "Failed to update availability"})
			return
		}

		c.JSON(200, gin.H{
			"message":     "Availability updated",
			"isAvailable": *input.IsAvailable,
		})
	}
}
