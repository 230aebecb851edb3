package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/drivelink/drivelink-backend/internal/models"
	"github.com/drivelink/drivelink-backend/internal/services"
	"github.com/drivelink/drivelink-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetDriverForms lists registration forms for the approval queue,
// filterable by status (defaults to pending)
func GetDriverForms(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.DefaultQuery("status", string(models.FormStatusPending))

		var forms []models.DriverForm
		if err := db.Where("status = ?", status).
			Preload("Driver").
			Order("created_at ASC").
			Find(&forms).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch registration forms"})
			return
		}

		// Licence photos are served through short-lived signed URLs
		type formView struct {
			models.DriverForm
			LicensePhotoSignedURL string `json:"licensePhotoSignedUrl,omitempty"`
		}
		views := make([]formView, 0, len(forms))
		for _, form := range forms {
			view := formView{DriverForm: form}
			if form.LicensePhotoURL != "" {
				if signed, err := services.GetSignedURL(form.LicensePhotoURL, 15*time.Minute); err == nil {
					view.LicensePhotoSignedURL = signed
				}
			}
			views = append(views, view)
		}

		c.JSON(200, gin.H{"data": views})
	}
}

func formIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid form ID"})
		return 0, false
	}
	return uint(id), true
}

// ApproveDriverForm approves a pending form and activates the driver account
func ApproveDriverForm(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := c.GetUint("userId")

		formID, ok := formIDParam(c)
		if !ok {
			return
		}

		var form models.DriverForm
		if err := db.Preload("Driver").First(&form, formID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Registration form not found"})
			return
		}

		if form.Status != models.FormStatusPending {
			c.JSON(409, gin.H{"error": "Form has already been reviewed"})
			return
		}

		var driver models.User
		if err := db.First(&driver, form.DriverID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Driver account not found"})
			return
		}
		if err := driver.ChangePhase(models.PhaseActive); err != nil {
			c.JSON(409, gin.H{"error": err.Error()})
			return
		}

		now := time.Now()
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.DriverForm{}).Where("id = ?", form.ID).
				Updates(map[string]interface{}{
					"status":      models.FormStatusApproved,
					"admin_id":    adminID,
					"reviewed_at": now,
				}).Error; err != nil {
				return err
			}
			// Copy vetted form fields onto the driver profile
			return tx.Model(&models.User{}).Where("id = ?", driver.ID).
				Updates(map[string]interface{}{
					"phase":            models.PhaseActive,
					"license_type":     form.LicenseType,
					"years_experience": form.YearsExperience,
					"vehicle_make":     form.VehicleMake,
					"vehicle_plate":    form.VehiclePlate,
				}).Error
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to approve registration form"})
			return
		}

		ctx := context.Background()
		if driver.FCMToken != "" {
			go services.SendFormReviewedNotification(ctx, driver.FCMToken, true, "")
		}
		go utils.SendFormReviewedEmail(driver.Email, true, "")

		c.JSON(200, gin.H{"message": "Registration form approved"})
	}
}

// RejectDriverForm rejects a pending form with a reason
func RejectDriverForm(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := c.GetUint("userId")

		formID, ok := formIDParam(c)
		if !ok {
			return
		}

		var input struct {
			Reason string `json:"reason" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var form models.DriverForm
		if err := db.First(&form, formID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Registration form not found"})
			return
		}

		if form.Status != models.FormStatusPending {
			c.JSON(409, gin.H{"error": "Form has already been reviewed"})
			return
		}

		var driver models.User
		if err := db.First(&driver, form.DriverID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Driver account not found"})
			return
		}

		now := time.Now()
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.DriverForm{}).Where("id = ?", form.ID).
				Updates(map[string]interface{}{
					"status":        models.FormStatusRejected,
					"admin_id":      adminID,
					"reviewed_at":   now,
					"reject_reason": input.Reason,
				}).Error; err != nil {
				return err
			}
			return tx.Model(&models.User{}).Where("id = ?", driver.ID).
				Update("phase", models.PhaseRejected).Error
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to reject registration form"})
			return
		}

		ctx := context.Background()
		if driver.FCMToken != "" {
			go services.SendFormReviewedNotification(ctx, driver.FCMToken, false, input.Reason)
		}
		go utils.SendFormReviewedEmail(driver.Email, false, input.Reason)

		c.JSON(200, gin.H{"message": "Registration form rejected"})
	}
}

// SuspendAccount moves an account to the suspended phase
func SuspendAccount(db *gorm.DB) gin.HandlerFunc {
	return changeAccountPhase(db, models.PhaseSuspended, "Account suspended")
}

// ReinstateAccount moves a suspended account back to active
func ReinstateAccount(db *gorm.DB) gin.HandlerFunc {
	return changeAccountPhase(db, models.PhaseActive, "Account reinstated")
}

func changeAccountPhase(db *gorm.DB, to models.AccountPhase, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid account ID"})
			return
		}

		var user models.User
		if err := db.First(&user, uint(accountID)).Error; err != nil {
			c.JSON(404, gin.H{"error": "Account not found"})
			return
		}

		if user.Role == models.RoleAdmin {
			c.JSON(403, gin.H{"error": "Admin accounts cannot be changed through this route"})
			return
		}

		if err := user.ChangePhase(to); err != nil {
			c.JSON(409, gin.H{"error": err.Error()})
			return
		}

		if err := db.Model(&models.User{}).Where("id = ?", user.ID).
			Update("phase", to).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update account"})
			return
		}

		c.JSON(200, gin.H{"message": message, "phase": to})
	}
}
