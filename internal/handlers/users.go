package handlers

import (
	"github.com/drivelink/drivelink-backend/internal/models"
	"github.com/drivelink/drivelink-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func profileResponse(user *models.User) gin.H {
	response := gin.H{
		"id":          user.ID,
		"email":       user.Email,
		"username":    user.Username,
		"phoneNumber": user.PhoneNumber,
		"role":        user.Role,
		"phase":       user.Phase,
		"photoUrl":    user.PhotoURL,
	}
	if user.Role == models.RoleDriver {
		response["rating"] = user.Rating
		response["yearsExperience"] = user.YearsExperience
		response["licenseType"] = user.LicenseType
		response["vehicleMake"] = user.VehicleMake
		response["vehiclePlate"] = user.VehiclePlate
	}
	return response
}

// GetProfile retrieves the user's profile
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, profileResponse(&user))
	}
}

// UpdateProfile updates the user's profile information
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Username     *string `json:"username"`
			PhoneNumber  *string `json:"phoneNumber"`
			VehicleMake  *string `json:"vehicleMake"`
			VehiclePlate *string `json:"vehiclePlate"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		// Update fields individually to handle empty strings properly
		if input.Username != nil {
			user.Username = *input.Username
		}
		if input.PhoneNumber != nil {
			user.PhoneNumber = *input.PhoneNumber
		}
		if input.VehicleMake != nil {
			user.VehicleMake = *input.VehicleMake
		}
		if input.VehiclePlate != nil {
			user.VehiclePlate = *input.VehiclePlate
		}

		// Use Save() instead of Updates() to persist all fields including empty strings
		if err := db.Save(&user).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update profile"})
			return
		}

		c.JSON(200, profileResponse(&user))
	}
}

// UploadProfilePhoto stores the user's profile photo and saves its URL
func UploadProfilePhoto(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		file, err := c.FormFile("photo")
		if err != nil {
			c.JSON(400, gin.H{"error": "Photo file is required"})
			return
		}

		photoURL, err := services.UploadImage(file, "profiles")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to upload photo", "details": err.Error()})
			return
		}

		if err := db.Model(&models.User{}).Where("id = ?", userId).
			Update("photo_url", photoURL).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to save photo"})
			return
		}

		c.JSON(200, gin.H{
			"message":  "Photo uploaded successfully",
			"photoUrl": services.GetImageURL(photoURL),
		})
	}
}

// RegisterFCMToken saves the caller's device token for push notifications
func RegisterFCMToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if err := db.Model(&models.User{}).Where("id = ?", userId).
			Update("fcm_token", input.Token).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to register token"})
			return
		}

		c.JSON(200, gin.H{"message": "Token registered successfully"})
	}
}

// RemoveFCMToken clears the caller's device token
func RemoveFCMToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		if err := db.Model(&models.User{}).Where("id = ?", userId).
			Update("fcm_token", "").Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to remove token"})
			return
		}

		c.JSON(200, gin.H{"message": "Token removed successfully"})
	}
}
