package main

import (
	"log"
	"os"
	"time"

	"github.com/drivelink/drivelink-backend/internal/booking"
	"github.com/drivelink/drivelink-backend/internal/database"
	"github.com/drivelink/drivelink-backend/internal/handlers"
	"github.com/drivelink/drivelink-backend/internal/middleware"
	"github.com/drivelink/drivelink-backend/internal/models"
	"github.com/drivelink/drivelink-backend/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize database with better error handling
	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize Redis
	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Initialize Firebase (optional - will log warning if not configured)
	if err := services.InitFirebase(); err != nil {
		log.Printf("Firebase initialization warning: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Booking workflow service backed by the database
	svc := booking.NewService(booking.NewGormStore(db))

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve static files
	r.Static("/uploads", "/app/uploads")

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
			auth.POST("/verify-email", handlers.VerifyEmail(db))
			auth.POST("/forgot-password", handlers.RequestPasswordReset(db))
			auth.POST("/verify-otp", handlers.VerifyOTP(db))
			auth.POST("/reset-password", handlers.ResetPassword(db))
		}

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
				users.POST("/profile/photo", handlers.UploadProfilePhoto(db))
			}

			// Booking request routes
			requests := protected.Group("/requests")
			{
				requests.POST("", handlers.CreateBookingRequest(svc))
				requests.GET("/open", handlers.GetOpenRequests(svc))
				requests.GET("/client", handlers.GetClientRequests(svc))
				requests.POST("/:id/apply", handlers.ApplyToRequest(svc, db, hub))
				requests.GET("/:id/candidates", handlers.GetCandidates(svc, db))
				requests.POST("/:id/select", handlers.SelectDriver(svc, db, hub))
				requests.POST("/:id/finalize", handlers.FinalizeBooking(svc, db, hub))
			}

			// Bookings routes
			bookings := protected.Group("/bookings")
			{
				bookings.GET("/client", handlers.GetClientBookings(svc))
				bookings.GET("/driver", handlers.GetDriverBookings(svc))
				bookings.GET("/:id", handlers.GetBooking(svc))
				bookings.PATCH("/:id/status", handlers.UpdateBookingStatus(svc, hub))
			}

			// Driver routes
			driver := protected.Group("/driver")
			{
				driver.POST("/forms", handlers.SubmitDriverForm(db))
				driver.GET("/forms/mine", handlers.GetMyDriverForm(db))
				driver.POST("/availability", handlers.UpdateDriverAvailability(db))
			}

			// Admin routes
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(string(models.RoleAdmin)))
			{
				admin.GET("/forms", handlers.GetDriverForms(db))
				admin.POST("/forms/:id/approve", handlers.ApproveDriverForm(db))
				admin.POST("/forms/:id/reject", handlers.RejectDriverForm(db))
				admin.POST("/accounts/:id/suspend", handlers.SuspendAccount(db))
				admin.POST("/accounts/:id/reinstate", handlers.ReinstateAccount(db))
			}

			// Notification routes
			notifications := protected.Group("/notifications")
			{
				notifications.POST("/register-token", handlers.RegisterFCMToken(db))
				notifications.DELETE("/remove-token", handlers.RemoveFCMToken(db))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
