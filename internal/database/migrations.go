package database

import (
	"github.com/drivelink/drivelink-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.BookingRequest{},
		&models.Application{},
		&models.Booking{},
		&models.DriverForm{},
		&models.OTP{},
	)
	if err != nil {
		return err
	}

	// Constrain role and phase to the known values
	if db.Migrator().HasTable(&models.User{}) {
		db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`)
		db.Exec(`ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('client', 'driver', 'admin'))`)
		db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_phase_check`)
		db.Exec(`ALTER TABLE users ADD CONSTRAINT users_phase_check CHECK (phase IN ('new', 'pending', 'active', 'suspended', 'disabled', 'rejected'))`)
	}

	// Selection is guarded by a conditional update; the check below keeps a
	// bad write from ever closing a request without a selected driver.
	if db.Migrator().HasTable(&models.Booking{}) {
		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`)
		db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('pending', 'confirmed', 'active', 'completed', 'cancelled'))`)
	}
	if db.Migrator().HasTable(&models.BookingRequest{}) {
		db.Exec(`ALTER TABLE booking_requests DROP CONSTRAINT IF EXISTS booking_requests_closed_check`)
		db.Exec(`ALTER TABLE booking_requests ADD CONSTRAINT booking_requests_closed_check CHECK (NOT closed OR selected_driver_id IS NOT NULL)`)
	}

	return nil
}
