package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusActive, BookingStatusCancelled},
	BookingStatusActive:    {BookingStatusCompleted},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidBookingStatus reports whether s is a known booking status.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusActive,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Booking is the finalized agreement between one driver and one client,
// created when the selected driver finalizes a request. The service window
// and route are copied from the originating request and never change.
type Booking struct {
	gorm.Model
	RequestID    uint          `json:"requestId" gorm:"not null;uniqueIndex"`
	DriverID     uint          `json:"driverId" gorm:"not null;index"`
	ClientID     uint          `json:"clientId" gorm:"not null;index"`
	StartDate    time.Time     `json:"startDate" gorm:"not null"`
	EndDate      time.Time     `json:"endDate" gorm:"not null"`
	Route        string        `json:"route" gorm:"not null"`
	Requirements string        `json:"requirements"`
	Status       BookingStatus `json:"status" gorm:"not null;default:'pending'"`

	Driver *User `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
	Client *User `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}
