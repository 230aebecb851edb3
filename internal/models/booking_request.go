package models

import (
	"time"

	"gorm.io/gorm"
)

// BookingRequest is an open service request awaiting driver applications and
// client selection. SelectedDriverID is written at most once; Closed is set
// when the request is finalized into a Booking and blocks further mutation.
type BookingRequest struct {
	gorm.Model
	ClientID         uint      `json:"clientId" gorm:"not null;index"`
	StartDate        time.Time `json:"startDate" gorm:"not null"`
	EndDate          time.Time `json:"endDate" gorm:"not null"`
	Route            string    `json:"route" gorm:"not null"`
	Requirements     string    `json:"requirements"`
	SelectedDriverID *uint     `json:"selectedDriverId,omitempty"`
	Closed           bool      `json:"closed" gorm:"not null;default:false"`

	Client         *User         `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	SelectedDriver *User         `json:"selectedDriver,omitempty" gorm:"foreignKey:SelectedDriverID"`
	Applications   []Application `json:"applications,omitempty" gorm:"foreignKey:RequestID"`
}

// TableName specifies the table name
func (BookingRequest) TableName() string {
	return "booking_requests"
}

// CandidateDriverIDs returns the applied driver ids in application order.
func (r *BookingRequest) CandidateDriverIDs() []uint {
	ids := make([]uint, 0, len(r.Applications))
	for _, a := range r.Applications {
		ids = append(ids, a.DriverID)
	}
	return ids
}

// HasCandidate reports whether the driver has applied to this request.
func (r *BookingRequest) HasCandidate(driverID uint) bool {
	for _, a := range r.Applications {
		if a.DriverID == driverID {
			return true
		}
	}
	return false
}

// Application records a driver applying to a booking request. The unique
// index makes the append idempotent at the database level.
type Application struct {
	gorm.Model
	RequestID uint  `json:"requestId" gorm:"not null;uniqueIndex:idx_applications_request_driver"`
	DriverID  uint  `json:"driverId" gorm:"not null;uniqueIndex:idx_applications_request_driver"`
	Driver    *User `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
}

// TableName specifies the table name
func (Application) TableName() string {
	return "applications"
}
