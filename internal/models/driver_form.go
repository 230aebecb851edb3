package models

import (
	"time"

	"gorm.io/gorm"
)

type FormStatus string

const (
	FormStatusPending  FormStatus = "pending"
	FormStatusApproved FormStatus = "approved"
	FormStatusRejected FormStatus = "rejected"
)

// DriverForm is a driver's registration form. The account stays in the
// pending phase until an admin approves the form.
type DriverForm struct {
	gorm.Model
	DriverID        uint       `json:"driverId" gorm:"not null;index"`
	LicenseNumber   string     `json:"licenseNumber" gorm:"not null"`
	LicenseType     string     `json:"licenseType" gorm:"not null"`
	YearsExperience int        `json:"yearsExperience" gorm:"not null"`
	VehicleMake     string     `json:"vehicleMake"`
	VehiclePlate    string     `json:"vehiclePlate"`
	LicensePhotoURL string     `json:"licensePhotoUrl"`
	Status          FormStatus `json:"status" gorm:"not null;default:'pending'"`
	AdminID         *uint      `json:"adminId,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	RejectReason    string     `json:"rejectReason,omitempty"`

	Driver *User `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
	Admin  *User `json:"admin,omitempty" gorm:"foreignKey:AdminID"`
}

// TableName specifies the table name
func (DriverForm) TableName() string {
	return "driver_forms"
}
