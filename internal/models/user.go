package models

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AccountRole string

const (
	RoleClient AccountRole = "client"
	RoleDriver AccountRole = "driver"
	RoleAdmin  AccountRole = "admin"
)

// AccountPhase is the lifecycle phase of an account. A single phase enum is
// shared by all roles; drivers start in "pending" until an admin approves
// their registration form, clients start in "active".
type AccountPhase string

const (
	PhaseNew       AccountPhase = "new"
	PhasePending   AccountPhase = "pending"
	PhaseActive    AccountPhase = "active"
	PhaseSuspended AccountPhase = "suspended"
	PhaseDisabled  AccountPhase = "disabled"
	PhaseRejected  AccountPhase = "rejected"
)

var phaseTransitions = map[AccountPhase][]AccountPhase{
	PhaseNew:       {PhasePending, PhaseActive, PhaseDisabled},
	PhasePending:   {PhaseActive, PhaseRejected, PhaseDisabled},
	PhaseActive:    {PhaseSuspended, PhaseDisabled},
	PhaseSuspended: {PhaseActive, PhaseDisabled},
	PhaseRejected:  {PhasePending, PhaseDisabled},
}

// CanChangePhase reports whether an account may move from one phase to another.
func CanChangePhase(from, to AccountPhase) bool {
	for _, next := range phaseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type User struct {
	gorm.Model
	Username     string       `gorm:"column:username;uniqueIndex;not null" json:"username"`
	Email        string       `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password     string       `gorm:"-:all" json:"-"`
	PasswordHash string       `gorm:"column:password_hash;not null" json:"-"`
	PhoneNumber  string       `gorm:"column:phone_number" json:"phoneNumber"`
	Role         AccountRole  `gorm:"column:role;not null" json:"role"`
	Phase        AccountPhase `gorm:"column:phase;not null;default:'new'" json:"phase"`
	IsVerified   bool         `gorm:"column:is_verified;not null;default:false" json:"isVerified"`
	FCMToken     string       `gorm:"column:fcm_token" json:"-"`

	// Driver profile fields, empty for clients and admins.
	Rating          float64 `gorm:"column:rating;default:0" json:"rating,omitempty"`
	YearsExperience int     `gorm:"column:years_experience;default:0" json:"yearsExperience,omitempty"`
	LicenseType     string  `gorm:"column:license_type" json:"licenseType,omitempty"`
	PhotoURL        string  `gorm:"column:photo_url" json:"photoUrl,omitempty"`
	VehicleMake     string  `gorm:"column:vehicle_make" json:"vehicleMake,omitempty"`
	VehiclePlate    string  `gorm:"column:vehicle_plate" json:"vehiclePlate,omitempty"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// ChangePhase moves the account to a new phase, rejecting edges that are not
// in the transition table.
func (u *User) ChangePhase(to AccountPhase) error {
	if !CanChangePhase(u.Phase, to) {
		return fmt.Errorf("account phase cannot change from %s to %s", u.Phase, to)
	}
	u.Phase = to
	return nil
}

// DriverSummary is the public view of a driver shown to clients when they
// review candidates.
type DriverSummary struct {
	ID              uint    `json:"id"`
	Username        string  `json:"username"`
	Rating          float64 `json:"rating"`
	YearsExperience int     `json:"yearsExperience"`
	LicenseType     string  `json:"licenseType"`
	PhotoURL        string  `json:"photoUrl,omitempty"`
}

// Summary builds the public driver view for candidate listings.
func (u *User) Summary() DriverSummary {
	return DriverSummary{
		ID:              u.ID,
		Username:        u.Username,
		Rating:          u.Rating,
		YearsExperience: u.YearsExperience,
		LicenseType:     u.LicenseType,
		PhotoURL:        u.PhotoURL,
	}
}
