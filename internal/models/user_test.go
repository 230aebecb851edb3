package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanChangePhase(t *testing.T) {
	allowed := []struct{ from, to AccountPhase }{
		{PhaseNew, PhasePending},
		{PhaseNew, PhaseActive},
		{PhasePending, PhaseActive},
		{PhasePending, PhaseRejected},
		{PhaseActive, PhaseSuspended},
		{PhaseSuspended, PhaseActive},
		{PhaseRejected, PhasePending},
	}
	for _, tt := range allowed {
		assert.True(t, CanChangePhase(tt.from, tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	denied := []struct{ from, to AccountPhase }{
		{PhaseNew, PhaseSuspended},
		{PhaseActive, PhasePending},
		{PhaseSuspended, PhasePending},
		{PhaseRejected, PhaseActive},
		{PhaseDisabled, PhaseActive},
		{PhaseDisabled, PhasePending},
	}
	for _, tt := range denied {
		assert.False(t, CanChangePhase(tt.from, tt.to), "%s -> %s should be denied", tt.from, tt.to)
	}

	// Every phase can be disabled except the terminal disabled itself.
	for _, from := range []AccountPhase{PhaseNew, PhasePending, PhaseActive, PhaseSuspended, PhaseRejected} {
		assert.True(t, CanChangePhase(from, PhaseDisabled))
	}
}

func TestChangePhase(t *testing.T) {
	u := &User{Role: RoleDriver, Phase: PhasePending}

	require.NoError(t, u.ChangePhase(PhaseActive))
	assert.Equal(t, PhaseActive, u.Phase)

	err := u.ChangePhase(PhaseRejected)
	require.Error(t, err)
	assert.Equal(t, PhaseActive, u.Phase)
}

func TestPasswordHashing(t *testing.T) {
	u := &User{Password: "s3cret-pass"}
	require.NoError(t, u.HashPassword())
	require.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)

	assert.NoError(t, u.CheckPassword("s3cret-pass"))
	assert.Error(t, u.CheckPassword("wrong"))
}

func TestDriverSummary(t *testing.T) {
	u := &User{
		Username:        "driver-a",
		Role:            RoleDriver,
		Rating:          4.7,
		YearsExperience: 6,
		LicenseType:     "CE",
		PhotoURL:        "profiles/abc.jpg",
		VehiclePlate:    "UBF 123X",
	}
	u.ID = 42

	s := u.Summary()
	assert.Equal(t, uint(42), s.ID)
	assert.Equal(t, "driver-a", s.Username)
	assert.Equal(t, 4.7, s.Rating)
	assert.Equal(t, 6, s.YearsExperience)
	assert.Equal(t, "CE", s.LicenseType)
	assert.Equal(t, "profiles/abc.jpg", s.PhotoURL)
}
