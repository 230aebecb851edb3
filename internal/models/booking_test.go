package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to BookingStatus }{
		{BookingStatusPending, BookingStatusConfirmed},
		{BookingStatusPending, BookingStatusCancelled},
		{BookingStatusConfirmed, BookingStatusActive},
		{BookingStatusConfirmed, BookingStatusCancelled},
		{BookingStatusActive, BookingStatusCompleted},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	denied := []struct{ from, to BookingStatus }{
		{BookingStatusPending, BookingStatusActive},
		{BookingStatusPending, BookingStatusCompleted},
		{BookingStatusActive, BookingStatusCancelled},
		{BookingStatusCompleted, BookingStatusActive},
		{BookingStatusCancelled, BookingStatusPending},
		{BookingStatusConfirmed, BookingStatusPending},
	}
	for _, tt := range denied {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s should be denied", tt.from, tt.to)
	}

	// Terminal statuses have no outgoing edges at all.
	for _, terminal := range []BookingStatus{BookingStatusCompleted, BookingStatusCancelled} {
		for _, to := range []BookingStatus{
			BookingStatusPending, BookingStatusConfirmed, BookingStatusActive,
			BookingStatusCompleted, BookingStatusCancelled,
		} {
			assert.False(t, CanTransition(terminal, to))
		}
	}
}

func TestValidBookingStatus(t *testing.T) {
	for _, s := range []BookingStatus{
		BookingStatusPending, BookingStatusConfirmed, BookingStatusActive,
		BookingStatusCompleted, BookingStatusCancelled,
	} {
		assert.True(t, ValidBookingStatus(s))
	}
	assert.False(t, ValidBookingStatus("paused"))
	assert.False(t, ValidBookingStatus(""))
}
