package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateDriverIDs(t *testing.T) {
	r := &BookingRequest{
		Applications: []Application{
			{RequestID: 1, DriverID: 30},
			{RequestID: 1, DriverID: 10},
			{RequestID: 1, DriverID: 20},
		},
	}

	assert.Equal(t, []uint{30, 10, 20}, r.CandidateDriverIDs())
	assert.True(t, r.HasCandidate(10))
	assert.False(t, r.HasCandidate(99))

	empty := &BookingRequest{}
	assert.Empty(t, empty.CandidateDriverIDs())
	assert.False(t, empty.HasCandidate(10))
}
