package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOTP(t *testing.T) {
	otp := GenerateOTP("user@example.com-20260829120000")

	assert.Len(t, otp, OTPLength)
	for _, r := range otp {
		assert.True(t, r >= '0' && r <= '9', "OTP must be numeric, got %q", otp)
	}

	// Same key yields the same code; a different key yields a different one.
	assert.Equal(t, otp, GenerateOTP("user@example.com-20260829120000"))
	assert.NotEqual(t, otp, GenerateOTP("user@example.com-20260829120001"))
}
