package utils

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"
)

const (
	// OTPLength is the number of digits in a generated code. Six digits
	// keeps the guess space large enough for a 15-minute window.
	OTPLength = 6

	OTPExpiration = 15 * time.Minute
)

// GenerateOTP derives a 6-digit code from the given unique key. The key
// must change with each request (email + timestamp) so repeated requests
// produce different codes.
func GenerateOTP(uniqueKey string) string {
	sum := sha256.Sum256([]byte(uniqueKey))
	num := binary.BigEndian.Uint32(sum[:4])

	otp := 100000 + (num % 900000)
	return fmt.Sprintf("%0*d", OTPLength, otp)
}

// SendPasswordResetOTP sends the code via email and, when a phone number
// is on file, via SMS as well
func SendPasswordResetOTP(email, phone, otp string) error {
	if err := SendPasswordResetEmail(email, otp); err != nil {
		return fmt.Errorf("failed to send OTP via email: %v", err)
	}

	if phone != "" {
		if err := SendPasswordResetSMS(phone, otp); err != nil {
			return fmt.Errorf("failed to send OTP via SMS: %v", err)
		}
	}

	return nil
}
