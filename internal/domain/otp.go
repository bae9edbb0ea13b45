package domain

import "time"

// OTP is a one-time password-reset code. Storage keeps at most one row per
// user; issuing a new code replaces the previous one.
type OTP struct {
	OTPID     string    `json:"id" dynamodbav:"otp_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Code      string    `json:"-" dynamodbav:"code"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"expires_at"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	// Attempts counts wrong codes submitted against this OTP.
	Attempts int `json:"-" dynamodbav:"attempts"`
	// TTL mirrors ExpiresAt as Unix seconds for the DynamoDB TTL sweeper.
	TTL int64 `json:"-" dynamodbav:"ttl"`
}

// Expired reports whether the code is past its expiry at now.
func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// OTPPurpose selects the wording of the message that carries a code.
type OTPPurpose int

const (
	OTPPurposeReset OTPPurpose = iota
	OTPPurposeSignup
)
