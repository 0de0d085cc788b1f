package models

import "time"

// OTP is a pending e-mail verification code. At most one exists per email.
type OTP struct {
	Email     string    `json:"email"`
	CodeHash  string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (o OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
