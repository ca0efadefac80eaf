package domain

import "time"

type OtpRecord struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Code       string    `json:"-"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}
