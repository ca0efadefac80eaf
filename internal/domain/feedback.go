package domain

import "time"

type Feedback struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	FormType  string    `json:"formtype"`
	Content   string    `json:"content"`
	Consent   bool      `json:"consent"`
	CreatedAt time.Time `json:"created_at"`
}
