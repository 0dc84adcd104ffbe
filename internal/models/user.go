package models

import "time"

type User struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	Tokens    int       `json:"tokens"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTokens reports whether the user can pay for one generation.
func (u *User) HasTokens() bool {
	return u.Tokens >= 1
}
