package model

import "time"

// User can sign in to the private hub
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-" masq:"secret"`
	CreatedAt    time.Time `json:"created_at"`
}
