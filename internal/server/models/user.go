package models

import "time"

// User is an account row. PasswordHash is the encoded argon2id hash
// produced by cryptox.HashPassword.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
