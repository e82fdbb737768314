package models

import "time"

// User represents a merchant account holder
type User struct {
	ID           string    `json:"id" db:"id" example:"5f0c6a52-1c1e-4c4a-9d43-1a2b3c4d5e6f"` // User ID
	Email        string    `json:"email" db:"email" example:"seller@example.com"`               // User email
	FullName     string    `json:"fullName" db:"full_name" example:"홍길동"`                       // Display name
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
