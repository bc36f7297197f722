package users

import "time"

// User is an application account. Staff-flagged users receive the
// operational notifications emitted by the invoice sweeps.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateUserInput for provisioning accounts.
type CreateUserInput struct {
	Email        string
	FullName     string
	PasswordHash string
	IsStaff      bool
}
