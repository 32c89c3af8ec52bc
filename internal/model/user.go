package model

import (
	"errors"
	"time"
)

// User represents an account that can post reports.
type User struct {
	ID                   int64      `db:"id" json:"id"`
	Username             string     `db:"username" json:"username"`
	Email                string     `db:"email" json:"email"`
	PasswordHash         string     `db:"password_hash" json:"-"`
	IsVerified           bool       `db:"is_verified" json:"isVerified"`
	Role                 string     `db:"role" json:"role"`
	ResetPasswordToken   *string    `db:"reset_password_token" json:"-"`
	ResetPasswordExpires *time.Time `db:"reset_password_expires" json:"-"`
	CreatedAt            time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updatedAt"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// MinPasswordLength is the shortest password accepted for new credentials.
const MinPasswordLength = 8

// ErrPasswordTooShort is returned by ValidatePassword.
var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// ValidatePassword checks the password policy for new credentials.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
