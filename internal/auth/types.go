package auth

import (
	"errors"
	"regexp"
	"time"
)

// emailPattern is a deliberately loose format check: something before an @,
// something after, no whitespace. Real validation happens when mail is sent.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

// maxEmailLength caps stored email addresses.
const maxEmailLength = 254

// IsValidEmail checks if an email address meets format requirements.
func IsValidEmail(email string) bool {
	return len(email) <= maxEmailLength && emailPattern.MatchString(email)
}

// Identity represents a registered account. Each identity is also a tenant:
// all resources it creates are scoped to its ID.
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // never serialised
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrTokenInvalid       = errors.New("invalid token")
)
