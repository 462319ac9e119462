package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	MaxNameLength  = 100
	MinPassword    = 8
)

// Role constants
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// VIPThreshold is the confirmed spend above which an athlete is tagged VIP in the CRM.
const VIPThreshold int64 = 1000

// Domain errors
var (
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrNameTooLong      = errors.New("name cannot exceed 100 characters")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidRole      = errors.New("role must be one of: admin, user")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrWrongPassword    = errors.New("incorrect password")
)

// User is an athlete or an academy admin.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         string
	Verified     bool
	CreatedAt    time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// Validate checks if the User has valid data.
// PRE: User struct is populated
// POST: Returns nil if valid, error otherwise
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if len(u.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	if len(u.Email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if u.Role != RoleAdmin && u.Role != RoleUser {
		return ErrInvalidRole
	}
	return nil
}

// NormalizeEmail lowercases and trims an email for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is non-empty and >= 8 characters
// POST: PasswordHash is set to bcrypt hash
func (u *User) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < MinPassword {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: User fields are not mutated
func (u *User) CheckPassword(plaintext string) error {
	if u.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked returns true if the user is currently locked out.
// INVARIANT: User fields are not mutated
func (u *User) IsLocked(now time.Time) bool {
	if u.LockedUntil.IsZero() {
		return false
	}
	return now.Before(u.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the user after 5 failures.
// POST: FailedLogins incremented; LockedUntil set if >= 5 failures
func (u *User) RecordFailedLogin(now time.Time) {
	u.FailedLogins++
	if u.FailedLogins >= 5 {
		u.LockedUntil = now.Add(15 * time.Minute)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
func (u *User) ResetFailedLogins() {
	u.FailedLogins = 0
	u.LockedUntil = time.Time{}
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// MarkVerified records that an admin has verified one of the user's payments.
func (u *User) MarkVerified() {
	u.Verified = true
}

// Initials returns up to two uppercase initials for avatar badges.
func (u *User) Initials() string {
	var out []rune
	for _, part := range strings.Fields(u.Name) {
		out = append(out, []rune(strings.ToUpper(part))[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}
