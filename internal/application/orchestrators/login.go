package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"academy/internal/domain/account"
)

// UserStoreForLogin defines the store interface needed by Login.
type UserStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.User, error)
	Save(ctx context.Context, u account.User) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries what the session needs after a successful login.
type LoginResult struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	UserStore UserStoreForLogin
	Now       func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked after too many failed attempts, try again in 15 minutes")
)

// ExecuteLogin validates credentials and returns user info for session creation.
// PRE: Valid email and password provided
// POST: Returns user info on success, records failed login on failure
// INVARIANT: A locked user cannot log in until the lock expires
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	email := account.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	u, err := deps.UserStore.GetByEmail(ctx, email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	now := nowOr(deps.Now)
	if u.IsLocked(now) {
		slog.Info("auth_event", "event", "login_blocked", "email", email, "reason", "locked")
		return LoginResult{}, ErrAccountLocked
	}

	if err := u.CheckPassword(input.Password); err != nil {
		u.RecordFailedLogin(now)
		_ = deps.UserStore.Save(ctx, u)
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_password", "failed_logins", u.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	if u.FailedLogins > 0 {
		u.ResetFailedLogins()
		_ = deps.UserStore.Save(ctx, u)
	}

	slog.Info("auth_event", "event", "login_success", "email", email, "role", u.Role)
	return LoginResult{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}, nil
}
