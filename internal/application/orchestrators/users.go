package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"academy/internal/adapters/changefeed"
	"academy/internal/domain/account"
)

// UserStoreForRegister defines the store interface needed by RegisterUser and SeedAdmin.
type UserStoreForRegister interface {
	GetByEmail(ctx context.Context, email string) (account.User, error)
	Save(ctx context.Context, u account.User) error
	Count(ctx context.Context) (int, error)
}

// RegisterUserInput carries input for signup or an admin adding an athlete.
type RegisterUserInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string // empty means RoleUser
}

// RegisterUserDeps holds dependencies for RegisterUser.
type RegisterUserDeps struct {
	UserStore  UserStoreForRegister
	Changes    ChangePublisher
	Now        func() time.Time
	GenerateID func() string
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteRegisterUser creates a user with a hashed password.
// PRE: Name, email and a password of at least 8 characters
// POST: User stored; email is unique
func ExecuteRegisterUser(ctx context.Context, input RegisterUserInput, deps RegisterUserDeps) (account.User, error) {
	role := input.Role
	if role == "" {
		role = account.RoleUser
	}
	u := account.User{
		ID:        idOr(deps.GenerateID),
		Name:      strings.TrimSpace(input.Name),
		Email:     account.NormalizeEmail(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		Role:      role,
		CreatedAt: nowOr(deps.Now),
	}
	if err := u.Validate(); err != nil {
		return account.User{}, err
	}
	if err := u.SetPassword(input.Password); err != nil {
		return account.User{}, err
	}

	if _, err := deps.UserStore.GetByEmail(ctx, u.Email); err == nil {
		return account.User{}, ErrEmailAlreadyExists
	}
	if err := deps.UserStore.Save(ctx, u); err != nil {
		return account.User{}, err
	}

	slog.Info("auth_event", "event", "user_registered", "user_id", u.ID, "email", u.Email, "role", u.Role)
	publishUserChange(ctx, deps.Changes, changefeed.Event{Kind: changefeed.KindUserCreated, UserID: u.ID, At: u.CreatedAt})
	return u, nil
}

// ExecuteSeedAdmin creates the academy admin if no users exist yet.
// PRE: Database is initialized
// POST: Admin created if count == 0; otherwise nothing changes
func ExecuteSeedAdmin(ctx context.Context, deps RegisterUserDeps, name, email, password string) error {
	count, err := deps.UserStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := ExecuteRegisterUser(ctx, RegisterUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     account.RoleAdmin,
	}, deps); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}

// UserStoreForDelete defines the store interface needed by DeleteUser.
type UserStoreForDelete interface {
	GetByID(ctx context.Context, id string) (account.User, error)
	Delete(ctx context.Context, id string) error
}

// DeleteUserInput identifies the user to remove and the admin removing them.
type DeleteUserInput struct {
	UserID    string
	ActorID   string
	ActorRole string
}

// DeleteUserDeps holds dependencies for DeleteUser.
type DeleteUserDeps struct {
	UserStore UserStoreForDelete
	Changes   ChangePublisher
	Now       func() time.Time
}

var (
	ErrCannotDeleteAdmin = errors.New("admin accounts cannot be deleted")
	ErrCannotDeleteSelf  = errors.New("you cannot delete your own account")
)

// ExecuteDeleteUser removes an athlete and, through the store, their bookings.
// PRE: Actor is an admin
// POST: User and their bookings removed
// INVARIANT: Admin accounts are never deleted
func ExecuteDeleteUser(ctx context.Context, input DeleteUserInput, deps DeleteUserDeps) error {
	if input.ActorRole != account.RoleAdmin {
		return ErrAdminRequired
	}
	if input.UserID == input.ActorID {
		return ErrCannotDeleteSelf
	}
	u, err := deps.UserStore.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if u.IsAdmin() {
		return ErrCannotDeleteAdmin
	}
	if err := deps.UserStore.Delete(ctx, u.ID); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "user_deleted", "user_id", u.ID, "email", u.Email, "admin_id", input.ActorID)
	publishUserChange(ctx, deps.Changes, changefeed.Event{Kind: changefeed.KindUserDeleted, UserID: u.ID, At: nowOr(deps.Now)})
	return nil
}

// publishUserChange is best effort; a lost event only delays dashboard refreshes.
func publishUserChange(ctx context.Context, feed ChangePublisher, e changefeed.Event) {
	if feed == nil {
		return
	}
	if err := feed.Publish(ctx, e); err != nil {
		slog.Warn("changefeed_publish_failed", "kind", e.Kind, "user_id", e.UserID, "error", err)
	}
}
