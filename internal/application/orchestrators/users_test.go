package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"academy/internal/adapters/changefeed"
	"academy/internal/domain/account"
)

func registerDeps(store *mockUserStore) RegisterUserDeps {
	return RegisterUserDeps{UserStore: store, Now: fixedNow, GenerateID: sequentialIDs("user")}
}

// TestExecuteRegisterUser_Valid tests signup normalizes the email and hashes the password.
func TestExecuteRegisterUser_Valid(t *testing.T) {
	store := newMockUserStore()
	feed := &recordingFeed{}
	deps := registerDeps(store)
	deps.Changes = feed

	u, err := ExecuteRegisterUser(context.Background(), RegisterUserInput{
		Name: " Asha Rao ", Email: "Asha@Example.in", Phone: "98765 43210", Password: "hoops-2025",
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteRegisterUser: %v", err)
	}
	if u.Name != "Asha Rao" || u.Email != "asha@example.in" || u.Role != account.RoleUser {
		t.Errorf("user = %+v", u)
	}
	if u.PasswordHash == "" || u.CheckPassword("hoops-2025") != nil {
		t.Error("password not hashed")
	}
	if len(feed.events) != 1 || feed.events[0].Kind != changefeed.KindUserCreated {
		t.Errorf("events = %+v", feed.events)
	}
}

// TestExecuteRegisterUser_Rejections tests required fields and duplicate emails.
func TestExecuteRegisterUser_Rejections(t *testing.T) {
	existing := athlete("u1", "Asha")
	store := newMockUserStore(existing)
	deps := registerDeps(store)

	tests := []struct {
		name  string
		input RegisterUserInput
		want  error
	}{
		{"missing name", RegisterUserInput{Email: "a@x.in", Password: "password1"}, account.ErrEmptyName},
		{"missing email", RegisterUserInput{Name: "A", Password: "password1"}, account.ErrEmptyEmail},
		{"short password", RegisterUserInput{Name: "A", Email: "new@x.in", Password: "short"}, account.ErrPasswordTooShort},
		{"duplicate", RegisterUserInput{Name: "A", Email: "U1@x.in", Password: "password1"}, ErrEmailAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExecuteRegisterUser(context.Background(), tt.input, deps); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestExecuteSeedAdmin tests the admin is only created into an empty store.
func TestExecuteSeedAdmin(t *testing.T) {
	store := newMockUserStore()
	deps := registerDeps(store)
	ctx := context.Background()

	if err := ExecuteSeedAdmin(ctx, deps, "Academy Admin", "admin@x.in", "change-me-admin"); err != nil {
		t.Fatalf("ExecuteSeedAdmin: %v", err)
	}
	if err := ExecuteSeedAdmin(ctx, deps, "Other", "other@x.in", "change-me-admin"); err != nil {
		t.Fatalf("second ExecuteSeedAdmin: %v", err)
	}
	if len(store.users) != 1 {
		t.Fatalf("users = %d, want 1", len(store.users))
	}
	u, _ := store.GetByEmail(ctx, "admin@x.in")
	if !u.IsAdmin() {
		t.Errorf("seeded user role = %q", u.Role)
	}
}

// TestExecuteDeleteUser tests admin protection and self-deletion.
func TestExecuteDeleteUser(t *testing.T) {
	admin := athlete("admin", "Admin")
	admin.Role = account.RoleAdmin
	other := athlete("admin2", "Second Admin")
	other.Role = account.RoleAdmin
	store := newMockUserStore(admin, other, athlete("u1", "Asha"))
	deps := DeleteUserDeps{UserStore: store, Now: fixedNow}
	ctx := context.Background()

	tests := []struct {
		name  string
		input DeleteUserInput
		want  error
	}{
		{"not admin", DeleteUserInput{UserID: "u1", ActorID: "u2", ActorRole: account.RoleUser}, ErrAdminRequired},
		{"self", DeleteUserInput{UserID: "admin", ActorID: "admin", ActorRole: account.RoleAdmin}, ErrCannotDeleteSelf},
		{"other admin", DeleteUserInput{UserID: "admin2", ActorID: "admin", ActorRole: account.RoleAdmin}, ErrCannotDeleteAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ExecuteDeleteUser(ctx, tt.input, deps); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if err := ExecuteDeleteUser(ctx, DeleteUserInput{UserID: "u1", ActorID: "admin", ActorRole: account.RoleAdmin}, deps); err != nil {
		t.Fatalf("delete athlete: %v", err)
	}
	if _, ok := store.users["u1"]; ok {
		t.Error("athlete still present")
	}
}

// TestExecuteLogin tests success, wrong password lockout, and unknown email.
func TestExecuteLogin(t *testing.T) {
	u := athlete("u1", "Asha")
	if err := u.SetPassword("correct-horse"); err != nil {
		t.Fatal(err)
	}
	store := newMockUserStore(u)
	now := fixedTime
	deps := LoginDeps{UserStore: store, Now: func() time.Time { return now }}
	ctx := context.Background()

	res, err := ExecuteLogin(ctx, LoginInput{Email: "U1@x.in", Password: "correct-horse"}, deps)
	if err != nil || res.UserID != "u1" || res.Role != account.RoleUser {
		t.Fatalf("login = %+v, %v", res, err)
	}

	if _, err := ExecuteLogin(ctx, LoginInput{Email: "nobody@x.in", Password: "x"}, deps); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := ExecuteLogin(ctx, LoginInput{Email: "u1@x.in", Password: "wrong"}, deps); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d err = %v", i, err)
		}
	}
	if _, err := ExecuteLogin(ctx, LoginInput{Email: "u1@x.in", Password: "correct-horse"}, deps); !errors.Is(err, ErrAccountLocked) {
		t.Errorf("locked err = %v", err)
	}

	now = fixedTime.Add(16 * time.Minute)
	if _, err := ExecuteLogin(ctx, LoginInput{Email: "u1@x.in", Password: "correct-horse"}, deps); err != nil {
		t.Errorf("login after lock expiry: %v", err)
	}
	if store.users["u1"].FailedLogins != 0 {
		t.Error("failed logins not reset")
	}
}

// failingFeed rejects every publish.
type failingFeed struct{}

func (failingFeed) Publish(context.Context, changefeed.Event) error {
	return errors.New("redis: connection refused")
}

// TestExecuteRegisterUser_FeedFailureLogged tests signup succeeds and logs when the change feed is down.
func TestExecuteRegisterUser_FeedFailureLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	deps := registerDeps(newMockUserStore())
	deps.Changes = failingFeed{}
	if _, err := ExecuteRegisterUser(context.Background(), RegisterUserInput{
		Name: "Ravi", Email: "ravi@example.in", Password: "hoops-2025",
	}, deps); err != nil {
		t.Fatalf("ExecuteRegisterUser: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "changefeed_publish_failed") || !strings.Contains(out, "kind=user.created") {
		t.Errorf("log = %q", out)
	}
}
