package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"academy/internal/adapters/http/middleware"
	accountStore "academy/internal/adapters/storage/account"
	bookingStore "academy/internal/adapters/storage/booking"
	outboxStore "academy/internal/adapters/storage/outbox"
	"academy/internal/application/orchestrators"
	"academy/internal/application/projections"
	"academy/internal/domain/account"
	"academy/internal/domain/booking"
	"academy/internal/domain/capacity"
	"academy/internal/domain/document"
	"academy/internal/domain/export"
	"academy/internal/domain/pricing"
	"academy/internal/domain/wizard"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Kind: wizard.KindValidation})
}

// currentSession returns the request's session. Routes wrapped in signedIn or
// adminOnly always have one.
func currentSession(r *http.Request) middleware.Session {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return sess
}

// writeError maps domain and orchestrator errors to a status and a JSON body.
// Wizard errors keep their kind so the client can show the matching toast.
// Anything unrecognised is logged and reported as a 500.
func writeError(w http.ResponseWriter, err error) {
	status, body := errorFor(err)
	writeJSON(w, status, body)
}

// errorFor logs server-side failures and hides their detail from the client.
func errorFor(err error) (int, errorBody) {
	status, kind := classify(err)
	switch status {
	case http.StatusInternalServerError:
		slog.Error("internal_error", "error", err.Error())
		return status, errorBody{Error: "internal server error"}
	case http.StatusBadGateway:
		slog.Error("collaborator_error", "error", err.Error())
		return status, errorBody{Error: "booking service unavailable, please try again", Kind: kind}
	}
	return status, errorBody{Error: err.Error(), Kind: kind}
}

func classify(err error) (int, string) {
	switch wizard.Kind(err) {
	case wizard.KindValidation:
		return http.StatusBadRequest, wizard.KindValidation
	case wizard.KindCapacity:
		return http.StatusConflict, wizard.KindCapacity
	case wizard.KindCollaborator:
		if errors.Is(err, capacity.ErrInsufficientSlots) {
			return http.StatusConflict, wizard.KindCollaborator
		}
		return http.StatusBadGateway, wizard.KindCollaborator
	}

	switch {
	case errors.Is(err, capacity.ErrInsufficientSlots):
		return http.StatusConflict, wizard.KindCapacity
	case errors.Is(err, orchestrators.ErrUserRequired),
		errors.Is(err, orchestrators.ErrInvalidCredentials):
		return http.StatusUnauthorized, ""
	case errors.Is(err, orchestrators.ErrAccountLocked):
		return http.StatusLocked, ""
	case errors.Is(err, orchestrators.ErrAdminRequired),
		errors.Is(err, orchestrators.ErrNotOwner),
		errors.Is(err, orchestrators.ErrCannotDeleteAdmin),
		errors.Is(err, orchestrators.ErrCannotDeleteSelf):
		return http.StatusForbidden, ""
	case errors.Is(err, bookingStore.ErrNotFound),
		errors.Is(err, accountStore.ErrNotFound),
		errors.Is(err, outboxStore.ErrNotFound),
		errors.Is(err, document.ErrNotFound):
		return http.StatusNotFound, ""
	case errors.Is(err, orchestrators.ErrEmailAlreadyExists),
		errors.Is(err, booking.ErrAlreadyConfirmed),
		errors.Is(err, booking.ErrAlreadyCancelled),
		errors.Is(err, booking.ErrCancelled),
		errors.Is(err, booking.ErrStatusChanged),
		errors.Is(err, orchestrators.ErrOutboxEntryClosed):
		return http.StatusConflict, ""
	case isValidation(err):
		return http.StatusBadRequest, wizard.KindValidation
	}
	return http.StatusInternalServerError, ""
}

var validationErrors = []error{
	account.ErrEmptyName, account.ErrNameTooLong, account.ErrEmailTooLong, account.ErrInvalidEmail, account.ErrEmptyEmail,
	account.ErrInvalidRole, account.ErrEmptyPassword, account.ErrPasswordTooShort,
	booking.ErrInvalidMonth, booking.ErrInvalidPackageType, booking.ErrInvalidPlayers,
	pricing.ErrUnknownPackage, pricing.ErrInvalidPlayers,
	export.ErrInvalidFormat,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// handleHealthz handles GET /healthz
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if _, err := stores.UserStore.Count(r.Context()); err != nil {
		slog.Error("healthz_failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// views ---------------------------------------------------------------------

// userView is a user without credentials.
type userView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	Initials  string    `json:"initials"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserView(u account.User) userView {
	return userView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Verified:  u.Verified,
		Initials:  u.Initials(),
		CreatedAt: u.CreatedAt,
	}
}

type bookingView struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	UserName     string     `json:"user_name"`
	UserEmail    string     `json:"user_email"`
	PackageType  string     `json:"package_type"`
	PackageLabel string     `json:"package_label"`
	Month        string     `json:"month"`
	MonthLabel   string     `json:"month_label"`
	Players      int        `json:"players"`
	Amount       int64      `json:"amount"`
	AmountText   string     `json:"amount_text"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
}

func toBookingView(b booking.Booking) bookingView {
	v := bookingView{
		ID:           b.ID,
		UserID:       b.UserID,
		UserName:     b.UserName,
		UserEmail:    b.UserEmail,
		PackageType:  string(b.PackageType),
		PackageLabel: b.Label(),
		Month:        b.Month,
		MonthLabel:   booking.FormatMonth(b.Month),
		Players:      b.Players,
		Amount:       b.Amount,
		AmountText:   pricing.FormatCurrency(b.Amount),
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
	}
	if !b.ConfirmedAt.IsZero() {
		t := b.ConfirmedAt
		v.ConfirmedAt = &t
	}
	return v
}

func toBookingViews(bs []booking.Booking) []bookingView {
	out := make([]bookingView, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingView(b))
	}
	return out
}

type statsView struct {
	projections.BookingStats
	RevenueText string `json:"revenue_text"`
}

func toStatsView(s projections.BookingStats) statsView {
	return statsView{BookingStats: s, RevenueText: pricing.FormatCurrency(s.Revenue)}
}
