package web

import (
	"errors"
	"log/slog"
	"net/http"

	"academy/internal/adapters/http/middleware"
	"academy/internal/application/orchestrators"
	"academy/internal/domain/account"
	"academy/internal/domain/audit"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// startSession creates a session for the user and sets the cookie.
func startSession(w http.ResponseWriter, userID, name, email, role string) bool {
	token, err := sessions.Create(userID, name, email, role)
	if err != nil {
		internalError(w, err)
		return false
	}
	middleware.SetSessionCookie(w, token)
	return true
}

// handleSignup handles POST /api/signup. New athletes are signed in straight away.
func handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := strictDecode(r, &req); err != nil {
		badRequest(w, "invalid request")
		return
	}

	u, err := orchestrators.ExecuteRegisterUser(r.Context(), orchestrators.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     account.RoleUser,
	}, orchestrators.RegisterUserDeps{
		UserStore:  stores.UserStore,
		Changes:    services.Changes,
		Now:        timeNow,
		GenerateID: generateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if !startSession(w, u.ID, u.Name, u.Email, u.Role) {
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(u))
}

// handleLogin handles POST /api/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := strictDecode(r, &req); err != nil {
		badRequest(w, "invalid request")
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{
		UserStore: stores.UserStore,
		Now:       timeNow,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrInvalidCredentials) || errors.Is(err, orchestrators.ErrAccountLocked) {
			recordLoginFailure(r, req.Email, errors.Is(err, orchestrators.ErrAccountLocked))
		}
		writeError(w, err)
		return
	}

	if !startSession(w, result.UserID, result.Name, result.Email, result.Role) {
		return
	}
	if stores.AuditStore != nil {
		saveAudit(r, audit.NewEvent(generateID(), timeNow(), result.UserID, result.Email, result.Role, audit.CategorySecurity, audit.ActionLogin).
			WithResource("account", result.UserID).
			WithIP(middleware.ClientIP(r)))
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":    result.UserID,
		"name":  result.Name,
		"email": result.Email,
		"role":  result.Role,
	})
}

// handleLogout handles POST /api/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		sessions.Delete(sess.Token)
		wizards.Delete(sess.UserID)
		slog.Info("auth_event", "event", "logout", "user_id", sess.UserID)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /api/me
func handleMe(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	u, err := stores.UserStore.GetByID(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(u))
}
