package web

import (
	"net/http"

	"academy/internal/adapters/http/middleware"
	domainAccount "academy/internal/domain/account"
)

// adminOnly wraps h so only admin sessions reach it.
func adminOnly(h http.HandlerFunc) http.Handler {
	return middleware.RequireRole(domainAccount.RoleAdmin)(h)
}

// signedIn wraps h so only authenticated sessions reach it.
func signedIn(h http.HandlerFunc) http.Handler {
	return middleware.RequireRole(domainAccount.RoleAdmin, domainAccount.RoleUser)(h)
}

// registerRoutes maps every API route. Method mismatches answer 405.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealthz)

	mux.HandleFunc("POST /api/signup", handleSignup)
	mux.HandleFunc("POST /api/login", handleLogin)
	mux.HandleFunc("POST /api/logout", handleLogout)
	mux.Handle("GET /api/me", signedIn(handleMe))

	mux.Handle("GET /api/dashboard", signedIn(handleDashboard))
	mux.Handle("GET /api/stats", adminOnly(handleStats))
	mux.HandleFunc("GET /api/availability", handleAvailability)

	mux.Handle("GET /api/bookings", adminOnly(handleListBookings))
	mux.Handle("GET /api/bookings/export", adminOnly(handleExportBookings))
	mux.Handle("GET /api/my-bookings", signedIn(handleMyBookings))
	mux.Handle("POST /api/bookings/{id}/confirm", adminOnly(handleConfirmBooking))
	mux.Handle("POST /api/bookings/{id}/cancel", signedIn(handleCancelBooking))

	mux.Handle("GET /api/wizard", signedIn(handleGetWizard))
	mux.Handle("POST /api/wizard", signedIn(handleWizardAction))
	mux.Handle("GET /api/wizard/payment-qr", signedIn(handleWizardPaymentQR))

	mux.Handle("GET /api/crm", adminOnly(handleCRM))
	mux.Handle("GET /api/users", adminOnly(handleListUsers))
	mux.Handle("POST /api/users", adminOnly(handleCreateUser))
	mux.Handle("DELETE /api/users/{id}", adminOnly(handleDeleteUser))

	mux.HandleFunc("GET /api/documents", handleListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", handleGetDocument)

	mux.Handle("GET /api/changes", signedIn(handleChanges))

	mux.Handle("GET /api/admin/perf", adminOnly(handleAdminPerf))
	mux.Handle("GET /api/admin/outbox", adminOnly(handleAdminOutbox))
	mux.Handle("POST /api/admin/outbox/{id}/{action}", adminOnly(handleAdminOutboxAction))
	mux.Handle("GET /api/admin/audit", adminOnly(handleAdminAudit))
}
