package web

import (
	"log/slog"
	"net/http"

	bookingStore "academy/internal/adapters/storage/booking"
	"academy/internal/application/listutil"
	"academy/internal/application/orchestrators"
	"academy/internal/application/projections"
	"academy/internal/domain/audit"
	"academy/internal/domain/booking"
	"academy/internal/domain/export"
	"academy/internal/domain/pricing"
)

type adminDashboardView struct {
	Role        string        `json:"role"`
	Stats       statsView     `json:"stats"`
	UserCount   int           `json:"user_count"`
	Pending     []bookingView `json:"pending"`
	MorePending bool          `json:"more_pending"`
}

type studentDashboardView struct {
	Role           string        `json:"role"`
	BookingCount   int           `json:"booking_count"`
	TotalSpent     int64         `json:"total_spent"`
	TotalSpentText string        `json:"total_spent_text"`
	LastBooking    *bookingView  `json:"last_booking"`
	ActiveCount    int           `json:"active_count"`
	Active         []bookingView `json:"active"`
}

// handleDashboard handles GET /api/dashboard. The view depends on the session role.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	res, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{
		Role:   sess.Role,
		UserID: sess.UserID,
	}, projections.GetDashboardDeps{
		BookingStore: stores.BookingStore,
		UserStore:    stores.UserStore,
		MaxPerMonth:  settings.MaxPlayersPerMonth,
	}, timeNow())
	if err != nil {
		writeError(w, err)
		return
	}

	if a := res.Admin; a != nil {
		writeJSON(w, http.StatusOK, adminDashboardView{
			Role:        sess.Role,
			Stats:       toStatsView(a.Stats),
			UserCount:   a.UserCount,
			Pending:     toBookingViews(a.Pending),
			MorePending: a.MorePending,
		})
		return
	}

	s := res.Student
	view := studentDashboardView{
		Role:           sess.Role,
		BookingCount:   s.BookingCount,
		TotalSpent:     s.TotalSpent,
		TotalSpentText: pricing.FormatCurrency(s.TotalSpent),
		ActiveCount:    s.ActiveCount,
		Active:         toBookingViews(s.Active),
	}
	if s.LastBooking != nil {
		last := toBookingView(*s.LastBooking)
		view.LastBooking = &last
	}
	writeJSON(w, http.StatusOK, view)
}

// handleStats handles GET /api/stats
func handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := projections.QueryGetBookingStats(r.Context(), projections.GetBookingStatsDeps{
		BookingStore: stores.BookingStore,
		MaxPerMonth:  settings.MaxPlayersPerMonth,
	}, timeNow())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsView(stats))
}

// handleAvailability handles GET /api/availability?month=YYYY-MM. The month defaults to the current one.
func handleAvailability(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = booking.MonthOf(timeNow())
	}
	a, err := projections.QueryGetAvailability(r.Context(), month, projections.GetAvailabilityDeps{
		BookingStore: stores.BookingStore,
		MaxPerMonth:  settings.MaxPlayersPerMonth,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type bookingListView struct {
	Bookings []bookingView     `json:"bookings"`
	Page     listutil.PageInfo `json:"page"`
}

var bookingFilters = map[string][]string{
	"status":  {string(booking.StatusPending), string(booking.StatusConfirmed), string(booking.StatusCancelled)},
	"package": {string(booking.PackageWeekly), string(booking.PackageMonthly)},
	"month":   nil,
	"user_id": nil,
}

// listBookings runs the paginated booking query; userID, when set, overrides the filter.
func listBookings(w http.ResponseWriter, r *http.Request, userID string) {
	q := r.URL.Query()
	page := listutil.ParsePageParams(q)
	filters := listutil.ParseFilters(q, bookingFilters)
	if userID == "" {
		userID = filters["user_id"]
	}
	if m := filters["month"]; m != "" {
		if _, err := booking.ParseMonth(m); err != nil {
			writeError(w, err)
			return
		}
	}

	res, err := projections.QueryListBookings(r.Context(), projections.ListBookingsQuery{
		UserID:      userID,
		Status:      booking.Status(filters["status"]),
		PackageType: booking.PackageType(filters["package"]),
		Month:       filters["month"],
		Page:        page.Page,
		PerPage:     page.PerPage,
	}, projections.ListBookingsDeps{BookingStore: stores.BookingStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingListView{Bookings: toBookingViews(res.Bookings), Page: res.Page})
}

// handleListBookings handles GET /api/bookings for admins.
func handleListBookings(w http.ResponseWriter, r *http.Request) {
	listBookings(w, r, "")
}

// handleMyBookings handles GET /api/my-bookings
func handleMyBookings(w http.ResponseWriter, r *http.Request) {
	listBookings(w, r, currentSession(r).UserID)
}

func updateInput(r *http.Request) orchestrators.UpdateBookingInput {
	sess := currentSession(r)
	return orchestrators.UpdateBookingInput{
		BookingID: r.PathValue("id"),
		ActorID:   sess.UserID,
		ActorRole: sess.Role,
	}
}

// handleConfirmBooking handles POST /api/bookings/{id}/confirm
func handleConfirmBooking(w http.ResponseWriter, r *http.Request) {
	b, err := orchestrators.ExecuteConfirmBooking(r.Context(), updateInput(r), orchestrators.ConfirmBookingDeps{
		BookingStore: stores.BookingStore,
		UserStore:    stores.UserStore,
		Outbox:       stores.OutboxStore,
		Notifier:     notifier(),
		Now:          timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	recordAudit(r, audit.CategoryBooking, audit.ActionConfirm, "booking", b.ID, b.Label()+" for "+b.UserName)
	writeJSON(w, http.StatusOK, toBookingView(b))
}

// handleCancelBooking handles POST /api/bookings/{id}/cancel. Athletes may cancel their own bookings.
func handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	b, err := orchestrators.ExecuteCancelBooking(r.Context(), updateInput(r), orchestrators.CancelBookingDeps{
		BookingStore: stores.BookingStore,
		Notifier:     notifier(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	recordAudit(r, audit.CategoryBooking, audit.ActionCancel, "booking", b.ID, b.Label()+" for "+b.UserName)
	writeJSON(w, http.StatusOK, toBookingView(b))
}

// handleExportBookings handles GET /api/bookings/export?format=csv|json plus the list filters.
// Every matching booking is written, newest first, with no paging.
func handleExportBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, err)
		return
	}
	filters := listutil.ParseFilters(q, bookingFilters)
	if m := filters["month"]; m != "" {
		if _, err := booking.ParseMonth(m); err != nil {
			writeError(w, err)
			return
		}
	}

	bs, err := stores.BookingStore.List(r.Context(), bookingStore.ListFilter{
		UserID:      filters["user_id"],
		Status:      booking.Status(filters["status"]),
		PackageType: booking.PackageType(filters["package"]),
		Month:       filters["month"],
	})
	if err != nil {
		writeError(w, err)
		return
	}

	report := export.NewReport(bs, format, filters["month"], timeNow())
	w.Header().Set("Content-Type", report.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.FileName()+`"`)
	w.Header().Set("Cache-Control", "no-store")
	if err := report.Write(w); err != nil {
		slog.Error("export_write_failed", "format", format, "error", err)
		return
	}
	slog.Info("booking_event", "event", "bookings_exported", "admin_id", currentSession(r).UserID, "format", format, "count", len(bs))
}
