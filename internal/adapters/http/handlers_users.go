package web

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	accountStore "academy/internal/adapters/storage/account"
	"academy/internal/application/listutil"
	"academy/internal/application/orchestrators"
	"academy/internal/application/projections"
	"academy/internal/domain/account"
	"academy/internal/domain/audit"
	"academy/internal/domain/pricing"
)

type crmRowView struct {
	UserID         string     `json:"user_id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Initials       string     `json:"initials"`
	Verified       bool       `json:"verified"`
	JoinedAt       time.Time  `json:"joined_at"`
	BookingCount   int        `json:"booking_count"`
	TotalSpent     int64      `json:"total_spent"`
	TotalSpentText string     `json:"total_spent_text"`
	LastActivity   *time.Time `json:"last_activity,omitempty"`
	VIP            bool       `json:"vip"`
}

// handleCRM handles GET /api/crm?q=
func handleCRM(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetCRM(r.Context(), projections.GetCRMQuery{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
	}, projections.GetCRMDeps{
		UserStore:    stores.UserStore,
		BookingStore: stores.BookingStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	rows := make([]crmRowView, 0, len(res.Rows))
	for _, row := range res.Rows {
		v := crmRowView{
			UserID:         row.UserID,
			Name:           row.Name,
			Email:          row.Email,
			Phone:          row.Phone,
			Initials:       row.Initials,
			Verified:       row.Verified,
			JoinedAt:       row.JoinedAt,
			BookingCount:   row.BookingCount,
			TotalSpent:     row.TotalSpent,
			TotalSpentText: pricing.FormatCurrency(row.TotalSpent),
			VIP:            row.VIP,
		}
		if !row.LastActivity.IsZero() {
			last := row.LastActivity
			v.LastActivity = &last
		}
		rows = append(rows, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

var userFilters = map[string][]string{
	"role": {account.RoleAdmin, account.RoleUser},
}

type userListView struct {
	Users []userView        `json:"users"`
	Page  listutil.PageInfo `json:"page"`
}

// handleListUsers handles GET /api/users?role=&q=&page=&per_page=
func handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := listutil.ParsePageParams(q)
	filters := listutil.ParseFilters(q, userFilters)

	users, err := stores.UserStore.List(r.Context(), accountStore.ListFilter{
		Role:   filters["role"],
		Search: strings.TrimSpace(q.Get("q")),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	info := listutil.NewPageInfo(page.Page, page.PerPage, len(users))
	start := min(info.Offset(), len(users))
	end := min(start+info.PerPage, len(users))

	views := make([]userView, 0, end-start)
	for _, u := range users[start:end] {
		views = append(views, toUserView(u))
	}
	writeJSON(w, http.StatusOK, userListView{Users: views, Page: info})
}

// handleCreateUser handles POST /api/users. Admins register athletes on their behalf.
func handleCreateUser(w http.ResponseWriter, r *http.Request) {
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
	slog.Info("auth_event", "event", "user_created_by_admin", "user_id", u.ID, "admin_id", currentSession(r).UserID)
	recordAudit(r, audit.CategoryAccount, audit.ActionCreate, "account", u.ID, u.Email)
	writeJSON(w, http.StatusCreated, toUserView(u))
}

// handleDeleteUser handles DELETE /api/users/{id}. The athlete's sessions and wizard go with them.
// POST: 204 on success; bookings cascade in storage
func handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	userID := r.PathValue("id")
	err := orchestrators.ExecuteDeleteUser(r.Context(), orchestrators.DeleteUserInput{
		UserID:    userID,
		ActorID:   sess.UserID,
		ActorRole: sess.Role,
	}, orchestrators.DeleteUserDeps{
		UserStore: stores.UserStore,
		Changes:   services.Changes,
		Now:       timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	dropped := sessions.DeleteUser(userID)
	wizards.Delete(userID)
	slog.Info("auth_event", "event", "sessions_revoked", "user_id", userID, "count", dropped)
	recordAudit(r, audit.CategoryAccount, audit.ActionDelete, "account", userID, "")
	w.WriteHeader(http.StatusNoContent)
}
