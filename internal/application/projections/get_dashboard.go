package projections

import (
	"context"
	"errors"
	"time"

	"academy/internal/adapters/storage/booking"
	domainAccount "academy/internal/domain/account"
	domainBooking "academy/internal/domain/booking"
)

// Dashboard list sizes.
const (
	dashboardPendingLimit = 5
	dashboardActiveLimit  = 3
)

// ErrUserRequired is returned when a student dashboard is requested without a user.
var ErrUserRequired = errors.New("user ID is required")

// GetDashboardQuery carries query parameters.
type GetDashboardQuery struct {
	Role   string
	UserID string
}

// AdminDashboard is the admin view.
type AdminDashboard struct {
	Stats       BookingStats
	UserCount   int
	Pending     []domainBooking.Booking
	MorePending bool
}

// StudentDashboard is the view of a single athlete.
type StudentDashboard struct {
	BookingCount int
	TotalSpent   int64
	LastBooking  *domainBooking.Booking
	ActiveCount  int                     // every confirmed booking
	Active       []domainBooking.Booking // the first dashboardActiveLimit of them
}

// GetDashboardResult carries the query result. Exactly one of Admin and Student is set.
type GetDashboardResult struct {
	Admin   *AdminDashboard
	Student *StudentDashboard
}

// GetDashboardDeps holds dependencies for GetDashboard.
type GetDashboardDeps struct {
	BookingStore BookingStore
	UserStore    UserStore
	MaxPerMonth  int
}

// QueryGetDashboard builds the role-specific dashboard.
// PRE: query.Role is admin, or query.UserID is set
// POST: Admin view lists at most 5 pending bookings; student view at most 3 active ones
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps, now time.Time) (GetDashboardResult, error) {
	if query.Role == domainAccount.RoleAdmin {
		d, err := adminDashboard(ctx, deps, now)
		if err != nil {
			return GetDashboardResult{}, err
		}
		return GetDashboardResult{Admin: &d}, nil
	}
	if query.UserID == "" {
		return GetDashboardResult{}, ErrUserRequired
	}
	d, err := studentDashboard(ctx, query.UserID, deps)
	if err != nil {
		return GetDashboardResult{}, err
	}
	return GetDashboardResult{Student: &d}, nil
}

func adminDashboard(ctx context.Context, deps GetDashboardDeps, now time.Time) (AdminDashboard, error) {
	stats, err := QueryGetBookingStats(ctx, GetBookingStatsDeps{
		BookingStore: deps.BookingStore,
		MaxPerMonth:  deps.MaxPerMonth,
	}, now)
	if err != nil {
		return AdminDashboard{}, err
	}
	users, err := deps.UserStore.Count(ctx)
	if err != nil {
		return AdminDashboard{}, err
	}
	pending, err := deps.BookingStore.List(ctx, booking.ListFilter{
		Status: domainBooking.StatusPending,
		Limit:  dashboardPendingLimit,
	})
	if err != nil {
		return AdminDashboard{}, err
	}
	return AdminDashboard{
		Stats:       stats,
		UserCount:   users,
		Pending:     pending,
		MorePending: stats.Pending > dashboardPendingLimit,
	}, nil
}

func studentDashboard(ctx context.Context, userID string, deps GetDashboardDeps) (StudentDashboard, error) {
	mine, err := deps.BookingStore.List(ctx, booking.ListFilter{UserID: userID})
	if err != nil {
		return StudentDashboard{}, err
	}

	d := StudentDashboard{BookingCount: len(mine)}
	for i := range mine {
		b := mine[i]
		if d.LastBooking == nil || b.CreatedAt.After(d.LastBooking.CreatedAt) {
			d.LastBooking = &b
		}
		if b.Status != domainBooking.StatusConfirmed {
			continue
		}
		d.TotalSpent += b.Amount
		d.ActiveCount++
		if len(d.Active) < dashboardActiveLimit {
			d.Active = append(d.Active, b)
		}
	}
	return d, nil
}
