package projections

import (
	"context"
	"time"

	"academy/internal/adapters/storage/account"
	"academy/internal/adapters/storage/booking"
	domainAccount "academy/internal/domain/account"
	domainBooking "academy/internal/domain/booking"
)

// GetCRMQuery carries query parameters.
type GetCRMQuery struct {
	Search string
}

// CRMRow is one athlete in the CRM table.
type CRMRow struct {
	UserID       string
	Name         string
	Email        string
	Phone        string
	Initials     string
	Verified     bool
	JoinedAt     time.Time
	BookingCount int
	TotalSpent   int64
	LastActivity time.Time // zero when the athlete has never booked
	VIP          bool
}

// GetCRMResult carries the query result.
type GetCRMResult struct {
	Rows []CRMRow
}

// GetCRMDeps holds dependencies for GetCRM.
type GetCRMDeps struct {
	UserStore    UserStore
	BookingStore BookingStore
}

// QueryGetCRM lists athletes with their booking totals.
// PRE: none
// POST: Admin accounts are never listed; VIP is TotalSpent > VIPThreshold
func QueryGetCRM(ctx context.Context, query GetCRMQuery, deps GetCRMDeps) (GetCRMResult, error) {
	users, err := deps.UserStore.List(ctx, account.ListFilter{
		Role:   domainAccount.RoleUser,
		Search: query.Search,
	})
	if err != nil {
		return GetCRMResult{}, err
	}
	bookings, err := deps.BookingStore.List(ctx, booking.ListFilter{})
	if err != nil {
		return GetCRMResult{}, err
	}

	byUser := make(map[string][]domainBooking.Booking)
	for _, b := range bookings {
		byUser[b.UserID] = append(byUser[b.UserID], b)
	}

	rows := make([]CRMRow, 0, len(users))
	for i := range users {
		u := &users[i]
		row := CRMRow{
			UserID:   u.ID,
			Name:     u.Name,
			Email:    u.Email,
			Phone:    u.Phone,
			Initials: u.Initials(),
			Verified: u.Verified,
			JoinedAt: u.CreatedAt,
		}
		for _, b := range byUser[u.ID] {
			row.BookingCount++
			if b.Status == domainBooking.StatusConfirmed {
				row.TotalSpent += b.Amount
			}
			if b.CreatedAt.After(row.LastActivity) {
				row.LastActivity = b.CreatedAt
			}
		}
		row.VIP = row.TotalSpent > domainAccount.VIPThreshold
		rows = append(rows, row)
	}
	return GetCRMResult{Rows: rows}, nil
}
