package projections

import (
	"context"
	"math"
	"time"

	"academy/internal/adapters/storage/booking"
	domainBooking "academy/internal/domain/booking"
)

// BookingStats is the admin summary of every booking.
type BookingStats struct {
	Total            int   `json:"total"`
	Pending          int   `json:"pending"`
	Confirmed        int   `json:"confirmed"`
	Cancelled        int   `json:"cancelled"`
	Revenue          int64 `json:"revenue"`            // sum of confirmed amounts
	ThisMonthPlayers int   `json:"this_month_players"` // confirmed players in the current month
	OccupancyPercent int   `json:"occupancy_percent"`
	MonthlyConfirmed int   `json:"monthly_confirmed"`
	WeeklyConfirmed  int   `json:"weekly_confirmed"`
}

// ComputeBookingStats reduces bookings to summary figures for month.
// PRE: maxPerMonth >= 0
// POST: 0 <= OccupancyPercent <= 100; Pending+Confirmed+Cancelled == Total for valid statuses
// INVARIANT: bookings is not mutated, so repeated calls on the same input are equal
func ComputeBookingStats(bookings []domainBooking.Booking, month string, maxPerMonth int) BookingStats {
	var s BookingStats
	for i := range bookings {
		b := &bookings[i]
		s.Total++
		switch b.Status {
		case domainBooking.StatusPending:
			s.Pending++
		case domainBooking.StatusCancelled:
			s.Cancelled++
		case domainBooking.StatusConfirmed:
			s.Confirmed++
			s.Revenue += b.Amount
			if b.Month == month {
				s.ThisMonthPlayers += b.Players
			}
			switch b.PackageType {
			case domainBooking.PackageMonthly:
				s.MonthlyConfirmed++
			case domainBooking.PackageWeekly:
				s.WeeklyConfirmed++
			}
		}
	}
	s.OccupancyPercent = occupancy(s.ThisMonthPlayers, maxPerMonth)
	return s
}

func occupancy(players, maxPerMonth int) int {
	if maxPerMonth <= 0 {
		return 0
	}
	pct := int(math.Round(float64(players) / float64(maxPerMonth) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

// GetBookingStatsDeps holds dependencies for GetBookingStats.
type GetBookingStatsDeps struct {
	BookingStore BookingStore
	MaxPerMonth  int
}

// QueryGetBookingStats loads every booking and summarises it for the month containing now.
// PRE: deps.BookingStore is set
// POST: Returns ComputeBookingStats over all stored bookings
func QueryGetBookingStats(ctx context.Context, deps GetBookingStatsDeps, now time.Time) (BookingStats, error) {
	all, err := deps.BookingStore.List(ctx, booking.ListFilter{})
	if err != nil {
		return BookingStats{}, err
	}
	return ComputeBookingStats(all, domainBooking.MonthOf(now), deps.MaxPerMonth), nil
}
