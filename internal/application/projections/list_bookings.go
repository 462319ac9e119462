package projections

import (
	"context"

	"academy/internal/adapters/storage/booking"
	"academy/internal/application/listutil"
	domainBooking "academy/internal/domain/booking"
)

// ListBookingsQuery carries query parameters. Empty filters match everything.
type ListBookingsQuery struct {
	UserID      string
	Status      domainBooking.Status
	PackageType domainBooking.PackageType
	Month       string
	Page        int
	PerPage     int
}

// ListBookingsResult carries one page of bookings.
type ListBookingsResult struct {
	Bookings []domainBooking.Booking
	Page     listutil.PageInfo
}

// ListBookingsDeps holds dependencies for ListBookings.
type ListBookingsDeps struct {
	BookingStore BookingStore
}

// QueryListBookings returns one page of bookings, newest first.
// PRE: none; out-of-range pages are clamped
// POST: len(Bookings) <= Page.PerPage
func QueryListBookings(ctx context.Context, query ListBookingsQuery, deps ListBookingsDeps) (ListBookingsResult, error) {
	filter := booking.ListFilter{
		UserID:      query.UserID,
		Status:      query.Status,
		PackageType: query.PackageType,
		Month:       query.Month,
	}
	total, err := deps.BookingStore.Count(ctx, filter)
	if err != nil {
		return ListBookingsResult{}, err
	}

	page := listutil.NewPageInfo(query.Page, query.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	bookings, err := deps.BookingStore.List(ctx, filter)
	if err != nil {
		return ListBookingsResult{}, err
	}
	return ListBookingsResult{Bookings: bookings, Page: page}, nil
}
