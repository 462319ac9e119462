package projections

import (
	"context"
	"strconv"
	"testing"

	domainBooking "academy/internal/domain/booking"
)

// TestQueryListBookings_Pagination tests page metadata and slicing.
func TestQueryListBookings_Pagination(t *testing.T) {
	store := &mockBookingStore{}
	for i := 0; i < 25; i++ {
		store.bookings = append(store.bookings,
			bk("b"+strconv.Itoa(i), "u1", domainBooking.PackageWeekly, "2025-06", 1, domainBooking.StatusPending, fixedTime))
	}

	res, err := QueryListBookings(context.Background(), ListBookingsQuery{Page: 2, PerPage: 10}, ListBookingsDeps{BookingStore: store})
	if err != nil {
		t.Fatalf("QueryListBookings: %v", err)
	}
	if res.Page.Total != 25 || res.Page.TotalPages != 3 || res.Page.Page != 2 {
		t.Errorf("page = %+v", res.Page)
	}
	if len(res.Bookings) != 10 || res.Bookings[0].ID != "b10" {
		t.Errorf("bookings = %d, first = %s", len(res.Bookings), res.Bookings[0].ID)
	}

	res, err = QueryListBookings(context.Background(), ListBookingsQuery{Page: 9, PerPage: 10}, ListBookingsDeps{BookingStore: store})
	if err != nil {
		t.Fatalf("QueryListBookings: %v", err)
	}
	if res.Page.Page != 3 || len(res.Bookings) != 5 {
		t.Errorf("clamped page = %d, bookings = %d", res.Page.Page, len(res.Bookings))
	}
}

// TestQueryListBookings_Filters tests that filters reach the store.
func TestQueryListBookings_Filters(t *testing.T) {
	store := &mockBookingStore{bookings: []domainBooking.Booking{
		bk("b1", "u1", domainBooking.PackageWeekly, "2025-06", 1, domainBooking.StatusPending, fixedTime),
		bk("b2", "u1", domainBooking.PackageMonthly, "2025-06", 1, domainBooking.StatusConfirmed, fixedTime),
		bk("b3", "u2", domainBooking.PackageMonthly, "2025-07", 1, domainBooking.StatusConfirmed, fixedTime),
	}}
	deps := ListBookingsDeps{BookingStore: store}

	tests := []struct {
		name  string
		query ListBookingsQuery
		want  int
	}{
		{"all", ListBookingsQuery{}, 3},
		{"by user", ListBookingsQuery{UserID: "u1"}, 2},
		{"by status", ListBookingsQuery{Status: domainBooking.StatusConfirmed}, 2},
		{"by package", ListBookingsQuery{PackageType: domainBooking.PackageWeekly}, 1},
		{"by month", ListBookingsQuery{Month: "2025-07"}, 1},
		{"combined", ListBookingsQuery{UserID: "u1", Status: domainBooking.StatusConfirmed}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := QueryListBookings(context.Background(), tt.query, deps)
			if err != nil {
				t.Fatalf("QueryListBookings: %v", err)
			}
			if len(res.Bookings) != tt.want || res.Page.Total != tt.want {
				t.Errorf("got %d bookings (total %d), want %d", len(res.Bookings), res.Page.Total, tt.want)
			}
		})
	}
}
