package projections

import (
	"context"
	"errors"
	"strings"
	"time"

	"academy/internal/adapters/storage/account"
	"academy/internal/adapters/storage/booking"
	domainAccount "academy/internal/domain/account"
	domainBooking "academy/internal/domain/booking"
)

var (
	fixedTime = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	errStore  = errors.New("store unavailable")
)

type mockBookingStore struct {
	bookings []domainBooking.Booking
	err      error
}

func (m *mockBookingStore) match(f booking.ListFilter) []domainBooking.Booking {
	var out []domainBooking.Booking
	for _, b := range m.bookings {
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.PackageType != "" && b.PackageType != f.PackageType {
			continue
		}
		if f.Month != "" && b.Month != f.Month {
			continue
		}
		out = append(out, b)
	}
	return out
}

// List applies the filter and pagination to the seeded bookings.
func (m *mockBookingStore) List(_ context.Context, f booking.ListFilter) ([]domainBooking.Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := m.match(f)
	if f.Offset > len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Count returns the number of matching bookings.
func (m *mockBookingStore) Count(_ context.Context, f booking.ListFilter) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.match(f)), nil
}

// BookedPlayers sums players of non-cancelled bookings in month.
func (m *mockBookingStore) BookedPlayers(_ context.Context, month string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	total := 0
	for _, b := range m.bookings {
		if b.Month == month && b.HoldsCapacity() {
			total += b.Players
		}
	}
	return total, nil
}

type mockUserStore struct {
	users []domainAccount.User
}

// List filters seeded users by role and a case-insensitive name or email search.
func (m *mockUserStore) List(_ context.Context, f account.ListFilter) ([]domainAccount.User, error) {
	q := strings.ToLower(f.Search)
	var out []domainAccount.User
	for _, u := range m.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(u.Email, q) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// Count returns the number of seeded users.
func (m *mockUserStore) Count(_ context.Context) (int, error) {
	return len(m.users), nil
}

func user(id, name, email, role string) domainAccount.User {
	return domainAccount.User{ID: id, Name: name, Email: email, Role: role, CreatedAt: fixedTime}
}

func bk(id, userID string, pkg domainBooking.PackageType, month string, players int, status domainBooking.Status, created time.Time) domainBooking.Booking {
	unit := int64(500)
	if pkg == domainBooking.PackageMonthly {
		unit = 1500
	}
	return domainBooking.Booking{
		ID:          id,
		UserID:      userID,
		UserName:    userID,
		UserEmail:   userID + "@academy.in",
		PackageType: pkg,
		Month:       month,
		Players:     players,
		Amount:      unit * int64(players),
		Status:      status,
		CreatedAt:   created,
	}
}
