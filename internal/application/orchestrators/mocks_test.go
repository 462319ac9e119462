package orchestrators

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"academy/internal/adapters/changefeed"
	emailAdapter "academy/internal/adapters/email"
	"academy/internal/adapters/events"
	"academy/internal/domain/account"
	"academy/internal/domain/booking"
	"academy/internal/domain/capacity"
	"academy/internal/domain/outbox"
	"academy/internal/domain/pricing"
)

var errNotFound = errors.New("not found")

var fixedTime = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

var testPrices = pricing.UnitPrices{Weekly: 500, Monthly: 1500}

// sequentialIDs returns a generator yielding prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}

// mockBookingStore is an in-memory booking store that enforces capacity like the sqlite one.
type mockBookingStore struct {
	mu       sync.Mutex
	bookings map[string]booking.Booking
	failNext error
}

func newMockBookingStore(existing ...booking.Booking) *mockBookingStore {
	m := &mockBookingStore{bookings: make(map[string]booking.Booking)}
	for _, b := range existing {
		m.bookings[b.ID] = b
	}
	return m
}

func (m *mockBookingStore) GetByID(_ context.Context, id string) (booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return booking.Booking{}, errNotFound
	}
	return b, nil
}

func (m *mockBookingStore) Save(_ context.Context, b booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
	return nil
}

func (m *mockBookingStore) UpdateStatus(_ context.Context, id string, from, to booking.Status, confirmedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return errNotFound
	}
	if b.Status != from {
		return booking.ErrStatusChanged
	}
	b.Status = to
	if !confirmedAt.IsZero() {
		b.ConfirmedAt = confirmedAt
	}
	m.bookings[id] = b
	return nil
}

func (m *mockBookingStore) all() []booking.Booking {
	var out []booking.Booking
	for _, b := range m.bookings {
		out = append(out, b)
	}
	return out
}

func (m *mockBookingStore) BookedPlayers(_ context.Context, month string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return capacity.BookedPlayers(m.all(), month), nil
}

func (m *mockBookingStore) InsertWithinCapacity(_ context.Context, b booking.Booking, maxPerMonth int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	if capacity.AvailableSlots(m.all(), b.Month, maxPerMonth) < b.Players {
		return capacity.ErrInsufficientSlots
	}
	m.bookings[b.ID] = b
	return nil
}

// mockUserStore implements every user store interface the orchestrators need.
type mockUserStore struct {
	users map[string]account.User
}

func newMockUserStore(users ...account.User) *mockUserStore {
	m := &mockUserStore{users: make(map[string]account.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserStore) GetByID(_ context.Context, id string) (account.User, error) {
	u, ok := m.users[id]
	if !ok {
		return account.User{}, errNotFound
	}
	return u, nil
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (account.User, error) {
	for _, u := range m.users {
		if u.Email == account.NormalizeEmail(email) {
			return u, nil
		}
	}
	return account.User{}, errNotFound
}

func (m *mockUserStore) Save(_ context.Context, u account.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserStore) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserStore) Count(_ context.Context) (int, error) {
	return len(m.users), nil
}

// mockOutboxStore records saved entries.
type mockOutboxStore struct {
	entries map[string]outbox.Entry
	order   []string
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: make(map[string]outbox.Entry)}
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, errNotFound
	}
	return e, nil
}

func (m *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	if _, ok := m.entries[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, id := range m.order {
		e := m.entries[id]
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockOutboxStore) only() outbox.Entry {
	if len(m.order) != 1 {
		return outbox.Entry{}
	}
	return m.entries[m.order[0]]
}

// failingMailer fails every send with err.
type failingMailer struct{ err error }

func (f failingMailer) Send(context.Context, emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	return emailAdapter.SendResult{}, f.err
}

// failingPublisher fails every publish.
type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, events.BookingEvent) error {
	return errors.New("broker unavailable")
}

// recordingFeed captures change events.
type recordingFeed struct{ events []changefeed.Event }

func (r *recordingFeed) Publish(_ context.Context, e changefeed.Event) error {
	r.events = append(r.events, e)
	return nil
}

func athlete(id, name string) account.User {
	return account.User{ID: id, Name: name, Email: id + "@x.in", Role: account.RoleUser, CreatedAt: fixedTime}
}

func bookingFor(id, userID, month string, players int, status booking.Status) booking.Booking {
	return booking.Booking{
		ID:          id,
		UserID:      userID,
		UserName:    "Athlete " + userID,
		UserEmail:   userID + "@x.in",
		PackageType: booking.PackageMonthly,
		Month:       month,
		Players:     players,
		Amount:      int64(players) * 1500,
		Status:      status,
		CreatedAt:   fixedTime,
	}
}
