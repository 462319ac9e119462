package booking

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/booking"
	"academy/internal/domain/capacity"
)

func newTestStore(t *testing.T) (*SQLiteStore, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}
	for _, id := range []string{"u1", "u2"} {
		if _, err := db.Exec(`INSERT INTO user_account (id, name, email, role, created_at) VALUES (?, ?, ?, 'user', '2025-05-01T00:00:00Z')`,
			id, "Player "+id, id+"@x.in"); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return NewSQLiteStore(db), db
}

func sample(id, userID, month string, players int) domain.Booking {
	return domain.Booking{
		ID:          id,
		UserID:      userID,
		UserName:    "Player " + userID,
		UserEmail:   userID + "@x.in",
		PackageType: domain.PackageMonthly,
		Month:       month,
		Players:     players,
		Amount:      int64(players) * 1500,
		Status:      domain.StatusPending,
		CreatedAt:   time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC),
	}
}

// TestInsertWithinCapacity_Accounting verifies 10 free slots become 6 after a 4-player booking.
func TestInsertWithinCapacity_Accounting(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	booked, err := store.BookedPlayers(ctx, "2025-06")
	if err != nil || booked != 0 {
		t.Fatalf("BookedPlayers = %d, %v", booked, err)
	}
	if err := store.InsertWithinCapacity(ctx, sample("b1", "u1", "2025-06", 4), 10); err != nil {
		t.Fatalf("InsertWithinCapacity: %v", err)
	}
	booked, _ = store.BookedPlayers(ctx, "2025-06")
	if got := capacity.Remaining(booked, 10); got != 6 {
		t.Errorf("remaining = %d, want 6", got)
	}
}

// TestInsertWithinCapacity_Rejects verifies an over-capacity insert writes nothing.
func TestInsertWithinCapacity_Rejects(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.InsertWithinCapacity(ctx, sample("b1", "u1", "2025-06", 8), 10); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := store.InsertWithinCapacity(ctx, sample("b2", "u2", "2025-06", 3), 10)
	if !errors.Is(err, capacity.ErrInsufficientSlots) {
		t.Fatalf("err = %v, want ErrInsufficientSlots", err)
	}
	if _, err := store.GetByID(ctx, "b2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("rejected booking was stored: %v", err)
	}
	// Other months are unaffected.
	if err := store.InsertWithinCapacity(ctx, sample("b3", "u2", "2025-07", 3), 10); err != nil {
		t.Errorf("other month insert: %v", err)
	}
}

// TestInsertWithinCapacity_CancelledFreesSlots verifies cancelled bookings do not hold capacity.
func TestInsertWithinCapacity_CancelledFreesSlots(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	b := sample("b1", "u1", "2025-06", 10)
	if err := store.InsertWithinCapacity(ctx, b, 10); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := b.Cancel(); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, b); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.InsertWithinCapacity(ctx, sample("b2", "u2", "2025-06", 10), 10); err != nil {
		t.Errorf("insert after cancel: %v", err)
	}
}

// TestInsertWithinCapacity_Concurrent verifies racing inserts never overbook a month.
func TestInsertWithinCapacity_Concurrent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			if err := store.InsertWithinCapacity(ctx, sample(id, "u1", "2025-06", 3), 10); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if accepted != 3 {
		t.Errorf("accepted = %d, want 3", accepted)
	}
	booked, _ := store.BookedPlayers(ctx, "2025-06")
	if booked > 10 {
		t.Errorf("booked = %d exceeds capacity", booked)
	}
}

// TestSave_RoundTripsConfirmation verifies status and confirmation time persist.
func TestSave_RoundTripsConfirmation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	b := sample("b1", "u1", "2025-06", 2)
	if err := store.InsertWithinCapacity(ctx, b, 10); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 5, 21, 9, 30, 0, 0, time.UTC)
	if err := b.Confirm(now); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetByID(ctx, "b1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.StatusConfirmed || !got.ConfirmedAt.Equal(now) {
		t.Errorf("got status %q at %v", got.Status, got.ConfirmedAt)
	}
	if got.PackageType != domain.PackageMonthly || got.Amount != 3000 {
		t.Errorf("got %+v", got)
	}
}

// TestUpdateStatus_Guarded verifies a status change only applies while the row holds the expected status.
func TestUpdateStatus_Guarded(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.InsertWithinCapacity(ctx, sample("b1", "u1", "2025-06", 10), 10); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateStatus(ctx, "b1", domain.StatusPending, domain.StatusCancelled, time.Time{}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// A confirm that read the booking while it was still pending.
	confirmedAt := time.Date(2025, 5, 21, 9, 30, 0, 0, time.UTC)
	err := store.UpdateStatus(ctx, "b1", domain.StatusPending, domain.StatusConfirmed, confirmedAt)
	if !errors.Is(err, domain.ErrStatusChanged) {
		t.Fatalf("stale confirm err = %v, want ErrStatusChanged", err)
	}
	got, _ := store.GetByID(ctx, "b1")
	if got.Status != domain.StatusCancelled || !got.ConfirmedAt.IsZero() {
		t.Errorf("after stale confirm = %q at %v", got.Status, got.ConfirmedAt)
	}

	// The freed slots can be rebooked and the month stays within capacity.
	if err := store.InsertWithinCapacity(ctx, sample("b2", "u2", "2025-06", 10), 10); err != nil {
		t.Fatalf("rebook: %v", err)
	}
	if n, _ := store.BookedPlayers(ctx, "2025-06"); n != 10 {
		t.Errorf("booked = %d, want 10", n)
	}

	if err := store.UpdateStatus(ctx, "b2", domain.StatusPending, domain.StatusConfirmed, confirmedAt); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	got, _ = store.GetByID(ctx, "b2")
	if got.Status != domain.StatusConfirmed || !got.ConfirmedAt.Equal(confirmedAt) {
		t.Errorf("b2 = %q at %v", got.Status, got.ConfirmedAt)
	}

	if err := store.UpdateStatus(ctx, "missing", domain.StatusPending, domain.StatusCancelled, time.Time{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
}

// TestListAndCount_Filters verifies filtering and pagination.
func TestListAndCount_Filters(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for i, row := range []struct {
		user  string
		month string
	}{{"u1", "2025-06"}, {"u1", "2025-07"}, {"u2", "2025-06"}} {
		b := sample(string(rune('a'+i)), row.user, row.month, 1)
		b.CreatedAt = b.CreatedAt.Add(time.Duration(i) * time.Hour)
		if err := store.InsertWithinCapacity(ctx, b, 10); err != nil {
			t.Fatal(err)
		}
	}

	mine, err := store.List(ctx, ListFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != "b" {
		t.Errorf("u1 bookings = %+v, want newest first", mine)
	}
	if n, _ := store.Count(ctx, ListFilter{Month: "2025-06"}); n != 2 {
		t.Errorf("Count(June) = %d, want 2", n)
	}
	page, _ := store.List(ctx, ListFilter{Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].ID != "b" {
		t.Errorf("page = %+v", page)
	}
	if n, _ := store.Count(ctx, ListFilter{Status: domain.StatusConfirmed}); n != 0 {
		t.Errorf("Count(confirmed) = %d, want 0", n)
	}
}

// TestDeleteUser_CascadesBookings verifies removing a user removes their bookings.
func TestDeleteUser_CascadesBookings(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	if err := store.InsertWithinCapacity(ctx, sample("b1", "u1", "2025-06", 2), 10); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("DELETE FROM user_account WHERE id = 'u1'"); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.Count(ctx, ListFilter{}); n != 0 {
		t.Errorf("Count = %d after user delete, want 0", n)
	}
}
