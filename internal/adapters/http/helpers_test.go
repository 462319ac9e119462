package web

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"academy/internal/adapters/changefeed"
	"academy/internal/adapters/http/perf"
	"academy/internal/adapters/storage"
	accountStore "academy/internal/adapters/storage/account"
	auditStore "academy/internal/adapters/storage/audit"
	bookingStore "academy/internal/adapters/storage/booking"
	outboxStore "academy/internal/adapters/storage/outbox"
	"academy/internal/application/orchestrators"
	"academy/internal/config"
)

var fixedNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

const (
	adminEmail    = "admin@dribbleground.in"
	adminPassword = "admin-password"
)

// testApp is a running server over a fresh database.
type testApp struct {
	t        *testing.T
	srv      *httptest.Server
	stores   *Stores
	feed     *changefeed.Memory
	mu       sync.Mutex
	handoffs []string
}

func testConfig() config.Config {
	return config.Config{
		Env:                "test",
		MaxPlayersPerMonth: 10,
		PriceWeekly:        500,
		PriceMonthly:       1500,
		UPIID:              "dribbleground@upi",
		PayeeName:          "DribbleGround",
		AdminEmail:         adminEmail,
		SlowRequest:        time.Second,
	}
}

// newTestApp starts a server with cfg. timeNow is pinned to fixedNow for the test.
func newTestApp(t *testing.T, cfg config.Config) *testApp {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}

	s := &Stores{
		UserStore:    accountStore.NewSQLiteStore(db),
		BookingStore: bookingStore.NewSQLiteStore(db),
		OutboxStore:  outboxStore.NewSQLiteStore(db),
		AuditStore:   auditStore.NewSQLiteStore(db),
	}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), orchestrators.RegisterUserDeps{UserStore: s.UserStore},
		"Academy Admin", adminEmail, adminPassword); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	prevNow, prevRate := timeNow, RateLimitPerSecond
	timeNow = func() time.Time { return fixedNow }
	RateLimitPerSecond = 10000
	t.Cleanup(func() {
		timeNow = prevNow
		RateLimitPerSecond = prevRate
	})

	app := &testApp{t: t, stores: s, feed: changefeed.NewMemory()}
	mux := NewMux("", s, Services{
		Changes: app.feed,
		ScheduleHandoff: func(bookingID, athleteName string) error {
			app.mu.Lock()
			defer app.mu.Unlock()
			app.handoffs = append(app.handoffs, bookingID+"|"+athleteName)
			return nil
		},
	}, cfg, perf.NewCollector(100))

	app.srv = httptest.NewServer(mux)
	t.Cleanup(app.srv.Close)
	return app
}

// client returns an HTTP client with its own cookie jar.
func (a *testApp) client() *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		a.t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
func (a *testApp) do(c *http.Client, method, path string, body, out any) int {
	a.t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rdr)
	if err != nil {
		a.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, out); err != nil {
			a.t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode
}

func (a *testApp) admin() *http.Client {
	a.t.Helper()
	c := a.client()
	if code := a.do(c, "POST", "/api/login", credentialsRequest{Email: adminEmail, Password: adminPassword}, nil); code != http.StatusOK {
		a.t.Fatalf("admin login = %d", code)
	}
	return c
}

// athlete signs up a new athlete and returns their client and user ID.
func (a *testApp) athlete(name, email string) (*http.Client, string) {
	a.t.Helper()
	c := a.client()
	var u userView
	code := a.do(c, "POST", "/api/signup", credentialsRequest{Name: name, Email: email, Phone: "9876543210", Password: "password123"}, &u)
	if code != http.StatusCreated {
		a.t.Fatalf("signup %s = %d", email, code)
	}
	return c, u.ID
}

func (a *testApp) wizard(c *http.Client, req wizardActionRequest) (int, wizardView) {
	a.t.Helper()
	var body struct {
		wizardView
		Error  string     `json:"error"`
		Kind   string     `json:"kind"`
		Wizard wizardView `json:"wizard"`
	}
	code := a.do(c, "POST", "/api/wizard", req, &body)
	if code != http.StatusOK {
		a.t.Logf("wizard %s: %d %s (%s)", req.Action, code, body.Error, body.Kind)
		return code, body.Wizard
	}
	return code, body.wizardView
}

// book drives the wizard from a fresh start to a confirmed booking of players.
func (a *testApp) book(c *http.Client, pkg string, players int) wizardView {
	a.t.Helper()
	steps := []wizardActionRequest{
		{Action: orchestrators.ActionReset},
		{Action: orchestrators.ActionSelectType, PackageType: pkg},
	}
	if players > 1 {
		steps = append(steps, wizardActionRequest{Action: orchestrators.ActionAdjustPlayers, Delta: players - 1})
	}
	steps = append(steps,
		wizardActionRequest{Action: orchestrators.ActionGoTo, Step: 3},
		wizardActionRequest{Action: orchestrators.ActionConfirm},
	)
	var v wizardView
	for _, s := range steps {
		var code int
		if code, v = a.wizard(c, s); code != http.StatusOK {
			a.t.Fatalf("wizard %s = %d", s.Action, code)
		}
	}
	return v
}
