package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	web "academy/internal/adapters/http"
	"academy/internal/adapters/http/perf"
	"academy/internal/adapters/storage"
	accountStore "academy/internal/adapters/storage/account"
	auditStore "academy/internal/adapters/storage/audit"
	bookingStore "academy/internal/adapters/storage/booking"
	outboxStore "academy/internal/adapters/storage/outbox"
	"academy/internal/application/orchestrators"
	"academy/internal/config"
)

const (
	adminEmail    = "admin@test.com"
	adminPassword = "TestPass123!"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  *web.Stores
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	stores := &web.Stores{
		UserStore:    accountStore.NewSQLiteStore(db),
		BookingStore: bookingStore.NewSQLiteStore(db),
		OutboxStore:  outboxStore.NewSQLiteStore(db),
		AuditStore:   auditStore.NewSQLiteStore(db),
	}
	seedDeps := orchestrators.RegisterUserDeps{UserStore: stores.UserStore}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, "Test Admin", adminEmail, adminPassword); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	// Change to project root so the relative static path works
	projectRoot := findProjectRoot(t)
	origDir, _ := os.Getwd()
	if err := os.Chdir(projectRoot); err != nil {
		t.Fatalf("failed to chdir to project root: %v", err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	web.TrustedOrigins = append(web.TrustedOrigins,
		fmt.Sprintf("127.0.0.1:%d", port),
		fmt.Sprintf("localhost:%d", port),
	)
	web.RateLimitPerSecond = 1000

	cfg := config.Config{
		Env:                "test",
		MaxPlayersPerMonth: 10,
		PriceWeekly:        500,
		PriceMonthly:       1500,
		UPIID:              "dribbleground@upi",
		PayeeName:          "DribbleGround",
		AdminEmail:         adminEmail,
	}
	mux := web.NewMux("static", stores, web.Services{}, cfg, perf.NewCollector(1000))
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return app
}

// newPage creates a new page in its own browser context, so cookies are not shared.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	bctx, err := a.Browser.NewContext()
	if err != nil {
		t.Fatalf("failed to create browser context: %v", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { bctx.Close() })
	return page
}

func (a *testApp) open(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/"); err != nil {
		t.Fatalf("failed to open app: %v", err)
	}
}

// login signs in through the login form and waits for the dashboard.
func (a *testApp) login(t *testing.T, page playwright.Page, email, password string) {
	t.Helper()
	a.open(t, page)
	fill(t, page, "#login-form input[name=email]", email)
	fill(t, page, "#login-form input[name=password]", password)
	click(t, page, "#login-form button[type=submit]")
	waitVisible(t, page, "#view-dashboard .card")
}

// signup registers an athlete through the signup form and waits for the dashboard.
func (a *testApp) signup(t *testing.T, page playwright.Page, name, email string) {
	t.Helper()
	a.open(t, page)
	fill(t, page, "#signup-form input[name=name]", name)
	fill(t, page, "#signup-form input[name=email]", email)
	fill(t, page, "#signup-form input[name=password]", "password123")
	click(t, page, "#signup-form button[type=submit]")
	waitVisible(t, page, "#view-dashboard .card")
}

func fill(t *testing.T, page playwright.Page, selector, value string) {
	t.Helper()
	if err := page.Locator(selector).Fill(value); err != nil {
		t.Fatalf("fill %s: %v", selector, err)
	}
}

func click(t *testing.T, page playwright.Page, selector string) {
	t.Helper()
	if err := page.Locator(selector).First().Click(); err != nil {
		t.Fatalf("click %s: %v", selector, err)
	}
}

func waitVisible(t *testing.T, page playwright.Page, selector string) {
	t.Helper()
	if err := page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("%s not visible: %v", selector, err)
	}
}

func text(t *testing.T, page playwright.Page, selector string) string {
	t.Helper()
	s, err := page.Locator(selector).First().TextContent()
	if err != nil {
		t.Fatalf("text %s: %v", selector, err)
	}
	return s
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}
