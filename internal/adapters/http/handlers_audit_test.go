package web

import (
	"net/http"
	"testing"

	"academy/internal/domain/audit"
)

type auditList struct {
	Events []audit.Event `json:"events"`
}

// TestAdminAudit_RecordsBookingDecisions verifies confirm and cancel leave a trail tied to the booking.
func TestAdminAudit_RecordsBookingDecisions(t *testing.T) {
	app := newTestApp(t, testConfig())
	admin := app.admin()
	asha, _ := app.athlete("Asha", "asha@example.in")
	first := app.book(asha, "weekly", 1).BookingID
	second := app.book(asha, "monthly", 2).BookingID

	if code := app.do(admin, "POST", "/api/bookings/"+first+"/confirm", nil, nil); code != http.StatusOK {
		t.Fatalf("confirm = %d", code)
	}
	if code := app.do(admin, "POST", "/api/bookings/"+second+"/cancel", nil, nil); code != http.StatusOK {
		t.Fatalf("cancel = %d", code)
	}

	var got auditList
	if code := app.do(admin, "GET", "/api/admin/audit?resource_id="+first, nil, &got); code != http.StatusOK {
		t.Fatalf("audit = %d", code)
	}
	if len(got.Events) != 1 {
		t.Fatalf("events for %s = %+v", first, got.Events)
	}
	e := got.Events[0]
	if e.Action != audit.ActionConfirm || e.Category != audit.CategoryBooking || e.ActorEmail != adminEmail {
		t.Errorf("event = %+v", e)
	}
	if e.Severity != audit.SeverityInfo || e.ResourceType != "booking" {
		t.Errorf("severity/resource = %q/%q", e.Severity, e.ResourceType)
	}

	app.do(admin, "GET", "/api/admin/audit?action=cancel", nil, &got)
	if len(got.Events) != 1 || got.Events[0].ResourceID != second {
		t.Errorf("cancel events = %+v", got.Events)
	}
}

// TestAdminAudit_RecordsLogins verifies successful and failed logins under the security category.
func TestAdminAudit_RecordsLogins(t *testing.T) {
	app := newTestApp(t, testConfig())
	admin := app.admin()

	code := app.do(app.client(), "POST", "/api/login", credentialsRequest{Email: adminEmail, Password: "wrong-password"}, nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d, want 401", code)
	}

	var got auditList
	app.do(admin, "GET", "/api/admin/audit?category=security", nil, &got)
	if len(got.Events) != 2 {
		t.Fatalf("security events = %+v", got.Events)
	}
	// Newest first.
	if got.Events[0].Action != audit.ActionLoginFailed || got.Events[0].Severity != audit.SeverityWarning {
		t.Errorf("newest = %+v", got.Events[0])
	}
	if got.Events[1].Action != audit.ActionLogin || got.Events[1].ActorRole != "admin" {
		t.Errorf("oldest = %+v", got.Events[1])
	}
}

// TestAdminAudit_AccountChanges verifies admin user management is recorded.
func TestAdminAudit_AccountChanges(t *testing.T) {
	app := newTestApp(t, testConfig())
	admin := app.admin()
	_, id := app.athlete("Ravi", "ravi@example.in")

	if code := app.do(admin, "DELETE", "/api/users/"+id, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete = %d", code)
	}

	var got auditList
	app.do(admin, "GET", "/api/admin/audit?category=account&resource_id="+id, nil, &got)
	if len(got.Events) != 1 {
		t.Fatalf("events = %+v", got.Events)
	}
	if got.Events[0].Action != audit.ActionDelete || got.Events[0].Severity != audit.SeverityWarning {
		t.Errorf("event = %+v", got.Events[0])
	}
}

// TestAdminAudit_AdminOnly verifies athletes cannot read the trail.
func TestAdminAudit_AdminOnly(t *testing.T) {
	app := newTestApp(t, testConfig())
	asha, _ := app.athlete("Asha", "asha@example.in")

	if code := app.do(asha, "GET", "/api/admin/audit", nil, nil); code != http.StatusForbidden {
		t.Errorf("athlete audit = %d, want 403", code)
	}
	if code := app.do(app.client(), "GET", "/api/admin/audit", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("anonymous audit = %d, want 401", code)
	}
}
