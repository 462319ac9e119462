package web

import (
	"net/http"
	"strconv"
	"sync"

	"academy/internal/adapters/qr"
	"academy/internal/application/orchestrators"
	"academy/internal/domain/booking"
	"academy/internal/domain/wizard"
)

// wizardStates keeps the last wizard result per signed-in user.
// INVARIANT: every stored result came from an orchestrator call
// INVARIANT: a read-execute-store sequence for one user runs under that user's Lock
type wizardStates struct {
	mu      sync.Mutex
	results map[string]orchestrators.WizardResult
	users   map[string]*sync.Mutex
}

func newWizardStates() *wizardStates {
	return &wizardStates{
		results: make(map[string]orchestrators.WizardResult),
		users:   make(map[string]*sync.Mutex),
	}
}

// Lock serialises wizard transitions for userID and returns the unlock func.
// A second tab or a double-clicked confirm waits here and then sees the stored result.
func (ws *wizardStates) Lock(userID string) func() {
	ws.mu.Lock()
	l, ok := ws.users[userID]
	if !ok {
		l = &sync.Mutex{}
		ws.users[userID] = l
	}
	ws.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (ws *wizardStates) Get(userID string) (orchestrators.WizardResult, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	res, ok := ws.results[userID]
	return res, ok
}

func (ws *wizardStates) Put(userID string, res orchestrators.WizardResult) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.results[userID] = res
}

func (ws *wizardStates) Delete(userID string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	delete(ws.results, userID)
}

func wizardDeps() orchestrators.WizardDeps {
	return orchestrators.WizardDeps{
		BookingStore:    stores.BookingStore,
		UserStore:       stores.UserStore,
		Prices:          prices(),
		MaxPerMonth:     settings.MaxPlayersPerMonth,
		UPIID:           settings.UPIID,
		PayeeName:       settings.PayeeName,
		Notifier:        notifier(),
		ScheduleHandoff: services.ScheduleHandoff,
		Now:             timeNow,
		GenerateID:      generateID,
	}
}

type monthView struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type summaryView struct {
	PackageLabel string `json:"package_label"`
	MonthLabel   string `json:"month_label"`
	Players      int    `json:"players"`
	Amount       int64  `json:"amount"`
	AmountText   string `json:"amount_text"`
	UPILink      string `json:"upi_link"`
	QRImageURL   string `json:"qr_image_url"`
	QRPath       string `json:"qr_path"`
}

type wizardView struct {
	Step        int          `json:"step"`
	StepName    string       `json:"step_name"`
	PackageType string       `json:"package_type"`
	Month       string       `json:"month"`
	Players     int          `json:"players"`
	Amount      int64        `json:"amount"`
	Available   int          `json:"available"`
	Max         int          `json:"max"`
	Months      []monthView  `json:"months"`
	Summary     *summaryView `json:"summary,omitempty"`
	BookingID   string       `json:"booking_id,omitempty"`
}

func toWizardView(res orchestrators.WizardResult) wizardView {
	s := res.State
	v := wizardView{
		Step:        int(s.Step),
		StepName:    s.Step.String(),
		PackageType: string(s.Draft.PackageType),
		Month:       s.Draft.Month,
		Players:     s.Draft.Players,
		Amount:      s.Draft.Amount,
		Available:   s.Available,
		Max:         res.Max,
		Months:      make([]monthView, 0, len(res.Months)),
		BookingID:   res.BookingID,
	}
	for _, m := range res.Months {
		v.Months = append(v.Months, monthView{Value: m.Value, Label: m.Label})
	}
	if sum := res.Summary; sum != nil {
		v.Summary = &summaryView{
			PackageLabel: sum.PackageLabel,
			MonthLabel:   sum.MonthLabel,
			Players:      sum.Players,
			Amount:       sum.Amount,
			AmountText:   sum.AmountText,
			UPILink:      sum.UPILink,
			QRImageURL:   sum.QRImageURL,
			QRPath:       "/api/wizard/payment-qr",
		}
	}
	return v
}

// wizardErrorBody carries the unchanged wizard alongside the error.
type wizardErrorBody struct {
	errorBody
	Wizard wizardView `json:"wizard"`
}

// loadWizard returns the user's wizard, opening a fresh one on first use.
func loadWizard(r *http.Request, userID string) (orchestrators.WizardResult, error) {
	if res, ok := wizards.Get(userID); ok {
		return res, nil
	}
	res, err := orchestrators.ExecuteStartWizard(r.Context(), wizardDeps())
	if err != nil {
		return orchestrators.WizardResult{}, err
	}
	wizards.Put(userID, res)
	return res, nil
}

// handleGetWizard handles GET /api/wizard
func handleGetWizard(w http.ResponseWriter, r *http.Request) {
	userID := currentSession(r).UserID
	defer wizards.Lock(userID)()
	res, err := loadWizard(r, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWizardView(res))
}

type wizardActionRequest struct {
	Action      string `json:"action"`
	PackageType string `json:"package_type"`
	Month       string `json:"month"`
	Delta       int    `json:"delta"`
	Step        int    `json:"step"`
}

// handleWizardAction handles POST /api/wizard. A rejected action leaves the stored wizard untouched.
// PRE: body is a wizardActionRequest
// POST: 200 with the next wizard, or an error status with the unchanged wizard
func handleWizardAction(w http.ResponseWriter, r *http.Request) {
	var req wizardActionRequest
	if err := strictDecode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	sess := currentSession(r)
	defer wizards.Lock(sess.UserID)()
	current, err := loadWizard(r, sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := orchestrators.ExecuteWizardAction(r.Context(), orchestrators.WizardActionInput{
		State:       current.State,
		UserID:      sess.UserID,
		AthleteName: sess.Name,
		Action: orchestrators.WizardAction{
			Kind:        req.Action,
			PackageType: booking.PackageType(req.PackageType),
			Month:       req.Month,
			Delta:       req.Delta,
			Step:        wizard.Step(req.Step),
		},
	}, wizardDeps())
	if err != nil {
		status, body := errorFor(err)
		writeJSON(w, status, wizardErrorBody{errorBody: body, Wizard: toWizardView(current)})
		return
	}

	wizards.Put(sess.UserID, res)
	writeJSON(w, http.StatusOK, toWizardView(res))
}

// handleWizardPaymentQR handles GET /api/wizard/payment-qr. The image encodes the UPI link of the review step.
func handleWizardPaymentQR(w http.ResponseWriter, r *http.Request) {
	res, ok := wizards.Get(currentSession(r).UserID)
	if !ok || res.Summary == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no payment pending"})
		return
	}
	img, err := qr.EncodeBytes(res.Summary.UPILink)
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", qr.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}
