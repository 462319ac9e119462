package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"academy/internal/domain/booking"
	"academy/internal/domain/pricing"
	"academy/internal/domain/wizard"
)

// Wizard actions
const (
	ActionSelectType    = "select_type"
	ActionSelectMonth   = "select_month"
	ActionAdjustPlayers = "adjust_players"
	ActionGoTo          = "go_to"
	ActionConfirm       = "confirm"
	ActionReset         = "reset"
)

// DefaultMonthsAhead is how many months, starting with the current one, the wizard offers.
const DefaultMonthsAhead = 6

// WizardAction is one user interaction with the booking wizard.
type WizardAction struct {
	Kind        string
	PackageType booking.PackageType // select_type
	Month       string              // select_month
	Delta       int                 // adjust_players
	Step        wizard.Step         // go_to
}

// WizardActionInput carries the current state and the action to apply.
type WizardActionInput struct {
	State       wizard.State
	UserID      string
	AthleteName string
	Action      WizardAction
}

// WizardDeps holds dependencies for the wizard orchestrators.
type WizardDeps struct {
	BookingStore BookingStoreForCreate
	UserStore    UserLookup
	Prices       pricing.UnitPrices
	MaxPerMonth  int
	MonthsAhead  int
	UPIID        string
	PayeeName    string
	Notifier     BookingNotifier
	// ScheduleHandoff queues the admin notification for a new booking. May be nil.
	ScheduleHandoff func(bookingID, athleteName string) error
	Now             func() time.Time
	GenerateID      func() string
}

// PaymentSummary is the review view of a draft with payment instructions.
type PaymentSummary struct {
	wizard.Summary
	UPILink    string
	QRImageURL string
}

// WizardResult is everything the wizard view needs to render.
type WizardResult struct {
	State     wizard.State
	Months    []booking.MonthOption
	Max       int
	Summary   *PaymentSummary // from the review step on
	BookingID string          // set once confirmed
}

// ExecuteStartWizard opens a fresh wizard on the first offered month.
// POST: Step is SelectType with live availability for the month
func ExecuteStartWizard(ctx context.Context, deps WizardDeps) (WizardResult, error) {
	months := deps.months()
	available, err := deps.available(ctx, months[0].Value)
	if err != nil {
		return WizardResult{}, err
	}
	return deps.result(wizard.New(months[0].Value, available), months), nil
}

// ExecuteWizardAction applies one action to the wizard.
// Availability is re-read on every action.
// PRE: input.State came from a previous wizard result
// POST: Returns the next state, or the unchanged state and a wizard error
func ExecuteWizardAction(ctx context.Context, input WizardActionInput, deps WizardDeps) (WizardResult, error) {
	months := deps.months()
	s := input.State
	a := input.Action

	month := s.Draft.Month
	switch a.Kind {
	case ActionSelectMonth:
		month = a.Month
		if !offered(months, month) {
			return deps.result(s, months), &wizard.ValidationError{Field: "month", Reason: "month is not open for booking"}
		}
	case ActionReset:
		month = months[0].Value
	}
	available, err := deps.available(ctx, month)
	if err != nil {
		return deps.result(s, months), &wizard.CollaboratorError{Op: "available_slots", Err: err}
	}

	var next wizard.State
	switch a.Kind {
	case ActionSelectType:
		next, err = wizard.SelectType(s, a.PackageType, deps.Prices)
	case ActionSelectMonth:
		next, err = wizard.SelectMonth(s, month, available, deps.Prices)
	case ActionAdjustPlayers:
		next, err = wizard.AdjustPlayers(s, a.Delta, available, deps.Prices)
	case ActionGoTo:
		next, err = wizard.GoTo(s, a.Step, available, deps.Prices)
	case ActionConfirm:
		next, err = wizard.Confirm(s, available, deps.createFunc(ctx, input.UserID))
		if err == nil {
			deps.scheduleHandoff(next.BookingID, input.AthleteName)
		}
	case ActionReset:
		next = wizard.New(month, available)
	default:
		return deps.result(s, months), &wizard.ValidationError{Field: "action", Reason: fmt.Sprintf("unknown action %q", a.Kind)}
	}
	if err != nil {
		slog.Info("booking_event", "event", "wizard_rejected", "action", a.Kind, "step", s.Step.String(), "kind", wizard.Kind(err), "error", err)
		return deps.result(s, months), err
	}
	return deps.result(next, months), nil
}

func (d WizardDeps) createFunc(ctx context.Context, userID string) wizard.CreateFunc {
	return func(draft wizard.Draft) (string, error) {
		b, err := ExecuteCreateBooking(ctx, CreateBookingInput{
			UserID:      userID,
			PackageType: draft.PackageType,
			Month:       draft.Month,
			Players:     draft.Players,
		}, CreateBookingDeps{
			BookingStore: d.BookingStore,
			UserStore:    d.UserStore,
			Prices:       d.Prices,
			MaxPerMonth:  d.MaxPerMonth,
			Notifier:     d.Notifier,
			Now:          d.Now,
			GenerateID:   d.GenerateID,
		})
		return b.ID, err
	}
}

func (d WizardDeps) scheduleHandoff(bookingID, athleteName string) {
	if d.ScheduleHandoff == nil {
		return
	}
	if err := d.ScheduleHandoff(bookingID, athleteName); err != nil {
		slog.Error("booking_event", "event", "handoff_schedule_failed", "booking_id", bookingID, "error", err)
	}
}

func (d WizardDeps) available(ctx context.Context, month string) (int, error) {
	return ExecuteAvailableSlots(ctx, month, AvailableSlotsDeps{BookingStore: d.BookingStore, MaxPerMonth: d.MaxPerMonth})
}

func (d WizardDeps) months() []booking.MonthOption {
	n := d.MonthsAhead
	if n <= 0 {
		n = DefaultMonthsAhead
	}
	return booking.NextMonths(nowOr(d.Now), n)
}

func (d WizardDeps) result(s wizard.State, months []booking.MonthOption) WizardResult {
	res := WizardResult{State: s, Months: months, Max: d.MaxPerMonth, BookingID: s.BookingID}
	if s.Step >= wizard.StepReviewPayment {
		link := UPILink(d.UPIID, d.PayeeName, s.Draft.Amount)
		res.Summary = &PaymentSummary{
			Summary:    wizard.Summarize(s),
			UPILink:    link,
			QRImageURL: QRImageURL(link),
		}
	}
	return res
}

func offered(months []booking.MonthOption, month string) bool {
	for _, m := range months {
		if m.Value == month {
			return true
		}
	}
	return false
}
