package wizard

import (
	"fmt"

	"academy/internal/domain/booking"
	"academy/internal/domain/capacity"
	"academy/internal/domain/pricing"
)

// Step is a position in the linear booking flow.
type Step int

// Steps
const (
	StepSelectType     Step = 1
	StepSelectSchedule Step = 2
	StepReviewPayment  Step = 3
	StepConfirmed      Step = 4
)

// String returns the step's name.
func (s Step) String() string {
	switch s {
	case StepSelectType:
		return "select_type"
	case StepSelectSchedule:
		return "select_schedule"
	case StepReviewPayment:
		return "review_payment"
	case StepConfirmed:
		return "confirmed"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Draft is the booking under construction. It is never persisted.
type Draft struct {
	PackageType booking.PackageType
	Month       string
	Players     int
	Amount      int64
}

// State is the whole wizard. Every transition takes a State and returns the next one;
// on error the input State is returned unchanged.
type State struct {
	Step      Step
	Draft     Draft
	Available int
	BookingID string
}

// CreateFunc persists a draft and returns the new booking ID.
type CreateFunc func(d Draft) (string, error)

// New opens the wizard on the first step for month.
// POST: Step is SelectType, Players is 1, Amount is 0, type is unset
func New(month string, available int) State {
	return State{
		Step:      StepSelectType,
		Draft:     Draft{Month: month, Players: 1},
		Available: available,
	}
}

// SelectType sets the package and advances to the schedule step.
// PRE: t is weekly or monthly
// POST: Step is SelectSchedule, Amount recomputed
func SelectType(s State, t booking.PackageType, prices pricing.UnitPrices) (State, error) {
	if err := requireOpen(s); err != nil {
		return s, err
	}
	if !t.Valid() {
		return s, typeRequired()
	}
	next := s
	next.Draft.PackageType = t
	next.Draft.Amount = amountFor(next.Draft, prices)
	next.Step = StepSelectSchedule
	return next, nil
}

// SelectMonth switches the target month using freshly computed availability.
// POST: Available updated, Players clamped to max(1, available), Amount recomputed
func SelectMonth(s State, month string, available int, prices pricing.UnitPrices) (State, error) {
	if err := requireOpen(s); err != nil {
		return s, err
	}
	if _, err := booking.ParseMonth(month); err != nil {
		return s, &ValidationError{Field: "month", Reason: err.Error()}
	}
	next := s
	next.Draft.Month = month
	next = refresh(next, available, prices)
	return next, nil
}

// AdjustPlayers changes the player count by delta.
// PRE: 1 <= Players+delta <= available
// POST: Players and Amount updated; out-of-range requests leave the state unchanged
func AdjustPlayers(s State, delta, available int, prices pricing.UnitPrices) (State, error) {
	if err := requireOpen(s); err != nil {
		return s, err
	}
	n := s.Draft.Players + delta
	if n < 1 || n > available {
		return s, &ValidationError{
			Field:  "players",
			Reason: fmt.Sprintf("must be between 1 and %d", max(1, available)),
		}
	}
	next := s
	next.Draft.Players = n
	next.Available = available
	next.Draft.Amount = amountFor(next.Draft, prices)
	return next, nil
}

// GoTo moves to target. Backward moves are always allowed; forward moves go one step at a time.
// Confirmed is only reachable through Confirm.
// PRE: target is a step before Confirmed
// POST: Step is target, or the state is unchanged and an error describes why
func GoTo(s State, target Step, available int, prices pricing.UnitPrices) (State, error) {
	if err := requireOpen(s); err != nil {
		return s, err
	}
	if target < StepSelectType || target > StepConfirmed {
		return s, &ValidationError{Field: "step", Reason: "unknown step"}
	}
	if target == StepConfirmed {
		return s, &ValidationError{Field: "step", Reason: "confirm payment to finish booking"}
	}
	if target > s.Step+1 {
		return s, &ValidationError{Field: "step", Reason: "steps must be completed in order"}
	}
	if target >= StepSelectSchedule && !s.Draft.PackageType.Valid() {
		return s, typeRequired()
	}

	next := s
	if target == StepReviewPayment {
		if available <= 0 {
			return s, &CapacityError{Month: s.Draft.Month, Available: 0, Requested: s.Draft.Players}
		}
		next = refresh(next, available, prices)
	}
	next.Step = target
	return next, nil
}

// Confirm creates the booking through create and moves to Confirmed.
// PRE: Step is ReviewPayment, type set, 0 < Players <= available
// POST: BookingID recorded and Step is Confirmed; on any failure the state stays on ReviewPayment
func Confirm(s State, available int, create CreateFunc) (State, error) {
	if s.Step != StepReviewPayment {
		return s, &ValidationError{Field: "step", Reason: "review payment before confirming"}
	}
	if !s.Draft.PackageType.Valid() {
		return s, typeRequired()
	}
	if available <= 0 || s.Draft.Players > available {
		return s, &CapacityError{Month: s.Draft.Month, Available: max(0, available), Requested: s.Draft.Players}
	}

	id, err := create(s.Draft)
	if err != nil {
		return s, &CollaboratorError{Op: "create_booking", Err: err}
	}

	next := s
	next.BookingID = id
	next.Available = available - s.Draft.Players
	next.Step = StepConfirmed
	return next, nil
}

// Summary is the review-step view of a draft.
type Summary struct {
	PackageLabel string
	MonthLabel   string
	Players      int
	Amount       int64
	AmountText   string
}

// Summarize renders the draft into display values.
func Summarize(s State) Summary {
	return Summary{
		PackageLabel: s.Draft.PackageType.Label(),
		MonthLabel:   booking.FormatMonth(s.Draft.Month),
		Players:      s.Draft.Players,
		Amount:       s.Draft.Amount,
		AmountText:   pricing.FormatCurrency(s.Draft.Amount),
	}
}

func requireOpen(s State) error {
	if s.Step == StepConfirmed {
		return &ValidationError{Field: "step", Reason: "booking already confirmed, start a new one"}
	}
	return nil
}

func refresh(s State, available int, prices pricing.UnitPrices) State {
	s.Available = available
	s.Draft.Players = capacity.ClampPlayers(s.Draft.Players, available)
	s.Draft.Amount = amountFor(s.Draft, prices)
	return s
}

// amountFor returns 0 until a package type is chosen.
func amountFor(d Draft, prices pricing.UnitPrices) int64 {
	amount, err := prices.Amount(d.PackageType, d.Players)
	if err != nil {
		return 0
	}
	return amount
}
