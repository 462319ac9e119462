package pricing

import (
	"errors"
	"strconv"
	"strings"

	"academy/internal/domain/booking"
)

// Domain errors
var (
	ErrUnknownPackage = errors.New("package type is not priced")
	ErrInvalidPlayers = errors.New("player count must be at least 1")
)

// UnitPrices is the flat per-player price of each package, in whole rupees.
type UnitPrices struct {
	Weekly  int64
	Monthly int64
}

// UnitPrice returns the per-player price for t.
// PRE: none
// POST: Returns ErrUnknownPackage when t is unset or unknown
func (p UnitPrices) UnitPrice(t booking.PackageType) (int64, error) {
	switch t {
	case booking.PackageWeekly:
		return p.Weekly, nil
	case booking.PackageMonthly:
		return p.Monthly, nil
	}
	return 0, ErrUnknownPackage
}

// Amount returns UnitPrice(t) * players with no proration or discounts.
// PRE: players >= 1
// POST: Result is exact integer arithmetic
func (p UnitPrices) Amount(t booking.PackageType, players int) (int64, error) {
	if players < 1 {
		return 0, ErrInvalidPlayers
	}
	unit, err := p.UnitPrice(t)
	if err != nil {
		return 0, err
	}
	return unit * int64(players), nil
}

// FormatCurrency renders an amount the way the dashboard shows it, e.g. "₹1,23,456".
// Digits are grouped in the Indian system: the last three, then pairs.
func FormatCurrency(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	out := digits
	if len(digits) > 3 {
		head := digits[:len(digits)-3]
		var groups []string
		if len(head)%2 == 1 {
			groups = append(groups, head[:1])
			head = head[1:]
		}
		for i := 0; i < len(head); i += 2 {
			groups = append(groups, head[i:i+2])
		}
		out = strings.Join(groups, ",") + "," + digits[len(digits)-3:]
	}

	if neg {
		return "-₹" + out
	}
	return "₹" + out
}
