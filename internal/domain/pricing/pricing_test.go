package pricing_test

import (
	"errors"
	"testing"

	"academy/internal/domain/booking"
	"academy/internal/domain/pricing"
)

var prices = pricing.UnitPrices{Weekly: 500, Monthly: 1500}

// TestAmount_MonthlyThreePlayers tests the documented pricing scenario.
func TestAmount_MonthlyThreePlayers(t *testing.T) {
	got, err := prices.Amount(booking.PackageMonthly, 3)
	if err != nil {
		t.Fatalf("Amount: %v", err)
	}
	if got != 4500 {
		t.Errorf("Amount = %d, want 4500", got)
	}
}

// TestAmount_IsUnitPriceTimesPlayers checks exact multiplication for every type and a range of counts.
func TestAmount_IsUnitPriceTimesPlayers(t *testing.T) {
	for _, pt := range []booking.PackageType{booking.PackageWeekly, booking.PackageMonthly} {
		unit, err := prices.UnitPrice(pt)
		if err != nil {
			t.Fatalf("UnitPrice(%s): %v", pt, err)
		}
		for n := 1; n <= 50; n++ {
			got, err := prices.Amount(pt, n)
			if err != nil {
				t.Fatalf("Amount(%s, %d): %v", pt, n, err)
			}
			if got != unit*int64(n) {
				t.Fatalf("Amount(%s, %d) = %d, want %d", pt, n, got, unit*int64(n))
			}
		}
	}
}

// TestAmount_Errors tests invalid inputs.
func TestAmount_Errors(t *testing.T) {
	if _, err := prices.Amount("", 1); !errors.Is(err, pricing.ErrUnknownPackage) {
		t.Errorf("unset type error = %v, want ErrUnknownPackage", err)
	}
	if _, err := prices.Amount(booking.PackageWeekly, 0); !errors.Is(err, pricing.ErrInvalidPlayers) {
		t.Errorf("zero players error = %v, want ErrInvalidPlayers", err)
	}
}

// TestFormatCurrency tests Indian digit grouping.
func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "₹0"},
		{500, "₹500"},
		{4500, "₹4,500"},
		{15000, "₹15,000"},
		{123456, "₹1,23,456"},
		{1234567, "₹12,34,567"},
		{-1500, "-₹1,500"},
	}
	for _, tt := range tests {
		if got := pricing.FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
