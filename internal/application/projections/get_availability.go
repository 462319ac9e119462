package projections

import (
	"context"

	domainBooking "academy/internal/domain/booking"
	"academy/internal/domain/capacity"
)

// Availability describes the free slots of one month.
type Availability struct {
	Month       string `json:"month"`
	Label       string `json:"label"`
	Available   int    `json:"available"`
	Max         int    `json:"max"`
	UsedPercent int    `json:"used_percent"`
	Level       string `json:"level"`
}

// GetAvailabilityDeps holds dependencies for GetAvailability.
type GetAvailabilityDeps struct {
	BookingStore AvailabilityReader
	MaxPerMonth  int
}

// QueryGetAvailability reports the remaining capacity of month.
// PRE: month is YYYY-MM
// POST: 0 <= Available <= Max
func QueryGetAvailability(ctx context.Context, month string, deps GetAvailabilityDeps) (Availability, error) {
	if _, err := domainBooking.ParseMonth(month); err != nil {
		return Availability{}, err
	}
	booked, err := deps.BookingStore.BookedPlayers(ctx, month)
	if err != nil {
		return Availability{}, err
	}
	available := capacity.Remaining(booked, deps.MaxPerMonth)
	return Availability{
		Month:       month,
		Label:       domainBooking.FormatMonth(month),
		Available:   available,
		Max:         deps.MaxPerMonth,
		UsedPercent: capacity.UsedPercent(available, deps.MaxPerMonth),
		Level:       capacity.Level(available),
	}, nil
}
