package capacity

import (
	"errors"
	"math"

	"academy/internal/domain/booking"
)

// ErrInsufficientSlots is returned by the booking store when an insert would exceed the monthly cap.
var ErrInsufficientSlots = errors.New("not enough slots left for this month")

// Availability levels drive the colour of the availability bar.
const (
	LevelOK       = "ok"
	LevelLow      = "low"
	LevelCritical = "critical"
)

// BookedPlayers sums the players of capacity-holding bookings in month.
// INVARIANT: bookings is not mutated
func BookedPlayers(bookings []booking.Booking, month string) int {
	total := 0
	for i := range bookings {
		b := &bookings[i]
		if b.Month == month && b.HoldsCapacity() {
			total += b.Players
		}
	}
	return total
}

// AvailableSlots returns max(0, maxPerMonth - booked players in month).
// PRE: maxPerMonth >= 0
// POST: 0 <= result <= maxPerMonth
func AvailableSlots(bookings []booking.Booking, month string, maxPerMonth int) int {
	return Remaining(BookedPlayers(bookings, month), maxPerMonth)
}

// Remaining turns a booked-player count into free slots, clamped to [0, maxPerMonth].
func Remaining(booked, maxPerMonth int) int {
	if maxPerMonth < 0 {
		maxPerMonth = 0
	}
	left := maxPerMonth - booked
	if left < 0 {
		return 0
	}
	if left > maxPerMonth {
		return maxPerMonth
	}
	return left
}

// ClampPlayers lowers players to the available ceiling, never below 1.
// POST: 1 <= result <= max(1, available)
func ClampPlayers(players, available int) int {
	ceiling := available
	if ceiling < 1 {
		ceiling = 1
	}
	if players > ceiling {
		players = ceiling
	}
	if players < 1 {
		players = 1
	}
	return players
}

// UsedPercent returns the rounded share of monthly capacity already taken.
func UsedPercent(available, maxPerMonth int) int {
	if maxPerMonth <= 0 {
		return 100
	}
	used := maxPerMonth - available
	return int(math.Round(float64(used) / float64(maxPerMonth) * 100))
}

// Level classifies remaining slots for display.
func Level(available int) string {
	switch {
	case available <= 2:
		return LevelCritical
	case available <= 5:
		return LevelLow
	default:
		return LevelOK
	}
}
