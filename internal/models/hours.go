package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Default operating hours applied when a record is created without
// explicit times.
const (
	DefaultOpenTime  = "10:00"
	DefaultCloseTime = "22:00"
	ClosedTime       = "00:00"
)

// RestaurantHours holds the operating-hours record for one calendar date.
// TimeSlots are regenerated whenever OpenTime/CloseTime change;
// BlockedHours are independent and filtered at read time.
type RestaurantHours struct {
	Date         string    `json:"date"` // YYYY-MM-DD
	IsOpen       bool      `json:"is_open"`
	OpenTime     string    `json:"open_time"`  // HH:MM
	CloseTime    string    `json:"close_time"` // HH:MM
	TimeSlots    []string  `json:"time_slots"`
	BlockedHours []string  `json:"blocked_hours"` // "HH:MM-HH:MM" ranges
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BlockedRange is a parsed "HH:MM-HH:MM" closure interval.
type BlockedRange struct {
	Start string
	End   string
}

// Contains reports whether slot falls inside the half-open range
// [Start, End).
func (b BlockedRange) Contains(slot string) bool {
	return slot >= b.Start && slot < b.End
}

// ParseBlockedRange parses a "HH:MM-HH:MM" range string.
func ParseBlockedRange(s string) (BlockedRange, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return BlockedRange{}, fmt.Errorf("invalid blocked range %q, expected HH:MM-HH:MM", s)
	}
	start, end := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if _, err := ParseClock(start); err != nil {
		return BlockedRange{}, fmt.Errorf("invalid blocked range start: %w", err)
	}
	if _, err := ParseClock(end); err != nil {
		return BlockedRange{}, fmt.Errorf("invalid blocked range end: %w", err)
	}
	return BlockedRange{Start: start, End: end}, nil
}

// BlockedRanges parses every blocked range on the record, skipping
// malformed entries.
func (h *RestaurantHours) BlockedRanges() []BlockedRange {
	ranges := make([]BlockedRange, 0, len(h.BlockedHours))
	for _, raw := range h.BlockedHours {
		r, err := ParseBlockedRange(raw)
		if err != nil {
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges
}

// IsBlocked reports whether slot falls inside any blocked range.
func (h *RestaurantHours) IsBlocked(slot string) bool {
	for _, r := range h.BlockedRanges() {
		if r.Contains(slot) {
			return true
		}
	}
	return false
}

// AvailableSlots returns TimeSlots with every blocked slot removed,
// preserving order.
func (h *RestaurantHours) AvailableSlots() []string {
	out := make([]string, 0, len(h.TimeSlots))
	for _, slot := range h.TimeSlots {
		if h.IsBlocked(slot) {
			continue
		}
		out = append(out, slot)
	}
	return out
}

// ParseClock parses "HH:MM" into minutes since midnight. It is strict
// about zero-padded 24-hour wall-clock values.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM",
// wrapping past midnight.
func FormatClock(minutes int) string {
	minutes %= 24 * 60
	if minutes < 0 {
		minutes += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ValidDate reports whether s is an ISO calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
