// Package slots generates the discrete half-hour marks a customer may
// select as a reservation start time.
package slots

import (
	"fmt"

	"quicktable/internal/models"
)

// SlotInterval is the spacing between bookable marks, in minutes.
const SlotInterval = 30

const minutesPerDay = 24 * 60

// Generate produces the ordered "HH:MM" marks between openTime and
// closeTime, stepping by SlotInterval and stopping strictly before
// closeTime. When closeHour < openHour the restaurant operates
// overnight: the walk wraps 23:30 -> 00:00 and terminates once the
// wall-clock hour reaches the close hour with minute at or past the
// close minute. openTime == closeTime yields no slots.
func Generate(openTime, closeTime string) ([]string, error) {
	open, err := models.ParseClock(openTime)
	if err != nil {
		return nil, fmt.Errorf("parse open time: %w", err)
	}
	close, err := models.ParseClock(closeTime)
	if err != nil {
		return nil, fmt.Errorf("parse close time: %w", err)
	}

	overnight := close/60 < open/60
	if !overnight {
		var marks []string
		for cursor := open; cursor < close; cursor += SlotInterval {
			marks = append(marks, models.FormatClock(cursor))
		}
		return marks, nil
	}

	// Overnight walk: continue past midnight on the next day's clock.
	var marks []string
	for cursor, wrapped := open, false; ; cursor += SlotInterval {
		if cursor >= minutesPerDay {
			cursor -= minutesPerDay
			wrapped = true
		}
		if wrapped && cursor/60 == close/60 && cursor%60 >= close%60 {
			break
		}
		if wrapped && cursor/60 > close/60 {
			break
		}
		marks = append(marks, models.FormatClock(cursor))
	}
	return marks, nil
}

// GenerateDefault produces the marks for the default operating hours.
func GenerateDefault() []string {
	marks, _ := Generate(models.DefaultOpenTime, models.DefaultCloseTime)
	return marks
}
