package sheetparse

import (
	"time"

	"github.com/teambition/rrule-go"
)

// Sundays returns every Sunday of the given month in order. The report
// month is anchored on these dates: one SundayReport row exists per
// entry.
func Sundays(year int, month time.Month) []time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rrule.SU},
		Dtstart:   first,
		Until:     last,
	})
	if err != nil {
		// The option set is static; NewRRule cannot fail on it.
		return nil
	}
	return r.All()
}
