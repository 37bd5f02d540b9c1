package schedule

import (
	"time"

	"github.com/mmcdole/onair/internal/domain"
)

// Window is the visible calendar range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) IsZero() bool { return w.Start.IsZero() && w.End.IsZero() }

// Days returns the midnight of every day in the window.
func (w Window) Days() []time.Time {
	var days []time.Time
	for d := w.Start; d.Before(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// WeekOf returns the seven-day window containing t in loc, starting on
// Monday or Sunday.
func WeekOf(t time.Time, loc *time.Location, mondayFirst bool) Window {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	offset := int(local.Weekday())
	if mondayFirst {
		offset = (offset + 6) % 7
	}
	start := time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

// Shift moves the window by whole weeks.
func (w Window) Shift(weeks int) Window {
	return Window{Start: w.Start.AddDate(0, 0, 7*weeks), End: w.End.AddDate(0, 0, 7*weeks)}
}

// Block is one drawable occurrence of an event inside the window.
type Block struct {
	Event domain.CalendarEvent
	domain.Interval
}
