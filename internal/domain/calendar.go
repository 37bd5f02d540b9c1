package domain

import (
	"slices"
	"time"
)

// CalendarEvent is the view-model form of a schedule slot, or of a
// placement still waiting for the backend (a ghost).
type CalendarEvent struct {
	ID         string
	SlotID     int64
	PlaylistID int64
	Title      string
	Color      string
	Type       ScheduleType

	// One-time events carry concrete station-local instants.
	Start time.Time
	End   time.Time

	// Recurring events repeat on DaysOfWeek between StartTime and EndTime.
	DaysOfWeek []time.Weekday
	StartTime  TimeOfDay
	EndTime    TimeOfDay

	Ghost         bool
	PendingDelete bool
}

// Interval is one concrete occurrence of an event.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the interval intersects [from, to).
func (iv Interval) Overlaps(from, to time.Time) bool {
	return iv.Start.Before(to) && iv.End.After(from)
}

// Occurrences expands the event into the intervals that intersect [from, to),
// evaluated in loc. A recurring block whose end time is not after its start
// time runs past midnight into the next day.
func (e CalendarEvent) Occurrences(from, to time.Time, loc *time.Location) []Interval {
	if loc == nil {
		loc = time.UTC
	}
	if e.Type != ScheduleRecurring {
		iv := Interval{Start: e.Start.In(loc), End: e.End.In(loc)}
		if !iv.End.After(iv.Start) {
			iv.End = iv.Start.Add(time.Hour)
		}
		if iv.Overlaps(from, to) {
			return []Interval{iv}
		}
		return nil
	}

	var out []Interval
	local := from.In(loc)
	// start a day early so a block that began yesterday evening is included
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	for day.Before(to) {
		if slices.Contains(e.DaysOfWeek, day.Weekday()) {
			start := e.StartTime.On(day, loc)
			end := e.EndTime.On(day, loc)
			if !end.After(start) {
				end = end.AddDate(0, 0, 1)
			}
			iv := Interval{Start: start, End: end}
			if iv.Overlaps(from, to) {
				out = append(out, iv)
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}

// OnAirAt reports whether any occurrence of the event covers t.
func (e CalendarEvent) OnAirAt(t time.Time, loc *time.Location) bool {
	return len(e.Occurrences(t, t.Add(time.Nanosecond), loc)) > 0
}
