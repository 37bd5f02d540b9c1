package schedule

import (
	"strconv"
	"time"

	"github.com/mmcdole/onair/internal/domain"
)

// SlotEvent maps a persisted slot to a calendar event in loc. One-time slots
// get concrete instants (an end at or before the start rolls to the next
// day); recurring slots keep their weekday set and daily times. ok is false
// for a one-time slot without a usable date.
func SlotEvent(slot domain.ScheduleSlot, loc *time.Location) (domain.CalendarEvent, bool) {
	if loc == nil {
		loc = time.UTC
	}
	ev := domain.CalendarEvent{
		ID:         "slot-" + strconv.FormatInt(slot.ID, 10),
		SlotID:     slot.ID,
		PlaylistID: slot.PlaylistID,
		Title:      slot.PlaylistName,
		Color:      slot.PlaylistColor,
		Type:       slot.Type,
		StartTime:  slot.StartTime,
		EndTime:    slot.EndTime,
	}
	if ev.Title == "" {
		ev.Title = domain.UnknownPlaylistTitle
	}
	if ev.Color == "" {
		ev.Color = domain.DefaultPlaylistColor
	}

	if slot.Type == domain.ScheduleRecurring {
		ev.DaysOfWeek = append([]time.Weekday(nil), slot.Days...)
		return ev, len(ev.DaysOfWeek) > 0
	}

	date, err := time.ParseInLocation("2006-01-02", slot.Date, loc)
	if err != nil {
		return ev, false
	}
	ev.Start = slot.StartTime.On(date, loc)
	ev.End = slot.EndTime.On(date, loc)
	if !ev.End.After(ev.Start) {
		ev.End = ev.End.AddDate(0, 0, 1)
	}
	return ev, true
}
