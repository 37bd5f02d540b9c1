package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Default presentation values used when the backend leaves a field empty.
const (
	DefaultPlaylistName  = "New Playlist"
	DefaultPlaylistColor = "#3182ce"
	UnknownPlaylistTitle = "Unknown Playlist"
)

// Track is a single audio asset in the station catalog.
type Track struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album"`
	Genre      string    `json:"genre"`
	Duration   int       `json:"duration"` // whole seconds, never negative
	BPM        float64   `json:"bpm"`
	MusicalKey string    `json:"musical_key"`
	CreatedAt  time.Time `json:"created_at"`
}

// FormattedDuration returns the track length as m:ss or h:mm:ss.
func (t Track) FormattedDuration() string {
	return FormatDuration(t.Duration)
}

// DisplayArtist returns the artist or a placeholder when untagged.
func (t Track) DisplayArtist() string {
	if strings.TrimSpace(t.Artist) == "" {
		return "Unknown Artist"
	}
	return t.Artist
}

// FormatDuration renders a number of seconds for display.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// TrackUpdate carries editable track metadata. Nil fields are left unchanged.
type TrackUpdate struct {
	Title  *string `json:"title,omitempty"`
	Artist *string `json:"artist,omitempty"`
	Album  *string `json:"album,omitempty"`
	Genre  *string `json:"genre,omitempty"`
}

// Apply returns a copy of t with the update applied.
func (u TrackUpdate) Apply(t Track) Track {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Artist != nil {
		t.Artist = *u.Artist
	}
	if u.Album != nil {
		t.Album = *u.Album
	}
	if u.Genre != nil {
		t.Genre = *u.Genre
	}
	return t
}

// Playlist is a named, ordered collection of tracks.
type Playlist struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Color         string  `json:"color"`
	TotalDuration int     `json:"total_duration"`
	Tracks        []Track `json:"tracks,omitempty"`
	TracksLoaded  bool    `json:"tracks_loaded"`
}

// DisplayColor returns the playlist color, falling back to the station default.
func (p Playlist) DisplayColor() string {
	if p.Color == "" {
		return DefaultPlaylistColor
	}
	return p.Color
}

// FormattedDuration returns the total playlist length.
func (p Playlist) FormattedDuration() string {
	return FormatDuration(p.TotalDuration)
}

// PlaylistMeta is the metadata half of a playlist save.
type PlaylistMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// ScheduleType distinguishes one-off and weekly slots.
type ScheduleType string

const (
	ScheduleOneTime   ScheduleType = "one-time"
	ScheduleRecurring ScheduleType = "recurring"
)

// ParseScheduleType normalizes the wire spellings of a schedule type.
func ParseScheduleType(s string) ScheduleType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "recurring", "weekly":
		return ScheduleRecurring
	default:
		return ScheduleOneTime
	}
}

// TimeOfDay is a wall-clock time in the station timezone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay accepts HH:MM and HH:MM:SS.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	if h == 24 && m != 0 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns the instant at this time of day on the given date in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.In(loc).Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, loc)
}

var weekdayTokens = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWeekdays parses a comma-separated list such as "Mon,Wed,Fri".
// Unknown tokens are skipped.
func ParseWeekdays(s string) []time.Weekday {
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, tok := range strings.Split(s, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if len(tok) > 3 {
			tok = tok[:3]
		}
		d, ok := weekdayTokens[tok]
		if !ok || seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	return days
}

// FormatWeekdays is the inverse of ParseWeekdays.
func FormatWeekdays(days []time.Weekday) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()[:3]
	}
	return strings.Join(names, ",")
}

// ScheduleSlot is a playlist placement as returned by the backend,
// with times expressed in station-local wall clock.
type ScheduleSlot struct {
	ID            int64
	PlaylistID    int64
	PlaylistName  string
	PlaylistColor string
	Type          ScheduleType
	Date          string // YYYY-MM-DD, one-time slots only
	Days          []time.Weekday
	StartTime     TimeOfDay
	EndTime       TimeOfDay
	Active        bool
}

// User is the authenticated operator.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Session is the bearer token held for the logged-in operator.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the session holds a token that has not expired.
func (s Session) Valid(now time.Time) bool {
	if s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// NowPlaying describes what the station is broadcasting.
type NowPlaying struct {
	Title        string
	Artist       string
	PlaylistName string
	StartsAt     time.Time
	EndsAt       time.Time
}

// Remaining returns the time left in the current track, never negative.
func (n NowPlaying) Remaining(now time.Time) time.Duration {
	if n.EndsAt.IsZero() || !now.Before(n.EndsAt) {
		return 0
	}
	return n.EndsAt.Sub(now)
}

// StationStats is the dashboard summary.
type StationStats struct {
	TotalTracks      int
	TotalPlaylists   int
	StorageUsedBytes int64
	Uptime           string
	NowPlaying       *NowPlaying
	RecentTracks     []Track
}

// StorageGB returns storage usage in gigabytes.
func (s StationStats) StorageGB() float64 {
	return float64(s.StorageUsedBytes) / (1024 * 1024 * 1024)
}
