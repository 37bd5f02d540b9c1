package stationapi

import (
	"math"
	"strings"
	"time"

	"github.com/mmcdole/onair/internal/domain"
)

// MapTrack converts a TrackDTO to a domain Track
func MapTrack(d TrackDTO) domain.Track {
	t := domain.Track{
		ID:         d.ID,
		Title:      d.Title,
		Artist:     d.Artist,
		Album:      d.Album,
		Genre:      d.Genre,
		Duration:   seconds(d.Duration),
		BPM:        d.BPM,
		MusicalKey: d.MusicalKey,
	}
	if t.MusicalKey == "" {
		t.MusicalKey = d.MusicalKeyAlt
	}
	switch {
	case d.CreatedAt != nil:
		t.CreatedAt = *d.CreatedAt
	case d.CreatedAtAlt != nil:
		t.CreatedAt = *d.CreatedAtAlt
	}
	return t
}

// MapTracks converts a slice of TrackDTOs
func MapTracks(dtos []TrackDTO) []domain.Track {
	tracks := make([]domain.Track, 0, len(dtos))
	for _, d := range dtos {
		tracks = append(tracks, MapTrack(d))
	}
	return tracks
}

// seconds normalizes a float duration to whole non-negative seconds
func seconds(f float64) int {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}

// MapPlaylist converts a PlaylistDTO. withTracks marks the track list as
// authoritative (detail endpoint) even when it is empty.
func MapPlaylist(d PlaylistDTO, withTracks bool) domain.Playlist {
	p := domain.Playlist{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		Color:         d.Color,
		TotalDuration: seconds(d.TotalDuration),
		TracksLoaded:  withTracks,
	}
	if withTracks {
		p.Tracks = MapTracks(d.Tracks)
		if p.TotalDuration == 0 {
			for _, t := range p.Tracks {
				p.TotalDuration += t.Duration
			}
		}
	}
	return p
}

// MapPlaylists converts list entries
func MapPlaylists(dtos []PlaylistDTO) []domain.Playlist {
	playlists := make([]domain.Playlist, 0, len(dtos))
	for _, d := range dtos {
		playlists = append(playlists, MapPlaylist(d, false))
	}
	return playlists
}

// MapScheduleSlot converts a slot to station-local wall clock. RFC 3339
// start/end values are converted into loc; HH:MM values are taken as
// already local. ok is false for slots that cannot be placed on a grid.
func MapScheduleSlot(d ScheduleSlotDTO, loc *time.Location) (domain.ScheduleSlot, bool) {
	if loc == nil {
		loc = time.UTC
	}
	slot := domain.ScheduleSlot{
		ID:     d.ID,
		Type:   domain.ParseScheduleType(d.ScheduleType),
		Date:   dateOnly(d.Date),
		Days:   domain.ParseWeekdays(d.Days),
		Active: d.IsActive == nil || *d.IsActive,
	}
	if d.PlaylistID != nil {
		slot.PlaylistID = *d.PlaylistID
	}
	if d.Playlist != nil {
		slot.PlaylistName = d.Playlist.Name
		slot.PlaylistColor = d.Playlist.Color
		if slot.PlaylistID == 0 {
			slot.PlaylistID = d.Playlist.ID
		}
	}

	if start, err := time.Parse(time.RFC3339, d.StartTime); err == nil {
		start = start.In(loc)
		end := start.Add(time.Hour)
		if e, err := time.Parse(time.RFC3339, d.EndTime); err == nil {
			end = e.In(loc)
		}
		slot.Type = domain.ScheduleOneTime
		slot.Date = start.Format("2006-01-02")
		slot.StartTime = domain.TimeOfDay{Hour: start.Hour(), Minute: start.Minute()}
		slot.EndTime = domain.TimeOfDay{Hour: end.Hour(), Minute: end.Minute()}
		return slot, true
	}

	start, err := domain.ParseTimeOfDay(d.StartTime)
	if err != nil {
		return slot, false
	}
	slot.StartTime = start
	if end, err := domain.ParseTimeOfDay(d.EndTime); err == nil {
		slot.EndTime = end
	} else {
		slot.EndTime = domain.TimeOfDay{Hour: (start.Hour + 1) % 24, Minute: start.Minute}
	}

	if slot.Type == domain.ScheduleOneTime {
		if _, err := time.ParseInLocation("2006-01-02", slot.Date, loc); err != nil {
			return slot, false
		}
	} else if len(slot.Days) == 0 {
		return slot, false
	}
	return slot, true
}

// dateOnly trims a timestamp-shaped date such as 2026-03-04T00:00:00Z
func dateOnly(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 && s[10] == 'T' {
		return s[:10]
	}
	return s
}

// MapScheduleSlots converts slots, dropping inactive and unplaceable ones
func MapScheduleSlots(dtos []ScheduleSlotDTO, loc *time.Location) []domain.ScheduleSlot {
	slots := make([]domain.ScheduleSlot, 0, len(dtos))
	for _, d := range dtos {
		slot, ok := MapScheduleSlot(d, loc)
		if !ok || !slot.Active {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

// MapSession converts a login response
func MapSession(d LoginResponse) domain.Session {
	return domain.Session{
		Token: strings.TrimSpace(d.Token),
		User: domain.User{
			ID:       d.User.ID,
			Username: d.User.Username,
			Role:     d.User.Role,
		},
	}
}

// MapStats converts the dashboard response
func MapStats(d StatsDTO) *domain.StationStats {
	stats := &domain.StationStats{
		TotalTracks:      d.Stats.TotalTracks,
		TotalPlaylists:   d.Stats.TotalPlaylists,
		StorageUsedBytes: d.Stats.StorageUsedBytes,
		Uptime:           d.Stats.Uptime,
		RecentTracks:     MapTracks(d.RecentTracks),
	}
	if np := d.NowPlaying; np != nil && (np.Title != "" || np.Artist != "") {
		stats.NowPlaying = &domain.NowPlaying{
			Title:        np.Title,
			Artist:       np.Artist,
			PlaylistName: np.PlaylistName,
		}
		if np.StartsAt != nil {
			stats.NowPlaying.StartsAt = *np.StartsAt
		}
		if np.EndsAt != nil {
			stats.NowPlaying.EndsAt = *np.EndsAt
		}
	}
	return stats
}
