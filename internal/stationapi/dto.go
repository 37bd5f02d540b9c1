package stationapi

import (
	"encoding/json"
	"time"
)

// Field names are matched case-insensitively by encoding/json, so the
// snake_case tags also accept the capitalized keys some handlers emit
// ("ID", "Title"). Keys that differ by more than case get an alternate field.

// TrackDTO is a catalog entry
type TrackDTO struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Artist        string     `json:"artist"`
	Album         string     `json:"album"`
	Genre         string     `json:"genre"`
	Duration      float64    `json:"duration"`
	BPM           float64    `json:"bpm"`
	MusicalKey    string     `json:"musical_key"`
	MusicalKeyAlt string     `json:"MusicalKey"`
	CreatedAt     *time.Time `json:"created_at"`
	CreatedAtAlt  *time.Time `json:"CreatedAt"`
}

// PageMeta describes one page of a paginated list
type PageMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// TrackPage is the GET /tracks response
type TrackPage struct {
	Data []TrackDTO `json:"data"`
	Meta *PageMeta  `json:"meta"`
}

// PlaylistDTO is a playlist, with tracks only on the detail endpoint
type PlaylistDTO struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Color         string     `json:"color"`
	TotalDuration float64    `json:"total_duration"`
	Tracks        []TrackDTO `json:"tracks"`
}

// PlaylistList is the GET /playlists response
type PlaylistList struct {
	Data []PlaylistDTO `json:"data"`
}

// CreatePlaylistRequest is the POST /playlists body
type CreatePlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
}

// UpdatePlaylistRequest is the PUT /playlists/{id} body
type UpdatePlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// ReplaceTracksRequest is the PUT /playlists/{id}/tracks body
type ReplaceTracksRequest struct {
	TrackIDs []int64 `json:"track_ids"`
}

// ReplaceTracksResponse is the PUT /playlists/{id}/tracks response
type ReplaceTracksResponse struct {
	Status        string  `json:"status"`
	TotalDuration float64 `json:"total_duration"`
}

// SlotPlaylistDTO is the playlist summary embedded in a slot
type SlotPlaylistDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ScheduleSlotDTO is a placement. StartTime and EndTime are wall-clock
// HH:MM in the station timezone for current servers; older servers send
// RFC 3339 instants.
type ScheduleSlotDTO struct {
	ID           int64            `json:"id"`
	PlaylistID   *int64           `json:"playlist_id"`
	Playlist     *SlotPlaylistDTO `json:"playlist"`
	ScheduleType string           `json:"schedule_type"`
	Date         string           `json:"date"`
	Days         string           `json:"days"`
	StartTime    string           `json:"start_time"`
	EndTime      string           `json:"end_time"`
	IsActive     *bool            `json:"is_active"`
}

// CreateSlotRequest is the POST /schedules body
type CreateSlotRequest struct {
	PlaylistID   int64  `json:"playlist_id"`
	StartTime    string `json:"start_time"` // RFC 3339, UTC
	ScheduleType string `json:"schedule_type"`
}

// LoginRequest is the POST /auth/login body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserDTO is the authenticated account
type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResponse is the POST /auth/login response
type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// StatsDTO is the GET /stats response
type StatsDTO struct {
	Stats struct {
		TotalTracks      int    `json:"total_tracks"`
		TotalPlaylists   int    `json:"total_playlists"`
		StorageUsedBytes int64  `json:"storage_used_bytes"`
		Uptime           string `json:"uptime"`
	} `json:"stats"`
	NowPlaying   *NowPlayingDTO `json:"now_playing"`
	RecentTracks []TrackDTO     `json:"recent_tracks"`
}

// NowPlayingDTO is the on-air track
type NowPlayingDTO struct {
	Title        string     `json:"title"`
	Artist       string     `json:"artist"`
	PlaylistName string     `json:"playlist_name"`
	StartsAt     *time.Time `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
}

// decodeList accepts both {"data": [...]} and a bare array
func decodeList[T any](body []byte) ([]T, error) {
	var bare []T
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}
	var wrapped struct {
		Data []T `json:"data"`
	}
	if err := decode(body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Data, nil
}
