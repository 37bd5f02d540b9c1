package domain

// Store handles local cache (BoltDB + memory).
// Services write through it after backend calls; the TUI reads cached
// data through the services' Queries.
type Store interface {
	// === Catalog ===
	GetTracks() ([]Track, bool)
	SaveTracks(tracks []Track) error
	UpdateCachedTrack(track Track) error

	// === Playlists ===
	GetPlaylists() ([]Playlist, bool)
	SavePlaylists(playlists []Playlist) error

	GetPlaylistTracks(playlistID int64) ([]Track, bool)
	SavePlaylistTracks(playlistID int64, tracks []Track) error

	// === Session ===
	GetSession() (Session, bool)
	SaveSession(session Session) error
	ClearSession() error

	// === Invalidation ===
	InvalidateTracks()
	InvalidatePlaylists()
	InvalidatePlaylist(playlistID int64)
	InvalidateAll()

	Close() error
}
