package playlist

import "github.com/mmcdole/onair/internal/domain"

// Queries provides synchronous, cache-only reads.
type Queries struct {
	store domain.Store
}

// NewQueries creates a new Queries instance.
func NewQueries(store domain.Store) *Queries {
	return &Queries{store: store}
}

func (q *Queries) GetCachedPlaylists() ([]domain.Playlist, bool) {
	return q.store.GetPlaylists()
}

func (q *Queries) GetCachedPlaylistTracks(playlistID int64) ([]domain.Track, bool) {
	return q.store.GetPlaylistTracks(playlistID)
}
