package library

import "github.com/mmcdole/onair/internal/domain"

// Queries provides synchronous, cache-only reads.
type Queries struct {
	store domain.Store
}

// NewQueries creates a new Queries instance.
func NewQueries(store domain.Store) *Queries {
	return &Queries{store: store}
}

func (q *Queries) GetCachedTracks() ([]domain.Track, bool) {
	return q.store.GetTracks()
}

// TrackByID looks a track up in the cached catalog.
func (q *Queries) TrackByID(id int64) (domain.Track, bool) {
	tracks, ok := q.store.GetTracks()
	if !ok {
		return domain.Track{}, false
	}
	for _, t := range tracks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Track{}, false
}
