package library

import (
	"sort"
	"strings"

	"github.com/mmcdole/onair/internal/domain"
	"github.com/mmcdole/onair/internal/search"
)

// SortKey orders the catalog listing
type SortKey int

const (
	SortNewest SortKey = iota
	SortAlphabetical
	SortDuration
	SortArtist
)

// SortKeys lists the keys in the order the sort picker shows them.
var SortKeys = []SortKey{SortNewest, SortAlphabetical, SortDuration, SortArtist}

func (k SortKey) String() string {
	switch k {
	case SortNewest:
		return "Newest"
	case SortAlphabetical:
		return "Title (A-Z)"
	case SortDuration:
		return "Longest"
	case SortArtist:
		return "Artist"
	default:
		return "Unknown"
	}
}

// View returns the tracks matching query in the requested order.
// The input slice is not modified.
func View(tracks []domain.Track, query string, key SortKey) []domain.Track {
	filtered := search.Tracks(query, tracks)
	out := make([]domain.Track, len(filtered))
	copy(out, filtered)
	SortTracks(out, key)
	return out
}

// SortTracks sorts in place. Ties fall back to ID so the order is stable
// across refreshes.
func SortTracks(tracks []domain.Track, key SortKey) {
	less := func(a, b domain.Track) bool {
		switch key {
		case SortAlphabetical:
			if c := compareFold(a.Title, b.Title); c != 0 {
				return c < 0
			}
		case SortDuration:
			if a.Duration != b.Duration {
				return a.Duration > b.Duration
			}
		case SortArtist:
			if c := compareFold(a.Artist, b.Artist); c != 0 {
				return c < 0
			}
			if c := compareFold(a.Title, b.Title); c != 0 {
				return c < 0
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}
		return a.ID < b.ID
	}
	sort.SliceStable(tracks, func(i, j int) bool { return less(tracks[i], tracks[j]) })
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
