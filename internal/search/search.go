package search

import (
	"fmt"
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/onair/internal/domain"
	"github.com/sahilm/fuzzy"
)

// trackDocuments builds search documents from tracks, title first
func trackDocuments(tracks []domain.Track) []Document {
	docs := make([]Document, len(tracks))
	for i, t := range tracks {
		docs[i] = Document{Fields: []string{t.Title, t.Artist, t.Album, t.Genre}}
	}
	return docs
}

// Tracks returns the tracks matching query, keeping their input order so a
// caller's sort survives filtering. An empty query returns all tracks.
func Tracks(query string, tracks []domain.Track) []domain.Track {
	if strings.TrimSpace(query) == "" {
		return tracks
	}
	idx := TrackIndexes(query, tracks)
	out := make([]domain.Track, len(idx))
	for i, j := range idx {
		out[i] = tracks[j]
	}
	return out
}

// TrackIndexes returns the positions of the matching tracks in input order.
func TrackIndexes(query string, tracks []domain.Track) []int {
	matches := FuzzySearch(query, trackDocuments(tracks))
	idx := make([]int, len(matches))
	for i, m := range matches {
		idx[i] = m.Index
	}
	sort.Ints(idx)
	return idx
}

// RankTracks returns the matching tracks best match first.
func RankTracks(query string, tracks []domain.Track) []domain.Track {
	matches := FuzzySearch(query, trackDocuments(tracks))
	out := make([]domain.Track, len(matches))
	for i, m := range matches {
		out[i] = tracks[m.Index]
	}
	return out
}

// PlaylistResult is a sidebar match with the highlighted name positions.
type PlaylistResult struct {
	Playlist       domain.Playlist
	MatchedIndexes []int
}

type playlistSource []domain.Playlist

func (p playlistSource) String(i int) string { return p[i].Name }
func (p playlistSource) Len() int            { return len(p) }

// Playlists filters playlists by name for the schedule sidebar.
// An empty query returns every playlist unhighlighted.
func Playlists(query string, playlists []domain.Playlist) []PlaylistResult {
	if strings.TrimSpace(query) == "" {
		out := make([]PlaylistResult, len(playlists))
		for i, p := range playlists {
			out[i] = PlaylistResult{Playlist: p}
		}
		return out
	}
	matches := fuzzy.FindFrom(query, playlistSource(playlists))
	out := make([]PlaylistResult, len(matches))
	for i, m := range matches {
		out[i] = PlaylistResult{Playlist: playlists[m.Index], MatchedIndexes: m.MatchedIndexes}
	}
	return out
}

// QuickPickLabel is the text a quick-pick query is matched against.
func QuickPickLabel(t domain.Track) string {
	return fmt.Sprintf("%s - %s", t.DisplayArtist(), t.Title)
}

// QuickPick ranks tracks for the builder's quick-add prompt: characters of
// the query must appear in order in "artist - title", closest match first.
// At most limit results are returned (limit <= 0 means no cap).
func QuickPick(query string, tracks []domain.Track, limit int) []domain.Track {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	labels := make([]string, len(tracks))
	for i, t := range tracks {
		labels[i] = QuickPickLabel(t)
	}
	ranks := lfuzzy.RankFindNormalizedFold(query, labels)
	sort.Stable(ranks)

	if limit > 0 && len(ranks) > limit {
		ranks = ranks[:limit]
	}
	out := make([]domain.Track, len(ranks))
	for i, r := range ranks {
		out[i] = tracks[r.OriginalIndex]
	}
	return out
}
