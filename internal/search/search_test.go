package search

import (
	"testing"

	"github.com/mmcdole/onair/internal/domain"
)

var catalog = []domain.Track{
	{ID: 1, Title: "Around the World", Artist: "Daft Punk", Genre: "House"},
	{ID: 2, Title: "Windowlicker", Artist: "Aphex Twin", Genre: "IDM"},
	{ID: 3, Title: "Teardrop", Artist: "Massive Attack", Album: "Mezzanine"},
	{ID: 4, Title: "One More Time", Artist: "Daft Punk", Genre: "House"},
}

func ids(tracks []domain.Track) []int64 {
	out := make([]int64, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func TestTracks(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{"empty query returns all", "", []int64{1, 2, 3, 4}},
		{"artist keeps input order", "daft punk", []int64{1, 4}},
		{"word order ignored", "punk daft", []int64{1, 4}},
		{"prefix", "tear", []int64{3}},
		{"album", "mezzanine", []int64{3}},
		{"typo tolerated", "windowlikcer", []int64{2}},
		{"all tokens required", "daft teardrop", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Tracks(tt.query, catalog))
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Expected %v, got %v", tt.want, got)
					break
				}
			}
		})
	}
}

func TestRankTracksPrefersTitle(t *testing.T) {
	tracks := []domain.Track{
		{ID: 1, Title: "Intro", Genre: "House"},
		{ID: 2, Title: "House"},
	}
	got := RankTracks("house", tracks)
	if len(got) != 2 || got[0].ID != 2 {
		t.Errorf("Expected title match first, got %v", ids(got))
	}
}

func TestPlaylists(t *testing.T) {
	playlists := []domain.Playlist{
		{ID: 1, Name: "Morning Drive"},
		{ID: 2, Name: "Late Night Jazz"},
		{ID: 3, Name: "Weekend Mix"},
	}

	if got := Playlists("", playlists); len(got) != 3 {
		t.Errorf("Expected all playlists for empty query, got %d", len(got))
	}

	got := Playlists("jazz", playlists)
	if len(got) != 1 || got[0].Playlist.ID != 2 {
		t.Fatalf("Expected only Late Night Jazz, got %+v", got)
	}
	if len(got[0].MatchedIndexes) != 4 {
		t.Errorf("Expected 4 highlighted runes, got %v", got[0].MatchedIndexes)
	}
}

func TestQuickPick(t *testing.T) {
	got := QuickPick("daft", catalog, 0)
	if len(got) != 2 {
		t.Fatalf("Expected 2 Daft Punk tracks, got %v", ids(got))
	}

	if got := QuickPick("daft", catalog, 1); len(got) != 1 {
		t.Errorf("Expected limit to cap results, got %d", len(got))
	}
	if got := QuickPick("   ", catalog, 0); got != nil {
		t.Errorf("Expected nil for blank query, got %v", ids(got))
	}
	if got := QuickPick("zzz", catalog, 0); len(got) != 0 {
		t.Errorf("Expected no results, got %v", ids(got))
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		if got := levenshtein([]rune(tt.a), []rune(tt.b)); got != tt.want {
			t.Errorf("levenshtein(%q, %q): Expected %d, got %d", tt.a, tt.b, tt.want, got)
		}
	}
}
