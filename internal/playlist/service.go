package playlist

import (
	"context"
	"log/slog"
	"slices"

	"github.com/mmcdole/onair/internal/domain"
)

// Service orchestrates playlist client + store operations outside the
// builder: listing, deletion and adding catalog tracks from other screens.
type Service struct {
	client domain.PlaylistRepository
	store  domain.Store
	logger *slog.Logger
}

// NewService creates a new playlist service.
func NewService(client domain.PlaylistRepository, store domain.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, store: store, logger: logger}
}

func (s *Service) FetchPlaylists(ctx context.Context) ([]domain.Playlist, error) {
	playlists, err := s.client.GetPlaylists(ctx)
	if err != nil {
		s.logger.Error("failed to fetch playlists", "error", err)
		return nil, err
	}
	if err := s.store.SavePlaylists(playlists); err != nil {
		s.logger.Error("failed to save playlists", "error", err)
	}
	s.logger.Debug("fetched playlists", "count", len(playlists))
	return playlists, nil
}

// SyncPlaylists serves the cached list when present.
func (s *Service) SyncPlaylists(ctx context.Context) ([]domain.Playlist, error) {
	if playlists, ok := s.store.GetPlaylists(); ok {
		return playlists, nil
	}
	return s.FetchPlaylists(ctx)
}

// FetchPlaylist loads one playlist with its tracks and caches the track list.
func (s *Service) FetchPlaylist(ctx context.Context, id int64) (*domain.Playlist, error) {
	p, err := s.client.GetPlaylist(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch playlist", "error", err, "playlistID", id)
		return nil, err
	}
	if err := s.store.SavePlaylistTracks(id, p.Tracks); err != nil {
		s.logger.Error("failed to save playlist tracks", "error", err, "playlistID", id)
	}
	s.logger.Debug("fetched playlist", "playlistID", id, "count", len(p.Tracks))
	return p, nil
}

// PlaylistTracks returns the cached track list, fetching on a miss.
func (s *Service) PlaylistTracks(ctx context.Context, id int64) ([]domain.Track, error) {
	if tracks, ok := s.store.GetPlaylistTracks(id); ok {
		return tracks, nil
	}
	p, err := s.FetchPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Tracks, nil
}

// AddTracks appends catalog tracks to a saved playlist, skipping ones it
// already holds. Returns how many were added.
func (s *Service) AddTracks(ctx context.Context, playlistID int64, trackIDs []int64) (int, error) {
	p, err := s.client.GetPlaylist(ctx, playlistID)
	if err != nil {
		s.logger.Error("failed to fetch playlist", "error", err, "playlistID", playlistID)
		return 0, err
	}

	ids := make([]int64, 0, len(p.Tracks)+len(trackIDs))
	for _, t := range p.Tracks {
		ids = append(ids, t.ID)
	}
	added := 0
	for _, id := range trackIDs {
		if slices.Contains(ids, id) {
			continue
		}
		ids = append(ids, id)
		added++
	}
	if added == 0 {
		return 0, nil
	}

	if _, err := s.client.ReplacePlaylistTracks(ctx, playlistID, ids); err != nil {
		s.logger.Error("failed to add to playlist", "error", err, "playlistID", playlistID)
		return 0, err
	}
	s.InvalidatePlaylists()
	s.logger.Info("added tracks to playlist", "playlistID", playlistID, "count", added)
	return added, nil
}

// DeletePlaylist removes a playlist. The cached copy is dropped only after
// the backend confirms.
func (s *Service) DeletePlaylist(ctx context.Context, playlistID int64) error {
	if err := s.client.DeletePlaylist(ctx, playlistID); err != nil {
		s.logger.Error("failed to delete playlist", "error", err, "playlistID", playlistID)
		return err
	}
	s.InvalidatePlaylists()
	s.logger.Info("deleted playlist", "playlistID", playlistID)
	return nil
}

// GetPlaylistMembership reports which playlists contain the track, fetching
// uncached track lists as needed.
func (s *Service) GetPlaylistMembership(ctx context.Context, trackID int64) (map[int64]bool, error) {
	playlists, err := s.SyncPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	membership := make(map[int64]bool)
	for _, p := range playlists {
		tracks, err := s.PlaylistTracks(ctx, p.ID)
		if err != nil {
			s.logger.Error("failed to fetch playlist tracks for membership check", "error", err, "playlistID", p.ID)
			continue
		}
		for _, t := range tracks {
			if t.ID == trackID {
				membership[p.ID] = true
				break
			}
		}
	}
	return membership, nil
}

// InvalidatePlaylists drops the playlist list and every cached track list.
func (s *Service) InvalidatePlaylists() {
	s.store.InvalidatePlaylists()
}
