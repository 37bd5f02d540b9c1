package library

import (
	"context"
	"log/slog"

	"github.com/mmcdole/onair/internal/domain"
)

// Service orchestrates catalog client + store operations.
type Service struct {
	client domain.TrackRepository
	store  domain.Store
	logger *slog.Logger
}

// NewService creates a new library service.
func NewService(client domain.TrackRepository, store domain.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, store: store, logger: logger}
}

// SyncCatalog serves the cached catalog when present, fetching otherwise.
func (s *Service) SyncCatalog(ctx context.Context, onProgress domain.ProgressFunc) (domain.SyncResult, error) {
	if tracks, ok := s.store.GetTracks(); ok {
		s.logger.Debug("catalog cached", "count", len(tracks))
		return domain.SyncResult{FromCache: true, Count: len(tracks)}, nil
	}

	tracks, err := s.FetchTracks(ctx, onProgress)
	if err != nil {
		return domain.SyncResult{}, err
	}
	return domain.SyncResult{Count: len(tracks)}, nil
}

// FetchTracks downloads the full catalog and replaces the cached copy.
func (s *Service) FetchTracks(ctx context.Context, onProgress domain.ProgressFunc) ([]domain.Track, error) {
	tracks, err := fetchAll(ctx, s.client.GetTracks, defaultChunkSize, onProgress)
	if err != nil {
		s.logger.Error("failed to fetch tracks", "error", err)
		return nil, err
	}
	tracks = dedupe(tracks)
	if err := s.store.SaveTracks(tracks); err != nil {
		s.logger.Error("failed to save tracks", "error", err)
	}
	s.logger.Debug("fetched tracks", "count", len(tracks))
	return tracks, nil
}

// UpdateTrack edits metadata on the server and patches the cached copy.
func (s *Service) UpdateTrack(ctx context.Context, id int64, update domain.TrackUpdate) (*domain.Track, error) {
	track, err := s.client.UpdateTrack(ctx, id, update)
	if err != nil {
		s.logger.Error("failed to update track", "error", err, "trackID", id)
		return nil, err
	}
	if err := s.store.UpdateCachedTrack(*track); err != nil {
		s.logger.Error("failed to update cached track", "error", err, "trackID", id)
	}
	// playlists embed track copies
	s.store.InvalidatePlaylists()
	s.logger.Info("updated track", "trackID", id, "title", track.Title)
	return track, nil
}

// InvalidateCatalog drops the cached catalog so the next sync refetches.
func (s *Service) InvalidateCatalog() {
	s.store.InvalidateTracks()
}

// dedupe drops repeated IDs that appear when the catalog shifts between
// page requests (a new upload pushes an item onto the next page).
func dedupe(tracks []domain.Track) []domain.Track {
	seen := make(map[int64]bool, len(tracks))
	out := tracks[:0]
	for _, t := range tracks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}
