package stationapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/onair/internal/domain"
)

// GetPlaylists returns all playlists without tracks
func (c *Client) GetPlaylists(ctx context.Context) ([]domain.Playlist, error) {
	body, err := c.doRequest(ctx, request{method: http.MethodGet, path: "/playlists"})
	if err != nil {
		return nil, err
	}
	dtos, err := decodeList[PlaylistDTO](body)
	if err != nil {
		return nil, err
	}
	return MapPlaylists(dtos), nil
}

// GetPlaylist returns a playlist with its tracks in playlist order
func (c *Client) GetPlaylist(ctx context.Context, id int64) (*domain.Playlist, error) {
	var dto PlaylistDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/playlists/%d", id), nil, &dto); err != nil {
		return nil, err
	}
	p := MapPlaylist(dto, true)
	return &p, nil
}

// CreatePlaylist creates an empty playlist
func (c *Client) CreatePlaylist(ctx context.Context, meta domain.PlaylistMeta) (*domain.Playlist, error) {
	req := CreatePlaylistRequest{
		Name:        meta.Name,
		Description: meta.Description,
		Color:       meta.Color,
	}
	if req.Name == "" {
		req.Name = domain.DefaultPlaylistName
	}
	if req.Color == "" {
		req.Color = domain.DefaultPlaylistColor
	}

	body, err := c.doRequest(ctx, request{method: http.MethodPost, path: "/playlists", body: req})
	if err != nil {
		return nil, err
	}

	var dto PlaylistDTO
	if err := decode(body, &dto); err != nil {
		return nil, err
	}
	p := MapPlaylist(dto, true)
	return &p, nil
}

// UpdatePlaylist changes name, description and color
func (c *Client) UpdatePlaylist(ctx context.Context, id int64, meta domain.PlaylistMeta) error {
	_, err := c.doRequest(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/playlists/%d", id),
		body: UpdatePlaylistRequest{
			Name:        meta.Name,
			Description: meta.Description,
			Color:       meta.Color,
		},
	})
	return err
}

// ReplacePlaylistTracks sets the ordered track list and returns the new
// total duration in seconds
func (c *Client) ReplacePlaylistTracks(ctx context.Context, id int64, trackIDs []int64) (int, error) {
	if trackIDs == nil {
		trackIDs = []int64{}
	}
	body, err := c.doRequest(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/playlists/%d/tracks", id),
		body:   ReplaceTracksRequest{TrackIDs: trackIDs},
	})
	if err != nil {
		return 0, err
	}

	var resp ReplaceTracksResponse
	if err := decode(body, &resp); err != nil {
		return 0, err
	}
	return seconds(resp.TotalDuration), nil
}

// DeletePlaylist removes a playlist
func (c *Client) DeletePlaylist(ctx context.Context, id int64) error {
	_, err := c.doRequest(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/playlists/%d", id)})
	return err
}
