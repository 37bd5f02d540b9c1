package stationapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmcdole/onair/internal/domain"
)

// GetTracks returns one page of the catalog, newest first.
// offset is converted to the backend's 1-based page number.
func (c *Client) GetTracks(ctx context.Context, offset, limit int) ([]domain.Track, int, error) {
	return c.SearchTracks(ctx, "", offset, limit)
}

// SearchTracks is GetTracks with the backend's title/artist filter applied
func (c *Client) SearchTracks(ctx context.Context, search string, offset, limit int) ([]domain.Track, int, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(offset/limit+1))
	query.Set("limit", strconv.Itoa(limit))
	if search != "" {
		query.Set("search", search)
	}

	var page TrackPage
	if err := c.getJSON(ctx, "/tracks", query, &page); err != nil {
		return nil, 0, err
	}

	tracks := MapTracks(page.Data)
	total := offset + len(tracks)
	if page.Meta != nil && page.Meta.Total > 0 {
		total = page.Meta.Total
	}
	return tracks, total, nil
}

// GetTrack returns a single track
func (c *Client) GetTrack(ctx context.Context, id int64) (*domain.Track, error) {
	var dto TrackDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/tracks/%d", id), nil, &dto); err != nil {
		return nil, err
	}
	t := MapTrack(dto)
	return &t, nil
}

// UpdateTrack edits track metadata
func (c *Client) UpdateTrack(ctx context.Context, id int64, update domain.TrackUpdate) (*domain.Track, error) {
	body, err := c.doRequest(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/tracks/%d", id),
		body:   update,
	})
	if err != nil {
		return nil, err
	}

	var dto TrackDTO
	if err := decode(body, &dto); err != nil || dto.ID == 0 {
		// some servers answer with a status object; fall back to a re-read
		return c.GetTrack(ctx, id)
	}
	t := MapTrack(dto)
	return &t, nil
}
