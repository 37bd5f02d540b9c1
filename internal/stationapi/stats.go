package stationapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mmcdole/onair/internal/domain"
)

// GetStats returns the dashboard summary
func (c *Client) GetStats(ctx context.Context) (*domain.StationStats, error) {
	var dto StatsDTO
	if err := c.getJSON(ctx, "/stats", nil, &dto); err != nil {
		return nil, err
	}
	return MapStats(dto), nil
}

// StreamURL returns the audio URL for a track
func (c *Client) StreamURL(trackID int64) string {
	return fmt.Sprintf("%s/tracks/%d/stream", c.baseURL, trackID)
}

// AuthHeader returns the Authorization header value for the current session
func (c *Client) AuthHeader() string {
	if tok := c.token(); tok != "" {
		return "Bearer " + tok
	}
	return ""
}

// OpenStream opens the audio stream for a track. The caller closes the body.
// Streams are long-lived so the client timeout does not apply; cancel ctx
// to abort.
func (c *Client) OpenStream(ctx context.Context, trackID int64) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StreamURL(trackID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if h := c.AuthHeader(); h != "" {
		req.Header.Set("Authorization", h)
	}

	streamClient := &http.Client{Transport: c.httpClient.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		resp.Body.Close()
		c.unauthorized()
		return nil, domain.ErrAuthFailed
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &domain.APIError{Status: resp.StatusCode, Message: errorMessage(body)}
	}
	return resp.Body, nil
}
