package stationapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/onair/internal/domain"
)

// SetStationLocation sets the timezone slot wall-clock times are expressed in
func (c *Client) SetStationLocation(loc *time.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.location = loc
}

func (c *Client) stationLocation() *time.Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// GetSchedule returns active slots for [start, end). Bounds are sent as
// RFC 3339 UTC.
func (c *Client) GetSchedule(ctx context.Context, start, end time.Time) ([]domain.ScheduleSlot, error) {
	query := url.Values{}
	query.Set("start", start.UTC().Format(time.RFC3339))
	query.Set("end", end.UTC().Format(time.RFC3339))

	body, err := c.doRequest(ctx, request{method: http.MethodGet, path: "/schedules", query: query})
	if err != nil {
		return nil, err
	}
	dtos, err := decodeList[ScheduleSlotDTO](body)
	if err != nil {
		return nil, err
	}
	return MapScheduleSlots(dtos, c.stationLocation()), nil
}

// CreateOneTimeSlot places a playlist at start. The server derives the end
// time from the playlist length and rejects overlaps.
func (c *Client) CreateOneTimeSlot(ctx context.Context, playlistID int64, start time.Time) error {
	_, err := c.doRequest(ctx, request{
		method: http.MethodPost,
		path:   "/schedules",
		body: CreateSlotRequest{
			PlaylistID:   playlistID,
			StartTime:    start.UTC().Format(time.RFC3339),
			ScheduleType: "one_time",
		},
	})
	return err
}

// DeleteSlot removes a placement
func (c *Client) DeleteSlot(ctx context.Context, id int64) error {
	_, err := c.doRequest(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/schedules/%d", id)})
	return err
}
