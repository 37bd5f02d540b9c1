package stationapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/mmcdole/onair/internal/domain"
)

// Login exchanges credentials for a bearer token. Bad credentials come back
// as domain.ErrAuthFailed without triggering the session-expired handler.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	body, err := c.doRequest(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   LoginRequest{Username: username, Password: password},
		public: true,
	})
	if err != nil {
		return nil, err
	}

	var resp LoginResponse
	if err := decode(body, &resp); err != nil {
		return nil, err
	}
	session := MapSession(resp)
	if session.Token == "" {
		return nil, errors.New("login response did not include a token")
	}
	if session.User.Username == "" {
		session.User.Username = username
	}
	return &session, nil
}
