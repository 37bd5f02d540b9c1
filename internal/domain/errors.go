package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrServerOffline indicates the station backend is unreachable
	ErrServerOffline = errors.New("station server is unreachable")

	// ErrAuthFailed indicates the bearer token was rejected
	ErrAuthFailed = errors.New("authentication token is invalid")

	// ErrNotLoggedIn indicates no session is held
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrEmptyPlaylist is returned when saving a playlist with no tracks
	ErrEmptyPlaylist = errors.New("playlist has no tracks")

	// ErrEmptyName is returned when saving a playlist without a name
	ErrEmptyName = errors.New("playlist name is empty")

	// ErrIndexOutOfRange is returned for reorder positions outside the list
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrGestureInProgress is returned when a placement is already pending
	ErrGestureInProgress = errors.New("another placement is in progress")

	// ErrNoGesture is returned when dropping without a picked playlist
	ErrNoGesture = errors.New("no playlist picked")

	// ErrNothingPlaying is returned by transport controls with no current track
	ErrNothingPlaying = errors.New("nothing is playing")
)

// APIError is a non-auth rejection from the backend (4xx other than 401).
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server rejected request (%d %s)", e.Status, http.StatusText(e.Status))
}

// Is lets errors.Is(err, ErrNotFound) match a 404.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// ValidationError is a local rejection raised before any network call.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid wraps err as a ValidationError on field.
func Invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err was raised locally without touching the network.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsRejected reports whether the backend answered with a client error.
func IsRejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsAuth reports whether err means the session is no longer usable.
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrNotLoggedIn)
}
