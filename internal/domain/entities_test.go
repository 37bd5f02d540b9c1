package domain

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{65, "1:05"},
		{599, "9:59"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d): expected %s, got %s", tt.seconds, tt.want, got)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"08:30", TimeOfDay{8, 30}, false},
		{"23:59:00", TimeOfDay{23, 59}, false},
		{"24:00", TimeOfDay{24, 0}, false},
		{"24:30", TimeOfDay{}, true},
		{"7", TimeOfDay{}, true},
		{"ab:cd", TimeOfDay{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseScheduleType(t *testing.T) {
	for _, in := range []string{"one_time", "one-time", "", "ONE_TIME"} {
		if got := ParseScheduleType(in); got != ScheduleOneTime {
			t.Errorf("ParseScheduleType(%q): expected one-time, got %s", in, got)
		}
	}
	if got := ParseScheduleType("recurring"); got != ScheduleRecurring {
		t.Errorf("Expected recurring, got %s", got)
	}
}

func TestSessionValid(t *testing.T) {
	now := time.Now()

	if (Session{}).Valid(now) {
		t.Error("Expected empty session to be invalid")
	}
	if !(Session{Token: "t"}).Valid(now) {
		t.Error("Expected session without expiry to be valid")
	}
	if (Session{Token: "t", ExpiresAt: now.Add(-time.Minute)}).Valid(now) {
		t.Error("Expected expired session to be invalid")
	}
}

func TestErrorClassification(t *testing.T) {
	notFound := &APIError{Status: http.StatusNotFound}
	if !errors.Is(notFound, ErrNotFound) {
		t.Error("Expected 404 APIError to match ErrNotFound")
	}
	if !IsRejected(notFound) {
		t.Error("Expected APIError to be a rejection")
	}

	v := Invalid("tracks", ErrEmptyPlaylist)
	if !IsValidation(v) || !errors.Is(v, ErrEmptyPlaylist) {
		t.Error("Expected validation error wrapping ErrEmptyPlaylist")
	}
	if IsRejected(v) {
		t.Error("Expected validation error not to be a rejection")
	}
}

func TestNowPlayingRemaining(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	np := NowPlaying{EndsAt: now.Add(95 * time.Second)}
	if got := np.Remaining(now); got != 95*time.Second {
		t.Errorf("Expected 95s, got %v", got)
	}
	if got := np.Remaining(now.Add(time.Hour)); got != 0 {
		t.Errorf("Expected 0 past the end, got %v", got)
	}
}
