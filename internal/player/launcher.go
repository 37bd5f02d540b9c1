package player

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Launcher hands a stream URL to an external audio player
type Launcher struct {
	command string   // configured player command, empty to auto-detect
	args    []string // additional arguments for the player
	logger  *slog.Logger

	lookPath func(string) (string, error)
	start    func(name string, args ...string) error
}

// playerConfig describes how to pass the bearer token to a player
type playerConfig struct {
	// headerArgs builds the arguments that attach an HTTP header, nil when
	// the player cannot send one
	headerArgs func(header string) []string
	// quietArgs keep the player from opening a window
	quietArgs []string
}

// players registry - single source of truth for player configuration
var players = map[string]playerConfig{
	"mpv": {
		headerArgs: func(h string) []string { return []string{"--http-header-fields=" + h} },
		quietArgs:  []string{"--no-video", "--force-window=no"},
	},
	"ffplay": {
		headerArgs: func(h string) []string { return []string{"-headers", h + "\r\n"} },
		quietArgs:  []string{"-nodisp", "-autoexit", "-loglevel", "error"},
	},
	"mplayer": {
		headerArgs: func(h string) []string { return []string{"-http-header-fields", h} },
		quietArgs:  []string{"-novideo", "-really-quiet"},
	},
	"vlc": {
		quietArgs: []string{"--intf", "dummy", "--play-and-exit"},
	},
}

// candidatePlayers defines the preferred player order for each platform
var candidatePlayers = map[string][]string{
	"darwin":  {"mpv", "ffplay", "vlc"},
	"linux":   {"mpv", "ffplay", "mplayer", "vlc"},
	"windows": {"mpv", "ffplay", "vlc"},
}

// NewLauncher creates a launcher. An empty command auto-detects a player.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		args:     args,
		logger:   logger,
		lookPath: exec.LookPath,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

func playerName(command string) string {
	base := strings.ToLower(filepath.Base(command))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// buildArgs assembles the argument list for a known or configured player.
// authHeader is a full "Authorization: Bearer ..." line or empty.
func buildArgs(name string, extra []string, url, authHeader string) []string {
	var args []string
	if cfg, ok := players[name]; ok {
		args = append(args, cfg.quietArgs...)
		if authHeader != "" && cfg.headerArgs != nil {
			args = append(args, cfg.headerArgs(authHeader)...)
		}
	}
	args = append(args, extra...)
	return append(args, url)
}

// Launch starts a player on url. The configured command wins; otherwise
// the platform candidates are tried in order.
func (l *Launcher) Launch(url, authHeader string) (string, error) {
	if l.command != "" {
		name := playerName(l.command)
		if _, ok := players[name]; ok && authHeader != "" && players[name].headerArgs == nil {
			l.logger.Warn("player cannot send auth headers, stream may be refused", "command", l.command)
		}
		args := buildArgs(name, l.args, url, authHeader)
		l.logger.Info("launching player", "command", l.command, "url", url)
		if err := l.start(l.command, args...); err != nil {
			return "", fmt.Errorf("failed to launch %s: %w", l.command, err)
		}
		return name, nil
	}

	candidates, ok := candidatePlayers[runtime.GOOS]
	if !ok {
		candidates = candidatePlayers["linux"]
	}
	for _, name := range candidates {
		path, err := l.lookPath(name)
		if err != nil {
			l.logger.Debug("player not available", "player", name)
			continue
		}
		if err := l.start(path, buildArgs(name, l.args, url, authHeader)...); err != nil {
			l.logger.Debug("player failed to start", "player", name, "error", err)
			continue
		}
		l.logger.Info("launched with detected player", "player", name, "path", path)
		return name, nil
	}
	return "", fmt.Errorf("no audio player found (tried %s)", strings.Join(candidates, ", "))
}
