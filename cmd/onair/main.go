package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/onair/internal/config"
	"github.com/mmcdole/onair/internal/dashboard"
	"github.com/mmcdole/onair/internal/library"
	"github.com/mmcdole/onair/internal/log"
	"github.com/mmcdole/onair/internal/player"
	"github.com/mmcdole/onair/internal/playlist"
	"github.com/mmcdole/onair/internal/schedule"
	"github.com/mmcdole/onair/internal/session"
	"github.com/mmcdole/onair/internal/stationapi"
	"github.com/mmcdole/onair/internal/store"
	"github.com/mmcdole/onair/internal/tui"
	"github.com/mmcdole/onair/internal/tui/styles"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                              \r"

const usage = `Usage: onair [flags] [command]

Commands:
  login    Log in from the terminal and keep the session
  logout   Forget the stored session
  reset    Forget the server and clear the local cache

Flags:
`

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("onair %s\n", Version)
		return
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds everything built from the configuration
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.StationStore
	client   *stationapi.Client
	sessions *session.Manager
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close cache", "error", err)
	}
}

func run(command string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := log.NullLogger()
	var logFile io.Closer
	if l, closer, err := log.Setup(cfg.Logging); err == nil {
		logger, logFile = l, closer
	}
	if logFile != nil {
		defer logFile.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting onair", "version", Version, "command", command)

	switch command {
	case "":
	case "reset":
		return runReset()
	case "login", "logout":
		if !cfg.IsConfigured() {
			return errors.New("no station server configured, run onair first")
		}
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}

	if !cfg.IsConfigured() {
		return runSetupFlow(cfg, logger)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	switch command {
	case "login":
		return runLogin(a)
	case "logout":
		if err := a.sessions.Logout(); err != nil {
			return fmt.Errorf("failed to log out: %w", err)
		}
		fmt.Println("✓ Logged out")
		return nil
	}
	return runTUI(a)
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	cacheDir := ""
	if cfg.Cache.Enabled {
		cacheDir = config.GetCachePath()
	}
	st, err := store.NewStationStore(cacheDir, cfg.Server.URL)
	if err != nil {
		logger.Warn("falling back to memory cache", "error", err)
		st, _ = store.NewStationStore("", "")
	}

	client := stationapi.NewClient(cfg.Server.URL, cfg.Server.Timeout, logger)
	client.SetStationLocation(cfg.Location())

	sessions := session.NewManager(client, st, logger)
	client.UseSession(sessions, sessions.Expire)

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		client:   client,
		sessions: sessions,
	}, nil
}

func newPlayer(cfg *config.Config, client *stationapi.Client, logger *slog.Logger) *player.Session {
	var el player.MediaElement
	switch cfg.Player.Backend {
	case config.PlayerExternal:
		launcher := player.NewLauncher(cfg.Player.Command, cfg.Player.Args, logger)
		el = player.NewExternalElement(launcher, client)
	default:
		el = player.NewSpeakerElement(client, logger)
	}
	return player.NewSession(el, cfg.Player.Volume, logger)
}

func runTUI(a *app) error {
	cfg, logger := a.cfg, a.logger
	loc := cfg.Location()

	playlistSvc := playlist.NewService(a.client, a.store, logger)
	preview := newPlayer(cfg, a.client, logger)
	defer preview.Close()

	relay := tui.NewEventRelay(64)
	a.sessions.OnChange(relay.OnSession)
	preview.OnChange(relay.OnPlayback)

	config.Watch(func(c *config.Config) {
		log.SetLevel(c.Logging.Level)
		logger.Info("config reloaded", "level", c.Logging.Level)
	}, func(err error) {
		logger.Warn("ignoring config change", "error", err)
	})

	svc := tui.Services{
		Sessions:  a.sessions,
		Dashboard: dashboard.NewService(a.client, logger),
		Library:   library.NewService(a.client, a.store, logger),
		Catalog:   library.NewQueries(a.store),
		Playlists: playlistSvc,
		Drafts:    a.client,
		Planner:   schedule.NewPlanner(a.client, a.client, loc, logger),
		Player:    preview,
		Logger:    logger,
	}
	opts := tui.Options{
		DefaultScreen:    cfg.UI.DefaultScreen,
		WeekStartsMonday: cfg.UI.WeekStartsMonday,
		ServerURL:        cfg.Server.URL,
		Version:          Version,
	}

	p := tea.NewProgram(
		tui.NewModel(svc, opts, relay),
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI", "server", cfg.Server.URL, "timezone", loc.String())

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow asks for the station server and checks it answers
func runSetupFlow(cfg *config.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to OnAir!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	var serverURL string
	for {
		fmt.Print("Enter your station server URL (e.g., http://radio.local:8080/api/v1): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		serverURL = strings.TrimRight(strings.TrimSpace(input), "/")

		if serverURL == "" {
			fmt.Println("Server URL cannot be empty. Please try again.")
			continue
		}

		fmt.Println()
		client := stationapi.NewClient(serverURL, cfg.Server.Timeout, logger)
		if err := pingWithSpinner(client); err != nil {
			fmt.Printf("\n✗ Could not reach the station: %v\n", err)
			fmt.Println("Please check the URL and try again.")
			fmt.Println()
			continue
		}
		break
	}

	cfg.Server.URL = serverURL
	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run onair again to log in and start the console.")

	return nil
}

// pingWithSpinner checks the server with a visual spinner
func pingWithSpinner(client *stationapi.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- client.Ping(ctx)
	}()

	frame := 0
	fmt.Printf("\r%s Contacting station server...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Connected: %s\n", client.BaseURL())
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Contacting station server...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return errors.New("timed out")
		}
	}
}

// runLogin authenticates from the terminal; the session is kept in the
// cache so the next start skips the login screen
func runLogin(a *app) error {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Username: ")
	input, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	username := strings.TrimSpace(input)

	fmt.Print("Password: ")
	var password string
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	} else {
		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(input, "\r\n")
	}

	if username == "" || password == "" {
		return errors.New("username and password are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.Timeout)
	defer cancel()
	s, err := a.sessions.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Printf("✓ Logged in as %s\n", s.User.Username)
	return nil
}

// runReset forgets the server and removes cached data
func runReset() error {
	if err := config.ClearServerConfig(); err != nil {
		return err
	}
	if err := config.ClearCache(); err != nil {
		return err
	}
	fmt.Println("✓ Server configuration and cache cleared")
	return nil
}
