package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PlayerBackend selects how previews are played
type PlayerBackend string

const (
	PlayerSpeaker  PlayerBackend = "speaker"  // decode in-process and play on the default audio device
	PlayerExternal PlayerBackend = "external" // hand the stream URL to mpv, vlc, ...
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Station StationConfig `mapstructure:"station"`
	Player  PlayerConfig  `mapstructure:"player"`
	UI      UIConfig      `mapstructure:"ui"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds station backend configuration
type ServerConfig struct {
	URL     string        `mapstructure:"url"` // e.g. http://radio.local:8080/api/v1
	Timeout time.Duration `mapstructure:"timeout"`
}

// StationConfig describes the station the console administers
type StationConfig struct {
	Timezone string `mapstructure:"timezone"` // IANA name, schedule grid is drawn in this zone
}

// PlayerConfig holds preview player configuration
type PlayerConfig struct {
	Backend PlayerBackend `mapstructure:"backend"`
	Command string        `mapstructure:"command"`
	Args    []string      `mapstructure:"args"`
	Volume  float64       `mapstructure:"volume"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultScreen    string `mapstructure:"default_screen"`
	WeekStartsMonday bool   `mapstructure:"week_starts_monday"`
}

// CacheConfig controls the local catalog cache
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Timeout: 30 * time.Second,
		},
		Station: StationConfig{
			Timezone: "UTC",
		},
		Player: PlayerConfig{
			Backend: PlayerSpeaker,
			Args:    []string{},
			Volume:  0.8,
		},
		UI: UIConfig{
			DefaultScreen:    "dashboard",
			WeekStartsMonday: true,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "onair", "onair.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "onair", "onair.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "onair")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "onair")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "onair", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "onair", "cache")
	}
}

// LoadConfig loads configuration from .env, the config file and the environment
func LoadConfig() (*Config, error) {
	// .env is optional; a missing file is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// ONAIR_SERVER_URL overrides server.url and so on
	viper.SetEnvPrefix("ONAIR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range []string{"server.url", "station.timezone", "player.backend", "logging.level"} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later in confusing ways
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Station.Timezone); err != nil {
		return fmt.Errorf("invalid station.timezone %q: %w", c.Station.Timezone, err)
	}
	switch c.Player.Backend {
	case PlayerSpeaker, PlayerExternal:
	case "":
		c.Player.Backend = PlayerSpeaker
	default:
		return fmt.Errorf("invalid player.backend %q (want speaker or external)", c.Player.Backend)
	}
	if c.Player.Volume < 0 || c.Player.Volume > 1 {
		return fmt.Errorf("invalid player.volume %v (want 0..1)", c.Player.Volume)
	}
	return nil
}

// Location returns the station timezone, UTC if it cannot be loaded
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Station.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsConfigured returns true if the server URL is set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != ""
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("server.url", cfg.Server.URL)
	viper.Set("server.timeout", cfg.Server.Timeout.String())

	viper.Set("station.timezone", cfg.Station.Timezone)

	viper.Set("player.backend", string(cfg.Player.Backend))
	viper.Set("player.command", cfg.Player.Command)
	viper.Set("player.args", cfg.Player.Args)
	viper.Set("player.volume", cfg.Player.Volume)

	viper.Set("ui.default_screen", cfg.UI.DefaultScreen)
	viper.Set("ui.week_starts_monday", cfg.UI.WeekStartsMonday)

	viper.Set("cache.enabled", cfg.Cache.Enabled)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ClearServerConfig removes the server URL while preserving other settings
func ClearServerConfig() error {
	viper.Set("server.url", "")

	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Watch calls onChange with the re-read configuration whenever the config
// file changes on disk. Invalid edits are reported through onError and the
// previous configuration stays in effect.
func Watch(onChange func(*Config), onError func(error)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg := DefaultConfig()
		if err := viper.Unmarshal(cfg); err != nil {
			if onError != nil {
				onError(fmt.Errorf("error parsing config: %w", err))
			}
			return
		}
		if err := cfg.Validate(); err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	viper.WatchConfig()
}

// ClearCache removes all cached data
func ClearCache() error {
	cachePath := defaultCachePath()
	if err := os.RemoveAll(cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// GetCachePath returns the cache directory path
func GetCachePath() string {
	return defaultCachePath()
}
