// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/slotify/internal/interaction"
	"github.com/javiermolinar/slotify/internal/logging"
	"github.com/javiermolinar/slotify/internal/timegrid"
)

// Config holds the application configuration.
type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	Identity IdentityConfig `toml:"identity"`
	Day      SurfaceConfig  `toml:"day"`
	Week     SurfaceConfig  `toml:"week"`
	TUI      TUIConfig      `toml:"tui"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// IdentityConfig selects the owner activities are scoped to.
// A signed token takes precedence over a plain owner id.
type IdentityConfig struct {
	Owner  string `toml:"owner"`
	Token  string `toml:"token"`
	Secret string `toml:"secret"` // HMAC key for tokens
	Issuer string `toml:"issuer"`
}

// SurfaceConfig is the grid scale and gesture tuning of one calendar surface.
type SurfaceConfig struct {
	HourHeight  float64 `toml:"hour_height"`  // pixels per hour
	SnapMinutes int     `toml:"snap_minutes"` // e.g., 15
	DeadZone    float64 `toml:"dead_zone"`    // pixels
	HoldMS      int     `toml:"hold_ms"`      // press duration before a drag starts
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme       string `toml:"theme"`         // "paper", "paper-dark"
	RowsPerHour int    `toml:"rows_per_hour"` // terminal rows per hour on the day grid
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
	File  string `toml:"file"`  // TUI log destination, empty disables logging
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	Textfile string `toml:"textfile"` // node-exporter textfile written on exit, empty disables
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Identity: IdentityConfig{
			Owner:  defaultOwner(),
			Issuer: "slotify",
		},
		Day: SurfaceConfig{
			HourHeight:  60,
			SnapMinutes: timegrid.DefaultSnap,
			DeadZone:    interaction.DefaultDeadZone,
		},
		Week: SurfaceConfig{
			HourHeight:  timegrid.DefaultHourHeight,
			SnapMinutes: timegrid.DefaultSnap,
			DeadZone:    interaction.DefaultDeadZone,
		},
		TUI: TUIConfig{
			Theme:       "paper",
			RowsPerHour: 4,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "slotify.db"
	}
	return filepath.Join(home, ".local", "share", "slotify", "slotify.db")
}

// defaultOwner uses the login name so a fresh install has an owner.
func defaultOwner() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "slotify", "config.toml")
}

// Path returns the config file in use: $SLOTIFY_CONFIG, or the default path.
func Path() string {
	if p := os.Getenv("SLOTIFY_CONFIG"); p != "" {
		return expandPath(p)
	}
	return DefaultConfigPath()
}

// Load loads configuration from Path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.Metrics.Textfile = expandPath(cfg.Metrics.Textfile)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	return Decode(data, cfg)
}

// Decode overlays the TOML document data onto cfg. Keys missing from data keep their value.
func Decode(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SLOTIFY_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("SLOTIFY_OWNER"); v != "" {
		cfg.Identity.Owner = v
	}
	if v := os.Getenv("SLOTIFY_TOKEN"); v != "" {
		cfg.Identity.Token = v
	}
	if v := os.Getenv("SLOTIFY_SECRET"); v != "" {
		cfg.Identity.Secret = v
	}
	if v := os.Getenv("SLOTIFY_THEME"); v != "" {
		cfg.TUI.Theme = v
	}
	if v := os.Getenv("SLOTIFY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if c.Identity.Token != "" && c.Identity.Secret == "" {
		return errors.New("identity.secret must be set when identity.token is used")
	}
	if err := c.Day.validate("day"); err != nil {
		return err
	}
	if err := c.Week.validate("week"); err != nil {
		return err
	}
	if !IsValidTheme(c.TUI.Theme) {
		return fmt.Errorf("invalid theme: %s (valid: %s)", c.TUI.Theme, strings.Join(Themes, ", "))
	}
	if c.TUI.RowsPerHour < 1 || c.TUI.RowsPerHour > 12 {
		return fmt.Errorf("tui.rows_per_hour must be between 1 and 12, got %d", c.TUI.RowsPerHour)
	}
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	return nil
}

func (s SurfaceConfig) validate(section string) error {
	if s.HourHeight <= 0 {
		return fmt.Errorf("%s.hour_height must be positive, got %v", section, s.HourHeight)
	}
	if s.SnapMinutes <= 0 || 60%s.SnapMinutes != 0 {
		return fmt.Errorf("%s.snap_minutes must divide an hour, got %d", section, s.SnapMinutes)
	}
	if s.DeadZone < 0 {
		return fmt.Errorf("%s.dead_zone must not be negative", section)
	}
	if s.HoldMS < 0 {
		return fmt.Errorf("%s.hold_ms must not be negative", section)
	}
	return nil
}

// Grid returns the time grid of the surface.
func (s SurfaceConfig) Grid() timegrid.Grid {
	return timegrid.New(s.HourHeight, s.SnapMinutes)
}

// MinSnap returns the smaller snap increment of the two surfaces. Both surfaces write
// through one store, so its shortest duration must not undercut either of them.
func (c *Config) MinSnap() int {
	return min(c.Day.SnapMinutes, c.Week.SnapMinutes)
}

// Gestures returns the interaction settings of the surface.
func (s SurfaceConfig) Gestures() interaction.Config {
	cfg := interaction.DefaultConfig(s.Grid())
	cfg.DeadZone = s.DeadZone
	cfg.HoldThreshold = time.Duration(s.HoldMS) * time.Millisecond
	return cfg
}

// Themes lists the bundled TUI themes.
var Themes = []string{"paper", "paper-dark"}

// IsValidTheme reports whether name is a bundled theme.
func IsValidTheme(name string) bool {
	for _, t := range Themes {
		if t == name {
			return true
		}
	}
	return false
}

// Save writes the configuration to Path.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Set updates a single setting addressed as "section.key".
func (c *Config) Set(key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "storage.db_path":
		c.Storage.DBPath = expandPath(value)
	case "identity.owner":
		c.Identity.Owner = value
	case "identity.token":
		c.Identity.Token = value
	case "identity.secret":
		c.Identity.Secret = value
	case "identity.issuer":
		c.Identity.Issuer = value
	case "day.hour_height":
		err = setFloat(&c.Day.HourHeight, value)
	case "day.snap_minutes":
		err = setInt(&c.Day.SnapMinutes, value)
	case "day.dead_zone":
		err = setFloat(&c.Day.DeadZone, value)
	case "day.hold_ms":
		err = setInt(&c.Day.HoldMS, value)
	case "week.hour_height":
		err = setFloat(&c.Week.HourHeight, value)
	case "week.snap_minutes":
		err = setInt(&c.Week.SnapMinutes, value)
	case "tui.theme":
		c.TUI.Theme = value
	case "tui.rows_per_hour":
		err = setInt(&c.TUI.RowsPerHour, value)
	case "log.level":
		c.Log.Level = value
	case "log.file":
		c.Log.File = expandPath(value)
	case "metrics.textfile":
		c.Metrics.Textfile = expandPath(value)
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return c.Validate()
}

func setInt(dst *int, value string) error {
	var v int
	if _, err := fmt.Sscanf(value, "%d", &v); err != nil {
		return fmt.Errorf("expected an integer, got %q", value)
	}
	*dst = v
	return nil
}

func setFloat(dst *float64, value string) error {
	var v float64
	if _, err := fmt.Sscanf(value, "%g", &v); err != nil {
		return fmt.Errorf("expected a number, got %q", value)
	}
	*dst = v
	return nil
}
