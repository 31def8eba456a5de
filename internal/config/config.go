package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultDecksURL is the upstream listing of preconstructed decks.
const DefaultDecksURL = "https://raw.githubusercontent.com/taw/magic-preconstructed-decks-data/master/decks.json"

// Config represents the builder configuration.
type Config struct {
	// Input and output locations
	Paths PathsConfig `toml:"paths"`

	// Deck source and join settings
	Decks DecksConfig `toml:"decks"`

	// Logging configuration
	Log LogConfig `toml:"log"`

	// HTTP API configuration
	Server ServerConfig `toml:"server"`
}

// PathsConfig contains filesystem locations.
type PathsConfig struct {
	OutputDir    string `toml:"output_dir"`    // Root output directory
	AllPrintings string `toml:"all_printings"` // Path to AllPrintings.json (defaults inside output_dir)
	ReferralMap  string `toml:"referral_map"`  // Path to the referral map file (defaults inside output_dir)
	Database     string `toml:"database"`      // SQLite database path (empty disables persistence)
}

// DecksConfig contains deck source and join settings.
type DecksConfig struct {
	SourceURL         string  `toml:"source_url"`          // Precon deck listing URL
	Workers           int     `toml:"workers"`             // Match workers (0 = available parallelism)
	RequestTimeout    string  `toml:"request_timeout"`     // HTTP timeout (e.g., "30s")
	UserAgent         string  `toml:"user_agent"`          // HTTP User-Agent
	RequestsPerSecond float64 `toml:"requests_per_second"` // Deck source rate limit
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Port int `toml:"port"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			OutputDir: "mtgjson_build",
		},
		Decks: DecksConfig{
			SourceURL:         DefaultDecksURL,
			Workers:           0,
			RequestTimeout:    "30s",
			UserAgent:         "mtgjson-decks/1.0",
			RequestsPerSecond: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// Load loads the configuration from path. Returns the default config if the
// file doesn't exist. Environment overrides are applied afterwards, with a
// .env file in the working directory read first when present.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Defaults
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()

	return cfg, nil
}

// Save saves the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MTGJSON_OUTPUT_DIR"); v != "" {
		c.Paths.OutputDir = v
	}
	if v := os.Getenv("MTGJSON_ALL_PRINTINGS"); v != "" {
		c.Paths.AllPrintings = v
	}
	if v := os.Getenv("MTGJSON_DATABASE"); v != "" {
		c.Paths.Database = v
	}
	if v := os.Getenv("MTGJSON_DECKS_URL"); v != "" {
		c.Decks.SourceURL = v
	}
	if v := os.Getenv("MTGJSON_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return fmt.Errorf("output directory is required")
	}

	if _, err := url.ParseRequestURI(c.Decks.SourceURL); err != nil {
		return fmt.Errorf("invalid deck source URL %q: %w", c.Decks.SourceURL, err)
	}

	if _, err := time.ParseDuration(c.Decks.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request timeout %q: %w", c.Decks.RequestTimeout, err)
	}

	if c.Decks.Workers < 0 {
		return fmt.Errorf("workers cannot be negative: %d", c.Decks.Workers)
	}

	if c.Decks.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive: %v", c.Decks.RequestsPerSecond)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	return nil
}

// GetRequestTimeout returns the deck source request timeout as a duration.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Decks.RequestTimeout)
}

// WorkerCount returns the number of match workers, falling back to the
// available parallelism when unset.
func (c *Config) WorkerCount() int {
	if c.Decks.Workers > 0 {
		return c.Decks.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// AllPrintingsPath returns the catalog path, defaulting to
// <output_dir>/AllPrintings.json.
func (c *Config) AllPrintingsPath() string {
	if c.Paths.AllPrintings != "" {
		return c.Paths.AllPrintings
	}
	return filepath.Join(c.Paths.OutputDir, "AllPrintings.json")
}

// ReferralMapPath returns the referral map path, defaulting to
// <output_dir>/ReferralMap.json.
func (c *Config) ReferralMapPath() string {
	if c.Paths.ReferralMap != "" {
		return c.Paths.ReferralMap
	}
	return filepath.Join(c.Paths.OutputDir, "ReferralMap.json")
}
