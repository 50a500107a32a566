package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	CountryMarker = "$1"
	DateMarker    = "$2"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Charts      ChartsConfig      `toml:"charts"`
	Credentials CredentialsConfig `toml:"credentials"`
	Enrichment  EnrichmentConfig  `toml:"enrichment"`
	Output      OutputConfig      `toml:"output"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
}

// ChartsConfig describes which snapshots to fetch and how.
type ChartsConfig struct {
	Countries      []string `toml:"countries"`
	URLTemplate    string   `toml:"url_template"`
	Days           int      `toml:"days"`
	UserAgent      string   `toml:"user_agent"`
	WorkingDir     string   `toml:"working_dir"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	Workers        int      `toml:"workers"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify client-credentials settings.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TokenURL     string `toml:"token_url"`
	APIURL       string `toml:"api_url"`
}

// EnrichmentConfig controls the catalog call budget.
type EnrichmentConfig struct {
	IntervalMS int `toml:"interval_ms"`
}

// OutputConfig is where the flattened report goes. Path may be local, file:// or s3://.
type OutputConfig struct {
	Path string `toml:"path"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LogConfig sets the logger verbosity: debug, info, warn or error.
type LogConfig struct {
	Level string `toml:"level"`
}

// Interval returns the minimum spacing between row enrichments.
func (c EnrichmentConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}

// Timeout returns the per-request timeout for snapshot downloads.
func (c ChartsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Addr returns the listen address for the trigger server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate reports configuration that would make a run meaningless.
//
// An empty country list is allowed and simply produces no tasks.
func (c *Config) Validate() error {
	if c.Charts.Days <= 0 {
		return fmt.Errorf("%w: charts.days must be positive, got %d", ErrInvalidConfig, c.Charts.Days)
	}
	if !strings.Contains(c.Charts.URLTemplate, CountryMarker) || !strings.Contains(c.Charts.URLTemplate, DateMarker) {
		return fmt.Errorf("%w: charts.url_template must contain %s and %s", ErrInvalidConfig, CountryMarker, DateMarker)
	}
	if c.Enrichment.IntervalMS <= 0 {
		return fmt.Errorf("%w: enrichment.interval_ms must be positive", ErrInvalidConfig)
	}
	if c.Output.Path == "" {
		return fmt.Errorf("%w: output.path is required", ErrInvalidConfig)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Credentials.Spotify.ClientID == "" || c.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret", ErrMissingCredentials)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads dotenv files (missing files are ignored) and overlays CHARTX_* variables onto the config.
func ApplyEnv(c *Config, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if v := os.Getenv("CHARTX_CLIENT_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("CHARTX_CLIENT_SECRET"); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv("CHARTX_OUTPUT"); v != "" {
		c.Output.Path = v
	}
	if v := os.Getenv("CHARTX_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: CHARTX_DAYS=%q", ErrInvalidConfig, v)
		}
		c.Charts.Days = days
	}
	if v := os.Getenv("CHARTX_COUNTRIES"); v != "" {
		c.Charts.Countries = SplitList(v)
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
