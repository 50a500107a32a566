package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./chartx.db" {
			t.Errorf("expected database path ./chartx.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Charts.Days != 7 {
			t.Errorf("expected 7 days, got %d", config.Charts.Days)
		}

		if config.Enrichment.Interval() != 100*time.Millisecond {
			t.Errorf("expected 100ms interval, got %v", config.Enrichment.Interval())
		}

		if config.Credentials.Spotify.ClientID != "your_spotify_client_id" {
			t.Errorf("expected spotify client_id your_spotify_client_id, got %s", config.Credentials.Spotify.ClientID)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Output.Path != DefaultConfig().Output.Path {
			t.Errorf("created config output path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[charts]
countries = ["US", "FR"]
url_template = "http://localhost/$1/$2.csv"
days = 2

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"

[output]
path = "s3://bucket/genres.csv"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if len(config.Charts.Countries) != 2 || config.Charts.Countries[1] != "FR" {
			t.Errorf("expected countries [US FR], got %v", config.Charts.Countries)
		}
		if config.Charts.Days != 2 {
			t.Errorf("expected 2 days, got %d", config.Charts.Days)
		}
		if config.Output.Path != "s3://bucket/genres.csv" {
			t.Errorf("expected s3 output, got %s", config.Output.Path)
		}
		if config.Enrichment.IntervalMS != 100 {
			t.Errorf("expected unset values to keep defaults, got interval %d", config.Enrichment.IntervalMS)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		c := DefaultConfig()
		c.Credentials.Spotify.ClientID = "id"
		c.Credentials.Spotify.ClientSecret = "secret"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "defaults with credentials", mutate: func(c *Config) {}},
		{name: "empty countries", mutate: func(c *Config) { c.Charts.Countries = nil }},
		{name: "zero days", mutate: func(c *Config) { c.Charts.Days = 0 }, wantErr: ErrInvalidConfig},
		{name: "missing date marker", mutate: func(c *Config) { c.Charts.URLTemplate = "http://x/$1" }, wantErr: ErrInvalidConfig},
		{name: "zero interval", mutate: func(c *Config) { c.Enrichment.IntervalMS = 0 }, wantErr: ErrInvalidConfig},
		{name: "no output", mutate: func(c *Config) { c.Output.Path = "" }, wantErr: ErrInvalidConfig},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: ErrInvalidConfig},
		{name: "upper case log level", mutate: func(c *Config) { c.Log.Level = "WARN" }},
		{name: "no secret", mutate: func(c *Config) { c.Credentials.Spotify.ClientSecret = "" }, wantErr: ErrMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Run("dotenv file and variables", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		content := "CHARTX_CLIENT_ID=from_dotenv\nCHARTX_CLIENT_SECRET=dotenv_secret\n"
		if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv("CHARTX_CLIENT_ID", "")
		t.Setenv("CHARTX_CLIENT_SECRET", "")
		t.Setenv("CHARTX_DAYS", "3")
		t.Setenv("CHARTX_COUNTRIES", "US, FR ,,")
		t.Setenv("CHARTX_OUTPUT", "file:///tmp/out.csv")

		// godotenv does not override variables that are already set, even to empty strings.
		os.Unsetenv("CHARTX_CLIENT_ID")
		os.Unsetenv("CHARTX_CLIENT_SECRET")

		c := DefaultConfig()
		if err := ApplyEnv(c, envPath); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}

		if c.Credentials.Spotify.ClientID != "from_dotenv" {
			t.Errorf("expected client id from dotenv, got %s", c.Credentials.Spotify.ClientID)
		}
		if c.Charts.Days != 3 {
			t.Errorf("expected 3 days, got %d", c.Charts.Days)
		}
		if len(c.Charts.Countries) != 2 || c.Charts.Countries[0] != "US" || c.Charts.Countries[1] != "FR" {
			t.Errorf("expected [US FR], got %v", c.Charts.Countries)
		}
		if c.Output.Path != "file:///tmp/out.csv" {
			t.Errorf("expected output override, got %s", c.Output.Path)
		}
	})

	t.Run("missing dotenv is ignored", func(t *testing.T) {
		c := DefaultConfig()
		if err := ApplyEnv(c, filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Fatalf("expected missing file to be ignored, got %v", err)
		}
	})

	t.Run("invalid days", func(t *testing.T) {
		t.Setenv("CHARTX_DAYS", "seven")
		c := DefaultConfig()
		if err := ApplyEnv(c, filepath.Join(t.TempDir(), "missing.env")); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
