package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Ref Assistant"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Local struct {
		DataDir string `envconfig:"DATA_DIR" default:"./data"`
		Backend string `envconfig:"LOCAL_BACKEND" default:"file"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"refassist"`
	}

	Sync struct {
		Enabled bool          `envconfig:"SYNC_ENABLED" default:"true"`
		Timeout time.Duration `envconfig:"SYNC_TIMEOUT" default:"30s"`
	}

	Auth struct {
		Secret string        `envconfig:"AUTH_SECRET"`
		TTL    time.Duration `envconfig:"AUTH_TTL" default:"24h"`

		// Token signs the terminal UI in at start.
		Token string `envconfig:"AUTH_TOKEN"`
	}

	// Calendar is enabled by a refresh token, which is renewed through the
	// OAuth client, or by a bare access token.
	Calendar struct {
		Token        string `envconfig:"CALENDAR_TOKEN"`
		ClientID     string `envconfig:"CALENDAR_CLIENT_ID"`
		ClientSecret string `envconfig:"CALENDAR_CLIENT_SECRET"`
		RefreshToken string `envconfig:"CALENDAR_REFRESH_TOKEN"`
		ID           string `envconfig:"CALENDAR_ID" default:"primary"`
		TimeZone     string `envconfig:"CALENDAR_TIMEZONE" default:"Local"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:*"`
	}

	Log struct {
		File  string `envconfig:"LOG_FILE" default:"refassist.log"`
		Level string `envconfig:"LOG_LEVEL" default:"info"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// SQLitePath is the database file used by the sqlite local backend.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.Local.DataDir, "refassist.db")
}

// Location resolves the calendar time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Calendar.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", c.Calendar.TimeZone, err)
	}

	return loc, nil
}

// LogLevel parses LOG_LEVEL, falling back to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}

	return level
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Local.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("LOCAL_BACKEND must be %q or %q, got %q", BackendFile, BackendSQLite, c.Local.Backend)
	}

	if c.Sync.Enabled && c.Auth.Secret == "" {
		return fmt.Errorf("AUTH_SECRET is required when SYNC_ENABLED is true")
	}

	return nil
}
