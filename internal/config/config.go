// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultSessionSecret is used when SESSION_SECRET is unset. Fine for local
// development only.
const DefaultSessionSecret = "dev-insecure-secret-change-me-now"

// Config is everything the server and CLI read from the environment.
type Config struct {
	Host string `env:"HOST" envDefault:"127.0.0.1"`
	Port string `env:"PORT" envDefault:"8080"`

	// DBDriver is "postgres" or "sqlite".
	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"bakery.db"`
	Postgres   Postgres

	SessionDir    string        `env:"SESSION_DIR"`
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	HTTPS         bool          `env:"APP_HTTPS" envDefault:"false"`

	UploadDir       string `env:"UPLOAD_DIR" envDefault:"uploads"`
	UploadURLPrefix string `env:"UPLOAD_URL_PREFIX" envDefault:"/uploads"`
	MaxUploadMB     int64  `env:"MAX_UPLOAD_MB" envDefault:"25"`

	// TimeZone is an IANA name, "Local" or "UTC". Dashboard dates and CSV
	// exports are shown in it.
	TimeZone string `env:"TIME_ZONE" envDefault:"Local"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"LOG_DEV" envDefault:"false"`
}

// Postgres holds the connection settings. DatabaseURL wins over DSN, DSN
// wins over the individual parts.
type Postgres struct {
	DatabaseURL string `env:"DATABASE_URL"`
	DSN         string `env:"POSTGRES_DSN"`
	Host        string `env:"POSTGRES_HOST" envDefault:"127.0.0.1"`
	Port        string `env:"POSTGRES_PORT" envDefault:"5432"`
	User        string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password    string `env:"POSTGRES_PASSWORD"`
	Name        string `env:"POSTGRES_DB" envDefault:"bakery"`
	SSLMode     string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = DefaultSessionSecret
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves TimeZone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("TIME_ZONE: %w", err)
	}
	return loc, nil
}

// InsecureSecret reports whether the development session secret is in use.
func (c Config) InsecureSecret() bool {
	return c.SessionSecret == DefaultSessionSecret
}

// Addr is the listen address.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// MaxUploadBytes is the multipart body limit.
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// DSN is the data source name for DBDriver.
func (c Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.Postgres.DSNString()
}

// DSNString builds a lib/pq key=value DSN unless a full one was given.
func (p Postgres) DSNString() string {
	if p.DatabaseURL != "" {
		return p.DatabaseURL
	}
	if p.DSN != "" {
		return p.DSN
	}
	parts := []string{
		"host=" + p.Host,
		"port=" + p.Port,
		"user=" + p.User,
		"dbname=" + p.Name,
		"sslmode=" + p.SSLMode,
	}
	if p.Password != "" {
		parts = append(parts, "password="+p.Password)
	}
	return strings.Join(parts, " ")
}

// Target describes where the database lives without leaking secrets.
func (c Config) Target() string {
	if c.DBDriver == "sqlite" {
		return "sqlite:" + c.SQLitePath
	}
	if c.Postgres.DatabaseURL != "" || c.Postgres.DSN != "" {
		return "postgres (DSN provided)"
	}
	return fmt.Sprintf("postgres host=%s user=%s db=%s", c.Postgres.Host, c.Postgres.User, c.Postgres.Name)
}
