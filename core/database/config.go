package database

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds database connection settings. Either URL (a full DSN) or the
// discrete fields must be provided; URL wins when both are set.
type Config struct {
	URL            string `yaml:"url" envconfig:"DATABASE_URL"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// Validate checks that the configuration describes a reachable Postgres
// target. It is called at startup so a malformed DSN fails fast instead of
// surfacing on the first query.
func (c Config) Validate() error {
	if raw := strings.TrimSpace(c.URL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("database url: %w", err)
		}
		switch u.Scheme {
		case "postgres", "postgresql":
		default:
			return fmt.Errorf("database url: unsupported scheme %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("database url: missing host")
		}
		return nil
	}
	if c.Host == "" || c.Name == "" || c.User == "" {
		return fmt.Errorf("database: host, name and user are required when url is not set")
	}
	return nil
}

// DSN returns the connection string in URL form, suitable for both lib/pq
// and golang-migrate.
func (c Config) DSN() string {
	if raw := strings.TrimSpace(c.URL); raw != "" {
		return raw
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	port := c.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password),
		c.Host, port, c.Name, sslmode,
	)
}
