// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

// Package config loads server configuration from defaults, an optional YAML
// file, environment variables and command-line flags, in that order.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable the loader reads, apart
// from DATABASE_URL. A double underscore separates nesting levels, so
// GAMENIGHT_SESSION__SECRET sets session.secret.
const EnvPrefix = "GAMENIGHT_"

// MinSecretLength is the shortest accepted session signing secret in bytes.
const MinSecretLength = 32

// Config is the complete server configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Database DatabaseConfig `koanf:"database"`
	Session  SessionConfig  `koanf:"session"`
	Links    LinksConfig    `koanf:"links"`
	Mail     MailConfig     `koanf:"mail"`
	Log      LogConfig      `koanf:"log"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// MetricsConfig configures the observability listener. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	URL             string `koanf:"url"`
	MaxConns        int32  `koanf:"max_conns"`
	ConnectAttempts uint64 `koanf:"connect_attempts"`
}

// SessionConfig configures session token signing.
type SessionConfig struct {
	Secret     string `koanf:"secret"`
	Issuer     string `koanf:"issuer"`
	ExpiryDays int    `koanf:"expiry_days"`
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.ExpiryDays) * 24 * time.Hour
}

// LinksConfig holds the public base URLs used in emailed links.
type LinksConfig struct {
	APIURL      string `koanf:"api_url"`
	FrontendURL string `koanf:"frontend_url"`
}

// MailConfig configures SMTP delivery. An empty host logs links instead of
// sending them.
type MailConfig struct {
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	From     string        `koanf:"from"`
	TLS      string        `koanf:"tls"`
	Attempts uint64        `koanf:"attempts"`
	Timeout  time.Duration `koanf:"timeout"`
}

// LogConfig configures the default logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Defaults returns the built-in configuration layer.
func Defaults() map[string]any {
	return map[string]any{
		"http.addr":                 ":3000",
		"http.cors_origins":         []string{"http://localhost:5173"},
		"http.shutdown_timeout":     "10s",
		"metrics.addr":              "127.0.0.1:9100",
		"database.max_conns":        10,
		"database.connect_attempts": 5,
		"session.issuer":            "gamenight",
		"session.expiry_days":       7,
		"links.api_url":             "http://localhost:3000",
		"links.frontend_url":        "http://localhost:5173",
		"mail.tls":                  "mandatory",
		"mail.attempts":             3,
		"mail.timeout":              "15s",
		"log.level":                 "info",
		"log.format":                "json",
	}
}

// flagKeys maps command-line flag names to configuration keys. Flags not
// listed here are ignored by the loader.
var flagKeys = map[string]string{
	"http-addr":    "http.addr",
	"metrics-addr": "metrics.addr",
	"cors-origin":  "http.cors_origins",
	"database-url": "database.url",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"api-url":      "links.api_url",
	"frontend-url": "links.frontend_url",
}

// Load builds a Config. path names an optional YAML file; flags may be nil.
// Only flags the user changed override the other layers. The result is not
// validated; commands call Validate or RequireDatabase for what they need.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "defaults").Wrap(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "file").With("path", path).Wrap(err)
		}
	}

	databaseURL := env.Provider("DATABASE_URL", ".", func(s string) string {
		if s == "DATABASE_URL" {
			return "database.url"
		}
		return ""
	})
	if err := k.Load(databaseURL, nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "env").Wrap(err)
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "env").Wrap(err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return &cfg, nil
}

// envKey turns GAMENIGHT_MAIL__HOST into mail.host. Comma separated values
// for list keys become slices.
func envKey(name, value string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if key == "http.cors_origins" {
		return key, splitList(value)
	}
	return key, value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// RequireDatabase checks that a database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").With("key", "database.url").
			Errorf("database url is required (DATABASE_URL or %sDATABASE__URL)", EnvPrefix)
	}
	return nil
}

// Validate checks settings the server cannot start without.
func (c *Config) Validate() error {
	if err := c.RequireDatabase(); err != nil {
		return err
	}
	switch {
	case len(c.Session.Secret) < MinSecretLength:
		return oops.Code("CONFIG_INVALID").With("key", "session.secret").
			Errorf("session secret must be at least %d bytes", MinSecretLength)
	case c.Session.ExpiryDays <= 0:
		return oops.Code("CONFIG_INVALID").With("key", "session.expiry_days").
			Errorf("session expiry must be a positive number of days, got %d", c.Session.ExpiryDays)
	case c.Log.Format != "json" && c.Log.Format != "text":
		return oops.Code("CONFIG_INVALID").With("key", "log.format").
			Errorf("log format must be 'json' or 'text', got %q", c.Log.Format)
	case c.HTTP.Addr == "":
		return oops.Code("CONFIG_INVALID").With("key", "http.addr").Errorf("http address is required")
	case c.Links.APIURL == "" || c.Links.FrontendURL == "":
		return oops.Code("CONFIG_INVALID").With("key", "links").Errorf("api and frontend urls are required")
	}
	return nil
}
