// Package config loads server settings. Later sources override earlier ones:
// built-in defaults, the YAML file named by GYM_CONFIG, a .env file, then the
// process environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvProduction is the Env value that enables production checks.
const EnvProduction = "production"

// Config holds all server configuration.
type Config struct {
	Addr       string `yaml:"addr"`
	Env        string `yaml:"env"`
	DBPath     string `yaml:"db_path"`
	APIBaseURL string `yaml:"api_base_url"` // empty: pages call this server's own /api
	CSRFKey    string `yaml:"csrf_key"`     // 64 hex characters

	ResendKey    string `yaml:"resend_key"`
	EmailFrom    string `yaml:"email_from"`
	EmailReplyTo string `yaml:"email_reply_to"`

	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
	SeedDemo      bool   `yaml:"seed_demo"`

	SlowQuery   time.Duration `yaml:"slow_query"`
	SlowRequest time.Duration `yaml:"slow_request"`
	RateLimit   int           `yaml:"rate_limit"` // requests per RateWindow per client IP
	RateWindow  time.Duration `yaml:"rate_window"`
	InternalKey string        `yaml:"internal_key"` // shared with a separate API so page calls skip the rate limit

	RosterStrategy string        `yaml:"roster_strategy"` // auto, patch or refetch
	NameWorkers    int           `yaml:"name_workers"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`

	LogFormat string `yaml:"log_format"` // json or text
	LogLevel  string `yaml:"log_level"`
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Addr:           ":8080",
		Env:            "development",
		DBPath:         "gymhub.db",
		EmailFrom:      "GymHub <noreply@gymhub.example>",
		EmailReplyTo:   "frontdesk@gymhub.example",
		AdminEmail:     "admin@gymhub.example",
		AdminPassword:  "change-me-admin-password",
		SeedDemo:       true,
		SlowQuery:      50 * time.Millisecond,
		SlowRequest:    500 * time.Millisecond,
		RateLimit:      20,
		RateWindow:     time.Second,
		RosterStrategy: "auto",
		NameWorkers:    4,
		HTTPTimeout:    10 * time.Second,
		LogFormat:      "text",
		LogLevel:       "info",
	}
}

// Load reads configuration from the default locations.
// .env is optional; a missing GYM_CONFIG file is an error.
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv, ".env")
}

// LoadFrom reads configuration using lookup for the process environment and
// dotenvPath for the optional .env file.
// PRE: lookup is non-nil
// POST: returned Config passes Validate
func LoadFrom(lookup func(string) (string, bool), dotenvPath string) (Config, error) {
	cfg := Default()

	dotenv := map[string]string{}
	if dotenvPath != "" {
		m, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			dotenv = m
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read %s: %w", dotenvPath, err)
		}
	}
	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}

	if path, ok := get("GYM_CONFIG"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	var errs []error
	str := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := get(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := get(key); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := get(key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("GYM_ADDR", &cfg.Addr)
	str("GYM_ENV", &cfg.Env)
	str("GYM_DB_PATH", &cfg.DBPath)
	str("GYM_API_BASE_URL", &cfg.APIBaseURL)
	str("GYM_CSRF_KEY", &cfg.CSRFKey)
	str("GYM_RESEND_KEY", &cfg.ResendKey)
	str("GYM_EMAIL_FROM", &cfg.EmailFrom)
	str("GYM_REPLY_TO", &cfg.EmailReplyTo)
	str("GYM_ADMIN_EMAIL", &cfg.AdminEmail)
	str("GYM_ADMIN_PASSWORD", &cfg.AdminPassword)
	flag("GYM_SEED_DEMO", &cfg.SeedDemo)
	dur("GYM_SLOW_QUERY", &cfg.SlowQuery)
	dur("GYM_SLOW_REQUEST", &cfg.SlowRequest)
	num("GYM_RATE_LIMIT", &cfg.RateLimit)
	dur("GYM_RATE_WINDOW", &cfg.RateWindow)
	str("GYM_INTERNAL_KEY", &cfg.InternalKey)
	str("GYM_ROSTER_STRATEGY", &cfg.RosterStrategy)
	num("GYM_NAME_WORKERS", &cfg.NameWorkers)
	dur("GYM_HTTP_TIMEOUT", &cfg.HTTPTimeout)
	str("GYM_LOG_FORMAT", &cfg.LogFormat)
	str("GYM_LOG_LEVEL", &cfg.LogLevel)

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and production requirements.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	if c.RateLimit < 1 || c.RateWindow <= 0 {
		errs = append(errs, errors.New("rate limit and window must be positive"))
	}
	if c.NameWorkers < 1 {
		errs = append(errs, errors.New("name workers must be at least 1"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("http timeout must be positive"))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("log format %q must be json or text", c.LogFormat))
	}
	if c.CSRFKey != "" {
		if key, err := hex.DecodeString(c.CSRFKey); err != nil || len(key) != 32 {
			errs = append(errs, errors.New("csrf key must be 64 hex characters (32 bytes)"))
		}
	}
	if c.IsProduction() {
		if c.CSRFKey == "" {
			errs = append(errs, errors.New("csrf key is required in production"))
		}
		if c.AdminPassword == Default().AdminPassword {
			errs = append(errs, errors.New("admin password must be changed in production"))
		}
	}
	return errors.Join(errs...)
}

// IsProduction reports whether production checks apply.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CSRFKeyBytes returns the decoded CSRF key. Outside production an empty key
// is replaced by a random one, so sessions do not survive a restart.
func (c Config) CSRFKeyBytes() ([]byte, error) {
	if c.CSRFKey != "" {
		key, err := hex.DecodeString(c.CSRFKey)
		if err != nil || len(key) != 32 {
			return nil, errors.New("csrf key must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if c.IsProduction() {
		return nil, errors.New("csrf key is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate csrf key: %w", err)
	}
	slog.Warn("config_event", "event", "random_csrf_key", "hint", "set GYM_CSRF_KEY to keep forms valid across restarts")
	return key, nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ResolvedAPIBaseURL is where pages reach the resource API. Without an
// explicit APIBaseURL it is this server on loopback.
func (c Config) ResolvedAPIBaseURL() string {
	if c.APIBaseURL != "" {
		return strings.TrimRight(c.APIBaseURL, "/")
	}
	host, port, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return "http://127.0.0.1:8080"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}
