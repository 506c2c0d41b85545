// Package config loads the rentalform runtime configuration: built-in
// defaults, then an optional YAML or JSON file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-rentalform/pkg/address"
	"github.com/goliatone/go-rentalform/pkg/gateway"
)

// Environment variables that override file values.
const (
	EnvAPIURL       = "RENTALFORM_API_URL"
	EnvPlacesAPIKey = "RENTALFORM_PLACES_API_KEY"
	EnvAddr         = "RENTALFORM_ADDR"
	EnvLogLevel     = "RENTALFORM_LOG_LEVEL"
	EnvLogFormat    = "RENTALFORM_LOG_FORMAT"
	EnvLocale       = "RENTALFORM_LOCALE"
	EnvMockAPIAddr  = "RENTALFORM_MOCKAPI_ADDR"
)

// ErrInvalid wraps every validation failure reported by Validate.
var ErrInvalid = errors.New("config: invalid configuration")

// Duration decodes "10s" style strings from both YAML and JSON.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a time.ParseDuration string.
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText renders the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full runtime configuration.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	API     APIConfig     `json:"api" yaml:"api"`
	Places  PlacesConfig  `json:"places" yaml:"places"`
	Locale  string        `json:"locale" yaml:"locale"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Theme   ThemeConfig   `json:"theme" yaml:"theme"`
	MockAPI MockAPIConfig `json:"mockApi" yaml:"mockApi"`
}

// ServerConfig configures the HTML front end.
type ServerConfig struct {
	Addr         string   `json:"addr" yaml:"addr"`
	SessionTTL   Duration `json:"sessionTTL" yaml:"sessionTTL"`
	CookieSecure bool     `json:"cookieSecure" yaml:"cookieSecure"`
	TemplatesDir string   `json:"templatesDir" yaml:"templatesDir"`
	ReadTimeout  Duration `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout Duration `json:"writeTimeout" yaml:"writeTimeout"`
}

// APIConfig points the submission gateway at the rental requests API.
type APIConfig struct {
	BaseURL          string   `json:"baseURL" yaml:"baseURL"`
	Path             string   `json:"path" yaml:"path"`
	Timeout          Duration `json:"timeout" yaml:"timeout"`
	ValidateContract bool     `json:"validateContract" yaml:"validateContract"`
}

// PlacesConfig configures address lookups. Without an API key the static
// address list is used.
type PlacesConfig struct {
	APIKey    string   `json:"apiKey" yaml:"apiKey"`
	BaseURL   string   `json:"baseURL" yaml:"baseURL"`
	Country   string   `json:"country" yaml:"country"`
	Timeout   Duration `json:"timeout" yaml:"timeout"`
	Addresses []string `json:"addresses" yaml:"addresses"`
}

// LogConfig selects the slog level and handler format.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// ThemeConfig points at an optional theme manifest file.
type ThemeConfig struct {
	File    string `json:"file" yaml:"file"`
	Variant string `json:"variant" yaml:"variant"`
}

// MockAPIConfig configures the local rental requests API used in demos.
type MockAPIConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			SessionTTL:   Duration{30 * time.Minute},
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
		},
		API: APIConfig{
			BaseURL:          gateway.DefaultBaseURL,
			Path:             gateway.DefaultPath,
			Timeout:          Duration{gateway.DefaultTimeout},
			ValidateContract: true,
		},
		Places: PlacesConfig{
			BaseURL: address.DefaultPlacesBaseURL,
			Country: address.DefaultCountry,
			Timeout: Duration{3 * time.Second},
		},
		Locale: "en",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		MockAPI: MockAPIConfig{
			Addr: ":8081",
		},
	}
}

// EnvLookup resolves an environment variable.
type EnvLookup func(key string) (string, bool)

// Option customises Load.
type Option func(*loader)

type loader struct {
	lookup   EnvLookup
	readFile func(string) ([]byte, error)
}

// WithEnv replaces os.LookupEnv, mainly for tests.
func WithEnv(lookup EnvLookup) Option {
	return func(l *loader) {
		if lookup != nil {
			l.lookup = lookup
		}
	}
}

// WithReadFile replaces os.ReadFile.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(l *loader) {
		if fn != nil {
			l.readFile = fn
		}
	}
}

// Load builds the configuration. path may be empty to skip the file layer.
func Load(path string, options ...Option) (Config, error) {
	l := loader{lookup: os.LookupEnv, readFile: os.ReadFile}
	for _, opt := range options {
		if opt != nil {
			opt(&l)
		}
	}

	cfg := Default()
	if path = strings.TrimSpace(path); path != "" {
		data, err := l.readFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decode(data, path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg, l.lookup)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, source string, cfg *Config) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("config: file %s is empty", source)
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("config: parse %s: %w", source, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("config: parse %s: %w", source, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config, lookup EnvLookup) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvAPIURL, &cfg.API.BaseURL)
	set(EnvPlacesAPIKey, &cfg.Places.APIKey)
	set(EnvAddr, &cfg.Server.Addr)
	set(EnvLogLevel, &cfg.Log.Level)
	set(EnvLogFormat, &cfg.Log.Format)
	set(EnvLocale, &cfg.Locale)
	set(EnvMockAPIAddr, &cfg.MockAPI.Addr)
}

// Validate reports every problem found, joined, wrapped in ErrInvalid.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Server.Addr) == "" {
		problems = append(problems, "server.addr is required")
	}
	if c.Server.SessionTTL.Duration <= 0 {
		problems = append(problems, "server.sessionTTL must be positive")
	}
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("api.baseURL %q is not an absolute URL", c.API.BaseURL))
	}
	if c.API.Timeout.Duration <= 0 {
		problems = append(problems, "api.timeout must be positive")
	}
	if !validLevel(c.Log.Level) {
		problems = append(problems, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
}

func validLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
