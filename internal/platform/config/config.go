package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

const (
	defaultEnvFile = ".env"
	envPrefix      = "DEX_"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	HTTP   HTTPConfig   `envPrefix:"HTTP_"`
	API    APIConfig    `envPrefix:"API_"`
	Widget WidgetConfig `envPrefix:"WIDGET_"`
	OTel   OTelConfig   `envPrefix:"OTEL_"`

	// NameLocale is the PokeAPI language name used for localized creature names.
	NameLocale       string        `env:"NAME_LOCALE" envDefault:"es"`
	FetchConcurrency int           `env:"FETCH_CONCURRENCY" envDefault:"1"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
}

// HTTPConfig configures the widget HTTP server.
type HTTPConfig struct {
	Addr         string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
}

// APIConfig points at the upstream creature API.
type APIConfig struct {
	BaseURL string `env:"BASE_URL" envDefault:"https://pokeapi.co/api/v2"`
	// Timeout bounds each upstream call; zero leaves calls bounded only by their context.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"0s"`
}

// WidgetConfig controls how long mounted widgets are retained.
type WidgetConfig struct {
	IdleTTL       time.Duration `env:"IDLE_TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
}

// OTelConfig enables span export. Tracing stays local when Endpoint is empty.
type OTelConfig struct {
	Endpoint    string `env:"ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"dex-web"`
}

// NameTag returns the parsed language tag for NameLocale.
func (c Config) NameTag() language.Tag {
	tag, err := language.Parse(c.NameLocale)
	if err != nil {
		return language.Spanish
	}
	return tag
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, .env overrides, environment variables
// and an optional explicit map, in increasing order of precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	values, err := environmentValues(options)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      envPrefix,
		Environment: values,
	}); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	cfg.NameLocale = strings.TrimSpace(cfg.NameLocale)
	cfg.HTTP.Addr = strings.TrimSpace(cfg.HTTP.Addr)
	cfg.OTel.Endpoint = strings.TrimSpace(cfg.OTel.Endpoint)

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func environmentValues(options loaderOptions) (map[string]string, error) {
	values := make(map[string]string)
	merge := func(source map[string]string) {
		for key, value := range source {
			values[key] = value
		}
	}

	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return nil, err
	}
	merge(dotEnv)

	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			key, value, ok := strings.Cut(entry, "=")
			if !ok || strings.TrimSpace(key) == "" {
				continue
			}
			values[key] = value
		}
	}

	merge(options.envMap)
	return values, nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func validateConfig(cfg Config) error {
	var invalid []string

	if cfg.HTTP.Addr == "" {
		invalid = append(invalid, "HTTP.Addr")
	}
	if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		invalid = append(invalid, "API.BaseURL")
	}
	if cfg.API.Timeout < 0 {
		invalid = append(invalid, "API.Timeout")
	}
	if _, err := language.Parse(cfg.NameLocale); err != nil || cfg.NameLocale == "" {
		invalid = append(invalid, "NameLocale")
	}
	if cfg.FetchConcurrency < 1 {
		invalid = append(invalid, "FetchConcurrency")
	}
	if cfg.Widget.IdleTTL <= 0 {
		invalid = append(invalid, "Widget.IdleTTL")
	}
	if cfg.Widget.SweepInterval <= 0 {
		invalid = append(invalid, "Widget.SweepInterval")
	}
	if cfg.OTel.Endpoint != "" {
		if u, err := url.Parse(cfg.OTel.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			invalid = append(invalid, "OTel.Endpoint")
		}
	}
	if cfg.ShutdownTimeout <= 0 {
		invalid = append(invalid, "ShutdownTimeout")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}
