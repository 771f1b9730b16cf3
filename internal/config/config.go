// Package config loads client configuration from defaults, an optional
// config file, a .env file and environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when a loaded value fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "MAILADMIN"
	// LegacyBaseURLEnv is honored when MAILADMIN_API_BASE_URL is unset.
	LegacyBaseURLEnv = "VITE_API_BASE_URL"
	// ConfigName is the config file base name searched for by Load.
	ConfigName = "mailadmin"

	DefaultBaseURL         = "http://localhost:3000"
	DefaultTimeout         = 30 * time.Second
	DefaultKeyFetchTimeout = 10 * time.Second
)

// Config holds client settings.
type Config struct {
	APIBaseURL      string        `mapstructure:"api_base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	KeyFetchTimeout time.Duration `mapstructure:"key_fetch_timeout"`
	Retries         int           `mapstructure:"retries"`
	Log             LogConfig     `mapstructure:"log"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Options selects the sources Load reads.
type Options struct {
	// ConfigFile is an explicit config file path. When empty, Load searches
	// the working directory and the user config directory for mailadmin.*.
	ConfigFile string
	// EnvFile is loaded before reading the environment. Variables already
	// set are not overridden. Defaults to ".env"; a missing file is ignored.
	EnvFile string
}

// Load reads configuration with this precedence, highest first:
//  1. MAILADMIN_* environment variables (VITE_API_BASE_URL for the base URL)
//  2. the .env file
//  3. the config file
//  4. defaults
func Load(ctx context.Context, opts Options) (*Config, error) {
	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, os.ErrNotExist) || opts.EnvFile != "" {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		logger.Debug().Str("file", envFile).Msg("env file loaded")
	}

	v := newViper()
	if err := readConfigFile(v, opts.ConfigFile); err != nil {
		return nil, err
	}
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug().Str("file", used).Msg("config file loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decoderOption()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("api_base_url", cfg.APIBaseURL).
		Dur("timeout", cfg.Timeout).
		Dur("key_fetch_timeout", cfg.KeyFetchTimeout).
		Int("retries", cfg.Retries).
		Msg("configuration loaded")

	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIBaseURL:      DefaultBaseURL,
		Timeout:         DefaultTimeout,
		KeyFetchTimeout: DefaultKeyFetchTimeout,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for values the client cannot use.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api_base_url %q must be an absolute http(s) URL", ErrInvalidConfig, c.APIBaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	if c.KeyFetchTimeout < 0 {
		return fmt.Errorf("%w: key_fetch_timeout must not be negative", ErrInvalidConfig)
	}
	if c.Retries < 0 {
		return fmt.Errorf("%w: retries must not be negative", ErrInvalidConfig)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.format %q must be console or json", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Explicit names skip the prefix; the first one set wins.
	_ = v.BindEnv("api_base_url", EnvPrefix+"_API_BASE_URL", LegacyBaseURLEnv)
	return v
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("api_base_url", d.APIBaseURL)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("key_fetch_timeout", d.KeyFetchTimeout)
	v.SetDefault("retries", d.Retries)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	v.SetConfigName(ConfigName)
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, ConfigName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func decoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
