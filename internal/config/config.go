// Package config loads linkvault settings from a YAML file in the config
// directory, LINKVAULT_* environment variables and optional .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/bkarpinos/linkvault/internal/kvstore"
)

const (
	EnvPrefix = "LINKVAULT"
	FileName  = "config.yaml"

	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	StorageDir  string       `mapstructure:"storage_dir" yaml:"storage_dir"`
	Backend     string       `mapstructure:"backend" yaml:"backend"`
	DatabaseURL string       `mapstructure:"database_url" yaml:"database_url"`
	Namespace   string       `mapstructure:"namespace" yaml:"namespace"`
	QuotaBytes  int          `mapstructure:"quota_bytes" yaml:"quota_bytes"`
	LogLevel    string       `mapstructure:"log_level" yaml:"log_level"`
	Server      ServerConfig `mapstructure:"server" yaml:"server"`

	// Dir is the directory the config file is read from.
	Dir string `mapstructure:"-" yaml:"-"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        int      `mapstructure:"port" yaml:"port"`
	NotFoundURL string   `mapstructure:"not_found_url" yaml:"not_found_url"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// DefaultDir returns ~/.config/linkvault.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "linkvault"), nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("storage_dir", dir)
	v.SetDefault("backend", BackendFile)
	v.SetDefault("database_url", "")
	v.SetDefault("namespace", kvstore.DefaultNamespace)
	v.SetDefault("quota_bytes", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.not_found_url", "")
	v.SetDefault("server.cors_origins", []string{})
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped and variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads config.yaml from dir, creating dir if needed, and overlays
// LINKVAULT_* environment variables. A missing config file is not an error.
func Load(v *viper.Viper, dir string) (*Config, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	setDefaults(v, dir)
	v.SetConfigType("yaml")
	v.SetConfigName("config")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Dir = dir

	if !filepath.IsAbs(cfg.StorageDir) {
		abs, err := filepath.Abs(cfg.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("resolve storage directory: %w", err)
		}
		cfg.StorageDir = abs
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.StorageDir, validation.Required),
		validation.Field(&c.Backend, validation.Required, validation.In(BackendFile, BackendSQLite)),
		validation.Field(&c.Namespace, validation.Required),
		validation.Field(&c.QuotaBytes, validation.Min(0)),
		validation.Field(&c.LogLevel, validation.By(func(value interface{}) error {
			_, err := zerolog.ParseLevel(value.(string))
			return err
		})),
		validation.Field(&c.Server),
	)
}

// Validate checks the server configuration.
func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// Level returns the configured log level.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// FilePath is where the file backend keeps its data.
func (c *Config) FilePath() string {
	return filepath.Join(c.StorageDir, "linkvault.json")
}

// DatabaseDSN is the data source for the sqlite backend. It defaults to a
// database file in the storage directory.
func (c *Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "file:" + filepath.Join(c.StorageDir, "linkvault.db")
}

// Write stores key in the config file of dir, creating the file if needed.
func Write(v *viper.Viper, dir, key string, value any) error {
	v.Set(key, value)
	if err := v.WriteConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("write config: %w", err)
		}
		if err := v.SafeWriteConfigAs(filepath.Join(dir, FileName)); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
	}
	return nil
}
