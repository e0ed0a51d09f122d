// Package config resolves shelfkeeper settings from flags, environment,
// .env files and an optional shelfkeeper.yaml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SHELFKEEPER_DB.
const EnvPrefix = "SHELFKEEPER"

// Keys shared by flags, env vars and the config file.
const (
	KeyDB       = "db"
	KeyFormat   = "format"
	KeyLogLevel = "log-level"
	KeyLogFile  = "log-file"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Config is the resolved configuration.
type Config struct {
	DBPath   string
	Format   string
	LogLevel string
	LogFile  string
	// Source is the config file that was read, empty if none.
	Source string
}

// Load resolves the configuration. Flags in fs that were set explicitly win
// over every other source.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// Do not override environment provided by the runtime.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v := viper.New()
	v.SetDefault(KeyDB, "library.db")
	v.SetDefault(KeyFormat, FormatTable)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFile, filepath.Join(cacheDir(), "shelfkeeper.log"))

	if file := os.Getenv(EnvPrefix + "_CONFIG"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("shelfkeeper")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "shelfkeeper"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := &Config{
		DBPath:   v.GetString(KeyDB),
		Format:   strings.ToLower(v.GetString(KeyFormat)),
		LogLevel: strings.ToLower(v.GetString(KeyLogLevel)),
		LogFile:  v.GetString(KeyLogFile),
		Source:   v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown formats and log levels and an empty db path.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("config: db path must not be empty")
	}
	switch c.Format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("config: unknown format %q (want table, json or yaml)", c.Format)
	}
	for _, l := range logLevels {
		if c.LogLevel == l {
			return nil
		}
	}
	return fmt.Errorf("config: unknown log level %q (want one of %s)", c.LogLevel, strings.Join(logLevels, ", "))
}

// cacheDir returns the XDG cache directory for shelfkeeper.
func cacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "shelfkeeper")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "shelfkeeper")
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Caches", "shelfkeeper")
	}
	return filepath.Join(home, ".cache", "shelfkeeper")
}
