// Package config resolves itemdesk settings from flags, ITEMDESK_*
// environment variables, an optional .itemdesk config file and defaults,
// in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/idilsaglam/itemdesk/internal/ui"
)

const (
	KeyAPIURL     = "api_url"
	KeyTimeout    = "timeout"
	KeyMessageTTL = "message_ttl"
	KeyTheme      = "theme"
	KeyLogLevel   = "log_level"
	KeyLogFile    = "log_file"
)

// EnvPrefix is prepended to every environment override, as in
// ITEMDESK_API_URL.
const EnvPrefix = "ITEMDESK"

// FileName is the config file base name; the extension picks the format.
const FileName = ".itemdesk"

var defaults = map[string]any{
	KeyAPIURL:     "http://localhost:8000/api",
	KeyTimeout:    10 * time.Second,
	KeyMessageTTL: 5 * time.Second,
	KeyTheme:      "classic",
	KeyLogLevel:   "info",
	KeyLogFile:    "",
}

type Config struct {
	APIURL     string
	Timeout    time.Duration
	MessageTTL time.Duration
	Theme      string
	LogLevel   slog.Level
	LogFile    string

	// File is the config file that was read, empty when none was found.
	File string
}

// SearchPaths lists the directories searched for FileName.
func SearchPaths() []string {
	var paths []string
	if override := os.Getenv(EnvPrefix + "_CONFIG_PATH"); override != "" {
		paths = append(paths, override)
	}
	paths = append(paths, "./")
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "itemdesk"))
	}
	return paths
}

// Load resolves the configuration. file, when set, must exist. flags may be
// nil; a flag named like a key with dashes ("api-url") overrides it when
// set on the command line.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		for _, p := range SearchPaths() {
			v.AddConfigPath(p)
		}
	}

	if flags != nil {
		for k := range defaults {
			if f := flags.Lookup(strings.ReplaceAll(k, "_", "-")); f != nil {
				if err := v.BindPFlag(k, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		APIURL:     strings.TrimSpace(v.GetString(KeyAPIURL)),
		Timeout:    v.GetDuration(KeyTimeout),
		MessageTTL: v.GetDuration(KeyMessageTTL),
		Theme:      strings.ToLower(strings.TrimSpace(v.GetString(KeyTheme))),
		LogFile:    v.GetString(KeyLogFile),
		File:       v.ConfigFileUsed(),
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return nil, fmt.Errorf("config: %s: %w", KeyLogLevel, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("config: %s: %w", KeyAPIURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: %s: want an absolute http(s) URL, got %q", KeyAPIURL, c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: %s must be positive, got %s", KeyTimeout, c.Timeout)
	}
	if c.MessageTTL <= 0 {
		return fmt.Errorf("config: %s must be positive, got %s", KeyMessageTTL, c.MessageTTL)
	}
	if !ui.KnownTheme(c.Theme) {
		return fmt.Errorf("config: unknown %s %q (want one of %s)", KeyTheme, c.Theme, strings.Join(ui.ThemeNames, ", "))
	}
	return nil
}
