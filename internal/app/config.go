package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DeckPaths []string // input deck files or directories

	LogFormat string
	LogLevel  string
	// Restrict narrows option axes, one "Axis=label,label" entry each.
	Restrict []string
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// NewConfig normalizes and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log-level %q: must be one of %s", cfg.LogLevel, strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	return &cfg, nil
}

// RequireDecks fails when no input deck was given. Commands that evolve a
// simulation call it; documentation commands run on defaults.
func (c *Config) RequireDecks() error {
	if len(c.DeckPaths) == 0 {
		return errors.New("at least one input deck path is required")
	}
	return nil
}

// Settings keys shared by the viper instance and the CLI flags.
const (
	KeyLogLevel  = "log-level"
	KeyLogFormat = "log-format"
	KeyRestrict  = "restrict"
	KeyDecks     = "decks"
)

// NewViper returns a viper instance with the application defaults, the
// SIMUNIT_* environment and, when present, a settings file. settingsFile
// may be empty, in which case simunit.{yaml,toml} is looked up in the
// working directory.
func NewViper(settingsFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyRestrict, []string{})
	v.SetDefault(KeyDecks, []string{})

	v.SetEnvPrefix("SIMUNIT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if settingsFile != "" {
		v.SetConfigFile(settingsFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading settings file %s: %w", settingsFile, err)
		}
		return v, nil
	}

	v.SetConfigName("simunit")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading settings: %w", err)
		}
	}
	return v, nil
}

// ConfigFromViper builds a validated Config from v. Positional deck paths,
// when given, replace the settings' deck list.
func ConfigFromViper(v *viper.Viper, deckPaths []string) (*Config, error) {
	if len(deckPaths) == 0 {
		deckPaths = v.GetStringSlice(KeyDecks)
	}
	return NewConfig(Config{
		DeckPaths: deckPaths,
		LogFormat: v.GetString(KeyLogFormat),
		LogLevel:  v.GetString(KeyLogLevel),
		Restrict:  v.GetStringSlice(KeyRestrict),
	})
}
