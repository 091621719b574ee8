package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-texsnip/internal/fileutil"
	"github.com/alnah/go-texsnip/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxDurationLength = 20   // "1h30m", "90s"
	MaxEnumLength     = 10   // "fixed", "unique", "console", "json"
)

// Naming modes for scratch files.
const (
	NamingFixed  = "fixed"
	NamingUnique = "unique"
)

// Config holds the optional settings of a conversion run.
// The zero value reproduces the fixed behavior: default scratch
// directory, fixed file names, no timeout, no copy of the result.
type Config struct {
	ScratchDir string      `yaml:"scratchDir"` // Empty = <temp>/texsnip
	Naming     string      `yaml:"naming"`     // "fixed" (default) or "unique"
	Timeout    string      `yaml:"timeout"`    // Go duration, empty = none
	Output     string      `yaml:"output"`     // Copy result here ("-" = stdout)
	Log        LogConfig   `yaml:"log"`
	Tools      ToolsConfig `yaml:"tools"`
}

// LogConfig defines log rendering options.
type LogConfig struct {
	Format string `yaml:"format"` // "console" (default) or "json"
}

// ToolsConfig overrides tool binaries. Argument lists are never configurable.
type ToolsConfig struct {
	Latex  string `yaml:"latex"`
	Dvipng string `yaml:"dvipng"`
	Magick string `yaml:"magick"`
}

// Validate checks enums, lengths and the timeout syntax.
func (c *Config) Validate() error {
	if err := validateFieldLength("scratchDir", c.ScratchDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output", c.Output, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("tools.latex", c.Tools.Latex, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("tools.dvipng", c.Tools.Dvipng, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("tools.magick", c.Tools.Magick, MaxPathLength); err != nil {
		return err
	}

	if err := validateFieldLength("naming", c.Naming, MaxEnumLength); err != nil {
		return err
	}
	switch strings.ToLower(c.Naming) {
	case "", NamingFixed, NamingUnique:
	default:
		return fmt.Errorf("%w: naming %q (must be fixed or unique)", ErrInvalidValue, c.Naming)
	}

	if err := validateFieldLength("log.format", c.Log.Format, MaxEnumLength); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log.format %q (must be console or json)", ErrInvalidValue, c.Log.Format)
	}

	if err := validateFieldLength("timeout", c.Timeout, MaxDurationLength); err != nil {
		return err
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	return nil
}

// TimeoutDuration parses Timeout. Empty means no timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: timeout %q: %v", ErrInvalidValue, c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: timeout %q must not be negative", ErrInvalidValue, c.Timeout)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration matching the fixed pipeline.
func DefaultConfig() *Config {
	return &Config{
		Naming: NamingFixed,
		Log:    LogConfig{Format: "console"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
// Keys missing from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the locations tried for a config name, in order.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/texsnip/
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "texsnip", name+ext))
		}
	}

	return paths
}

// resolveConfigPath returns the first existing entry of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
