package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/alnah/go-texsnip/internal/config"
)

// ErrEnvFile is returned when --env-file cannot be read.
var ErrEnvFile = errors.New("failed to read env file")

// envPrefix marks texsnip environment variables.
const envPrefix = "TEXSNIP_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // TEXSNIP_CONFIG: config file name or path
	ScratchDir string // TEXSNIP_SCRATCH_DIR: scratch directory
	Timeout    string // TEXSNIP_TIMEOUT: run timeout (validated with the config)
	Naming     string // TEXSNIP_NAMING: fixed or unique
	LogFormat  string // TEXSNIP_LOG_FORMAT: console or json
	Latex      string // TEXSNIP_LATEX: latex binary
	Dvipng     string // TEXSNIP_DVIPNG: dvipng binary
	Magick     string // TEXSNIP_MAGICK: magick binary
}

// knownEnvVars lists valid TEXSNIP_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"TEXSNIP_CONFIG":      true,
	"TEXSNIP_SCRATCH_DIR": true,
	"TEXSNIP_TIMEOUT":     true,
	"TEXSNIP_NAMING":      true,
	"TEXSNIP_LOG_FORMAT":  true,
	"TEXSNIP_LATEX":       true,
	"TEXSNIP_DVIPNG":      true,
	"TEXSNIP_MAGICK":      true,
}

// loadEnvConfig reads configuration through getenv.
func loadEnvConfig(getenv func(string) string) *envConfig {
	return &envConfig{
		ConfigPath: getenv("TEXSNIP_CONFIG"),
		ScratchDir: getenv("TEXSNIP_SCRATCH_DIR"),
		Timeout:    getenv("TEXSNIP_TIMEOUT"),
		Naming:     getenv("TEXSNIP_NAMING"),
		LogFormat:  getenv("TEXSNIP_LOG_FORMAT"),
		Latex:      getenv("TEXSNIP_LATEX"),
		Dvipng:     getenv("TEXSNIP_DVIPNG"),
		Magick:     getenv("TEXSNIP_MAGICK"),
	}
}

// unknownEnvVars returns the unrecognized TEXSNIP_* names in environ, sorted.
// Helps catch typos like TEXSNIP_TIMOUT.
func unknownEnvVars(environ []string) []string {
	seen := make(map[string]bool)
	var unknown []string
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(name, envPrefix) || knownEnvVars[name] || seen[name] {
			continue
		}
		seen[name] = true
		unknown = append(unknown, name)
	}
	sort.Strings(unknown)
	return unknown
}

// warnUnknownEnvVars logs one warning per unrecognized variable.
func warnUnknownEnvVars(log zerolog.Logger, names []string) {
	for _, name := range names {
		log.Warn().Str("var", name).Msg("unknown environment variable (typo?)")
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the config file; CLI flags are applied later
// via mergeFlags, giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.ScratchDir != "" {
		cfg.ScratchDir = env.ScratchDir
	}
	if env.Timeout != "" {
		cfg.Timeout = env.Timeout
	}
	if env.Naming != "" {
		cfg.Naming = env.Naming
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.Latex != "" {
		cfg.Tools.Latex = env.Latex
	}
	if env.Dvipng != "" {
		cfg.Tools.Dvipng = env.Dvipng
	}
	if env.Magick != "" {
		cfg.Tools.Magick = env.Magick
	}
}

// envSource merges the process environment with an optional dotenv file.
// Variables already set in the process win over the file.
type envSource struct {
	getenv  func(string) string
	environ func() []string
	file    map[string]string
}

// newEnvSource reads path with godotenv when it is not empty.
func newEnvSource(env *Environment, path string) (*envSource, error) {
	src := &envSource{getenv: env.Getenv, environ: env.Environ}
	if path == "" {
		return src, nil
	}
	vals, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEnvFile, path, err)
	}
	src.file = vals
	return src, nil
}

// Getenv returns the process value, or the file value when unset.
func (s *envSource) Getenv(key string) string {
	if v := s.getenv(key); v != "" {
		return v
	}
	return s.file[key]
}

// Environ lists process variables followed by file-only variables.
func (s *envSource) Environ() []string {
	list := s.environ()
	for k, v := range s.file {
		if s.getenv(k) == "" {
			list = append(list, k+"="+v)
		}
	}
	return list
}

// resolveConfig builds the run configuration from the config file,
// environment and dotenv file. The caller merges CLI flags and then
// validates the result. It returns the unknown TEXSNIP_* variables for the caller to log.
func resolveConfig(common commonFlags, env *Environment) (*config.Config, []string, error) {
	src, err := newEnvSource(env, common.envFile)
	if err != nil {
		return nil, nil, err
	}
	envCfg := loadEnvConfig(src.Getenv)

	cfg := config.DefaultConfig()
	configName := common.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}
	if configName != "" {
		cfg, err = config.LoadConfig(configName)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, unknownEnvVars(src.Environ()), nil
}
