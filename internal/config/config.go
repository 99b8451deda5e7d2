// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Jitter modes accepted in Config.Jitter
var jitterModes = map[string]bool{"": true, "none": true, "id": true, "random": true}

// maxAnonymizationKeyBytes mirrors the blake2b key limit.
const maxAnonymizationKeyBytes = 64

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values come from the environment, then defaults.
type Config struct {
	// Candidate sources, mutually exclusive
	CandidatesFile string `json:"candidates_file,omitempty" yaml:"candidates_file,omitempty"` // Path to a JSON array of candidate records
	SourceURL      string `json:"source_url,omitempty" yaml:"source_url,omitempty"`           // Base URL of the parsing service API
	DatabaseURL    string `json:"database_url,omitempty" yaml:"database_url,omitempty"`       // PostgreSQL connection URL

	// Enrichment cache
	RedisAddr       string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisPassword   string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisTTLSeconds int    `json:"redis_ttl_seconds,omitempty" yaml:"redis_ttl_seconds,omitempty"`

	// Scoring
	Jitter           string `json:"jitter,omitempty" yaml:"jitter,omitempty"`                       // none, id or random
	JitterSeed       uint64 `json:"jitter_seed,omitempty" yaml:"jitter_seed,omitempty"`             // Seed for random jitter; 0 picks one
	AnonymizationKey string `json:"anonymization_key,omitempty" yaml:"anonymization_key,omitempty"` // Enables keyed one-way labels
	Workers          int    `json:"workers,omitempty" yaml:"workers,omitempty"`                     // Enrichment workers; 0 uses GOMAXPROCS

	// Server
	Port           int     `json:"port,omitempty" yaml:"port,omitempty"`
	RateLimitRPS   float64 `json:"rate_limit_rps,omitempty" yaml:"rate_limit_rps,omitempty"`     // Requests per second per client
	RateLimitBurst int     `json:"rate_limit_burst,omitempty" yaml:"rate_limit_burst,omitempty"` // Burst per client
	SourceRPS      float64 `json:"source_rps,omitempty" yaml:"source_rps,omitempty"`             // Outbound requests per second to the source API

	// Behavior
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"` // Print detailed debug information
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		RedisTTLSeconds: 600,
		Jitter:          "none",
		Port:            8080,
		RateLimitRPS:    10,
		RateLimitBurst:  20,
		SourceRPS:       10,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables. Malformed numbers are ignored.
func FromEnv() Config {
	return Config{
		CandidatesFile:   env("CANDIDATES_FILE"),
		SourceURL:        env("CANDIDATE_SOURCE_URL"),
		DatabaseURL:      env("DATABASE_URL"),
		RedisAddr:        env("REDIS_ADDR"),
		RedisPassword:    env("REDIS_PASSWORD"),
		RedisTTLSeconds:  envInt("REDIS_TTL"),
		Jitter:           env("SCORE_JITTER"),
		JitterSeed:       envUint("SCORE_JITTER_SEED"),
		AnonymizationKey: env("ANONYMIZATION_KEY"),
		Workers:          envInt("ENRICH_WORKERS"),
		Port:             envInt("PORT"),
		RateLimitRPS:     envFloat("RATE_LIMIT_RPS"),
		RateLimitBurst:   envInt("RATE_LIMIT_BURST"),
		SourceRPS:        envFloat("SOURCE_RPS"),
	}
}

// Load reads the optional file at path and fills unset values from the environment and defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = *fileCfg
	}

	cfg = cfg.MergeWithDefaults(FromEnv())
	cfg = cfg.MergeWithDefaults(Default())

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	sources := 0
	for _, s := range []string{c.CandidatesFile, c.SourceURL, c.DatabaseURL} {
		if s != "" {
			sources++
		}
	}
	if sources > 1 {
		return fmt.Errorf("config error: 'candidates_file', 'source_url' and 'database_url' are mutually exclusive")
	}

	if !jitterModes[strings.ToLower(c.Jitter)] {
		return fmt.Errorf("config error: 'jitter' must be one of none, id, random (got %q)", c.Jitter)
	}

	if len(c.AnonymizationKey) > maxAnonymizationKeyBytes {
		return fmt.Errorf("config error: 'anonymization_key' must be at most %d bytes", maxAnonymizationKeyBytes)
	}

	// Validate numeric ranges
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}
	if c.RedisTTLSeconds < 0 {
		return fmt.Errorf("config error: 'redis_ttl_seconds' must be non-negative")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 || c.SourceRPS < 0 {
		return fmt.Errorf("config error: rate limits must be non-negative")
	}

	// Validate file paths exist (if specified)
	if c.CandidatesFile != "" {
		if _, err := os.Stat(c.CandidatesFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: candidates file not found: %s", c.CandidatesFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer the config file over the environment and built-in defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.CandidatesFile == "" {
		result.CandidatesFile = defaults.CandidatesFile
	}
	if result.SourceURL == "" {
		result.SourceURL = defaults.SourceURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisAddr == "" {
		result.RedisAddr = defaults.RedisAddr
	}
	if result.RedisPassword == "" {
		result.RedisPassword = defaults.RedisPassword
	}
	if result.Jitter == "" {
		result.Jitter = defaults.Jitter
	}
	if result.AnonymizationKey == "" {
		result.AnonymizationKey = defaults.AnonymizationKey
	}

	// Numeric fields: use default if zero
	if result.RedisTTLSeconds == 0 {
		result.RedisTTLSeconds = defaults.RedisTTLSeconds
	}
	if result.JitterSeed == 0 {
		result.JitterSeed = defaults.JitterSeed
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RateLimitRPS == 0 {
		result.RateLimitRPS = defaults.RateLimitRPS
	}
	if result.RateLimitBurst == 0 {
		result.RateLimitBurst = defaults.RateLimitBurst
	}
	if result.SourceRPS == 0 {
		result.SourceRPS = defaults.SourceRPS
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envInt(key string) int {
	v, err := strconv.Atoi(env(key))
	if err != nil {
		return 0
	}
	return v
}

func envUint(key string) uint64 {
	v, err := strconv.ParseUint(env(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func envFloat(key string) float64 {
	v, err := strconv.ParseFloat(env(key), 64)
	if err != nil {
		return 0
	}
	return v
}
