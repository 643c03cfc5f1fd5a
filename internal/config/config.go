// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

// Package config loads application configuration with Koanf v2, layering
// struct defaults, an optional YAML file, and environment variables.
// Precedence: ENV > file > defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/tastematch/internal/validation"
)

// ConfigPathEnvVar names the environment variable that overrides the config
// file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tastematch/config.yaml",
}

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Cache      CacheConfig      `koanf:"cache"`
	Metadata   MetadataConfig   `koanf:"metadata"`
	Similarity SimilarityConfig `koanf:"similarity"`
	Recommend  RecommendConfig  `koanf:"recommend"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	// RateLimit is requests per client per RateLimitWindow; 0 disables limiting.
	RateLimit       int           `koanf:"rate_limit" validate:"gte=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig mirrors the logging package configuration.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// CacheConfig holds the TTLs for each cached computation.
type CacheConfig struct {
	TasteMapTTL     time.Duration `koanf:"taste_map_ttl"`
	SimilarUsersTTL time.Duration `koanf:"similar_users_ttl"`
	SimilarityTTL   time.Duration `koanf:"similarity_ttl"`
	MetadataTTL     time.Duration `koanf:"metadata_ttl"`
}

// MetadataConfig configures the external metadata provider client.
type MetadataConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
	// RequestsPerSecond and Burst feed the client-side rate limiter.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gt=0"`
	Burst             int     `koanf:"burst" validate:"gt=0"`
	// BatchSize bounds concurrent enrichment lookups; BatchDelay is the pause
	// between batches.
	BatchSize  int           `koanf:"batch_size" validate:"gt=0"`
	BatchDelay time.Duration `koanf:"batch_delay"`
	CastLimit  int           `koanf:"cast_limit" validate:"gt=0"`
}

// SimilarityConfig holds the thresholds of the similar-user search.
type SimilarityConfig struct {
	// MinUserHistory is the record count below which no similarity is computed.
	MinUserHistory int `koanf:"min_user_history" validate:"gt=0"`
	// SampleActiveUsers caps the candidate pool drawn per sampling stage.
	SampleActiveUsers int `koanf:"sample_active_users" validate:"gt=0"`
	// MinCandidates is the pool size under which the next sampling stage runs.
	MinCandidates    int `koanf:"min_candidates" validate:"gt=0"`
	RecentWindowDays int `koanf:"recent_window_days" validate:"gt=0"`
	WideWindowDays   int `koanf:"wide_window_days" validate:"gt=0"`
	// MaxLimit caps the similar-user list length a caller may request.
	MaxLimit int `koanf:"max_limit" validate:"gt=0"`
	// ProfileRecordCap bounds how many records are enriched per taste map.
	ProfileRecordCap int `koanf:"profile_record_cap" validate:"gt=0"`
}

// RecommendConfig holds recommendation selection policy.
type RecommendConfig struct {
	CooldownDays int `koanf:"cooldown_days" validate:"gte=0"`
	// LogPath is the Badger directory for the recommendation audit log.
	// Empty selects the in-memory log.
	LogPath string `koanf:"log_path"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			TasteMapTTL:     24 * time.Hour,
			SimilarUsersTTL: 24 * time.Hour,
			SimilarityTTL:   24 * time.Hour,
			MetadataTTL:     24 * time.Hour,
		},
		Metadata: MetadataConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 4,
			Burst:             8,
			BatchSize:         5,
			BatchDelay:        200 * time.Millisecond,
			CastLimit:         20,
		},
		Similarity: SimilarityConfig{
			MinUserHistory:    5,
			SampleActiveUsers: 100,
			MinCandidates:     10,
			RecentWindowDays:  30,
			WideWindowDays:    90,
			MaxLimit:          50,
			ProfileRecordCap:  50,
		},
		Recommend: RecommendConfig{
			CooldownDays: 7,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// TASTEMATCH_-prefixed environment variables, then validates it.
//
//	TASTEMATCH_SERVER_PORT=9090
//	TASTEMATCH_METADATA_API_KEY=...
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("TASTEMATCH_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks field constraints across the whole configuration tree.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists the config paths parsed as comma-separated slices
// when they arrive via environment variables.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice when set from the YAML file
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// The section is everything before the first underscore; the remainder is
// the leaf name, which may itself contain underscores.
//
//	TASTEMATCH_SERVER_PORT         -> server.port
//	TASTEMATCH_METADATA_API_KEY    -> metadata.api_key
//	TASTEMATCH_CACHE_TASTE_MAP_TTL -> cache.taste_map_ttl
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "TASTEMATCH_"))

	idx := strings.Index(key, "_")
	if idx < 0 {
		return key
	}
	return key[:idx] + "." + key[idx+1:]
}
