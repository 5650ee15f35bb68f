// Package config loads application configuration from command-line flags,
// environment variables and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Jikan   JikanConfig
	Catalog CatalogConfig
	Search  SearchConfig
	Server  ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds watch-list persistence configuration.
type StorageConfig struct {
	DataPath string // directory holding the record store (default: ~/.nimelist)
	Backend  string // badger or sqlite (default: badger)
}

// JikanConfig holds the remote catalog source configuration.
type JikanConfig struct {
	BaseURL         string        // default: https://api.jikan.moe/v4
	Timeout         time.Duration // per request (default: 10s)
	RequestsPerSec  float64       // default: 3
	TopAnimeLimit   int           // default: 25
	SeasonLimit     int           // default: 12
	CharactersLimit int           // default: 15
}

// CatalogConfig holds catalog loading configuration.
type CatalogConfig struct {
	SnapshotPath   string        // directory with the local fallback snapshots
	EpisodeURLBase string        // prefix for synthesized episode links
	TTL            time.Duration // how long a loaded catalog is served before refetching
	WatchSnapshots bool          // reload when snapshot files change
}

// SearchConfig holds search configuration.
type SearchConfig struct {
	Debounce time.Duration // quiet period for live search (default: 300ms)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// Overrides maps environment keys to values that take precedence over the
// environment, typically collected from command-line flags.
type Overrides map[string]string

// LoadConfig parses the process command line and loads configuration with
// precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	fs := flag.CommandLine
	keys := map[string]*string{
		"ENV":                  fs.String("env", "", "Environment (development, staging, production)"),
		"LOG_LEVEL":            fs.String("log-level", "", "Log level (debug, info, warn, error)"),
		"DATA_PATH":            fs.String("data-path", "", "Directory for the watch-list store"),
		"STORE_BACKEND":        fs.String("store", "", "Record store backend (badger, sqlite)"),
		"JIKAN_BASE_URL":       fs.String("jikan-url", "", "Jikan API base URL"),
		"SNAPSHOT_PATH":        fs.String("snapshot-path", "", "Directory with local fallback snapshots"),
		"CATALOG_TTL":          fs.String("catalog-ttl", "", "How long a loaded catalog is reused (default: 10m)"),
		"WATCH_SNAPSHOTS":      fs.String("watch-snapshots", "", "Reload the catalog when snapshots change (default: true)"),
		"SERVER_PORT":          fs.String("port", "", "Server port (default: 8080)"),
		"SERVER_READ_TIMEOUT":  fs.String("read-timeout", "", "HTTP read timeout (default: 15s)"),
		"SERVER_WRITE_TIMEOUT": fs.String("write-timeout", "", "HTTP write timeout (default: 15s)"),
		"SERVER_IDLE_TIMEOUT":  fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)"),
	}
	envFile := fs.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	overrides := make(Overrides, len(keys))
	for key, value := range keys {
		overrides[key] = *value
	}
	return Load(*envFile, overrides)
}

// Load builds a Config from overrides, the environment, envFile and defaults.
// A missing envFile is not an error.
func Load(envFile string, overrides Overrides) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	get := func(key, def string) string {
		return getConfigValue(overrides[key], key, def)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: get("ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: get("LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath: get("DATA_PATH", ""),
			Backend:  strings.ToLower(get("STORE_BACKEND", "badger")),
		},
		Jikan: JikanConfig{
			BaseURL:         strings.TrimRight(get("JIKAN_BASE_URL", "https://api.jikan.moe/v4"), "/"),
			TopAnimeLimit:   getIntConfigValue(overrides["TOP_ANIME_LIMIT"], "TOP_ANIME_LIMIT", 25),
			SeasonLimit:     getIntConfigValue(overrides["SEASON_LIMIT"], "SEASON_LIMIT", 12),
			CharactersLimit: getIntConfigValue(overrides["TOP_CHARACTERS_LIMIT"], "TOP_CHARACTERS_LIMIT", 15),
		},
		Catalog: CatalogConfig{
			SnapshotPath:   get("SNAPSHOT_PATH", ""),
			EpisodeURLBase: strings.TrimRight(get("EPISODE_URL_BASE", "https://watchnime.com/watch"), "/"),
			WatchSnapshots: getBoolConfigValue(overrides["WATCH_SNAPSHOTS"], "WATCH_SNAPSHOTS", true),
		},
		Server: ServerConfig{
			Port:        get("SERVER_PORT", "8080"),
			CORSOrigins: splitList(get("CORS_ORIGINS", "*")),
		},
	}

	rps, err := strconv.ParseFloat(get("JIKAN_RATE", "3"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid jikan rate: %w", err)
	}
	cfg.Jikan.RequestsPerSec = rps

	durations := []struct {
		key, def string
		dst      *time.Duration
	}{
		{"JIKAN_TIMEOUT", "10s", &cfg.Jikan.Timeout},
		{"CATALOG_TTL", "10m", &cfg.Catalog.TTL},
		{"SEARCH_DEBOUNCE", "300ms", &cfg.Search.Debounce},
		{"SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
	}
	for _, d := range durations {
		raw := get(d.key, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.key), raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Storage.Backend {
	case "badger", "sqlite":
	default:
		return fmt.Errorf("invalid store backend: %s (must be badger or sqlite)", c.Storage.Backend)
	}
	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	u, err := url.Parse(c.Jikan.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid jikan base url: %q", c.Jikan.BaseURL)
	}
	if c.Jikan.RequestsPerSec <= 0 {
		return errors.New("jikan rate must be positive")
	}

	limits := map[string]int{
		"TOP_ANIME_LIMIT":      c.Jikan.TopAnimeLimit,
		"SEASON_LIMIT":         c.Jikan.SeasonLimit,
		"TOP_CHARACTERS_LIMIT": c.Jikan.CharactersLimit,
	}
	for key, v := range limits {
		// Jikan caps page size at 25.
		if v < 1 || v > 25 {
			return fmt.Errorf("%s must be between 1 and 25, got %d", key, v)
		}
	}

	if c.Search.Debounce <= 0 {
		return errors.New("search debounce must be positive")
	}

	return nil
}

func (c *Config) expandPaths() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	c.Storage.DataPath, err = expandPath(c.Storage.DataPath, filepath.Join(home, ".nimelist"))
	if err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}

	c.Catalog.SnapshotPath, err = expandPath(c.Catalog.SnapshotPath, filepath.Join(c.Storage.DataPath, "snapshots"))
	if err != nil {
		return fmt.Errorf("invalid snapshot path: %w", err)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// An empty path resolves to defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = abs
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1", "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	v := strings.ToLower(getConfigValue(flagValue, envKey, ""))
	if v == "" {
		return defaultValue
	}
	return v == "true" || v == "1" || v == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	v := getConfigValue(flagValue, envKey, "")
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
