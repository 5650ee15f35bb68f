package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{DataPath: "/data", Backend: "badger"},
		Jikan: JikanConfig{
			BaseURL:         "https://api.jikan.moe/v4",
			RequestsPerSec:  3,
			TopAnimeLimit:   25,
			SeasonLimit:     12,
			CharactersLimit: 15,
		},
		Search: SearchConfig{Debounce: 300 * time.Millisecond},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown log level", func(c *Config) { c.Logger.Level = "trace" }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }},
		{"empty data path", func(c *Config) { c.Storage.DataPath = "" }},
		{"relative jikan url", func(c *Config) { c.Jikan.BaseURL = "api.jikan.moe" }},
		{"zero rate", func(c *Config) { c.Jikan.RequestsPerSec = 0 }},
		{"limit above page size", func(c *Config) { c.Jikan.TopAnimeLimit = 26 }},
		{"zero limit", func(c *Config) { c.Jikan.CharactersLimit = 0 }},
		{"zero debounce", func(c *Config) { c.Search.Debounce = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(home, ".nimelist"), cfg.Storage.DataPath)
	assert.Equal(t, filepath.Join(home, ".nimelist", "snapshots"), cfg.Catalog.SnapshotPath)
	assert.Equal(t, "https://api.jikan.moe/v4", cfg.Jikan.BaseURL)
	assert.Equal(t, 25, cfg.Jikan.TopAnimeLimit)
	assert.Equal(t, 12, cfg.Jikan.SeasonLimit)
	assert.Equal(t, 15, cfg.Jikan.CharactersLimit)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 10*time.Minute, cfg.Catalog.TTL)
	assert.Equal(t, "https://watchnime.com/watch", cfg.Catalog.EpisodeURLBase)
	assert.True(t, cfg.Catalog.WatchSnapshots)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOG_LEVEL=debug\nSERVER_PORT=9000\nSEASON_LIMIT=5\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("LOG_LEVEL")
		_ = os.Unsetenv("SEASON_LIMIT")
	})

	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("STORE_BACKEND", "sqlite")

	cfg, err := Load(envFile, Overrides{"STORE_BACKEND": "badger"})
	require.NoError(t, err)

	// .env fills what the environment lacks.
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 5, cfg.Jikan.SeasonLimit)
	// Environment beats .env.
	assert.Equal(t, "9100", cfg.Server.Port)
	// Overrides beat the environment.
	assert.Equal(t, "badger", cfg.Storage.Backend)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CATALOG_TTL", "ten minutes")

	_, err := Load("", nil)
	assert.ErrorContains(t, err, "catalog_ttl")
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"), nil)
	assert.NoError(t, err)
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/anime", "/unused")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "anime"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("/abs/../abs/path", "")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("NIMELIST_TEST_KEY", "env")

	assert.Equal(t, "flag", getConfigValue("flag", "NIMELIST_TEST_KEY", "default"))
	assert.Equal(t, "env", getConfigValue("", "NIMELIST_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "NIMELIST_UNSET_KEY", "default"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a, ,http://b "))
	assert.Nil(t, splitList(""))
}
