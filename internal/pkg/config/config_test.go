package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullYAML = `
api:
  base_url: "https://agent.example.com/api"
  session_file: "/tmp/agent.session"
  request_timeout: 20s
summaries:
  poll_interval: 500ms
  wait_timeout: 2m
  default_days: 14
notify:
  bot_token: "123456:token"
  chat_id: -100500
server:
  host: "0.0.0.0"
  port: 9000
  path_prefix: "/v1"
  shutdown_timeout: 5s
  verification_code: "11111"
  verification_ttl: 1m
  job_ttl: 1h
  job_timeout: 30s
  cleanup_interval: 10m
  seed_files:
    - "export1.json"
    - "export2.json"
  seed_rebase: true
logging:
  level: "debug"
  format: "json"
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func TestLoadFromYAML(t *testing.T) {
	t.Run("success with full config", func(t *testing.T) {
		cfg := defaultConfig()
		err := loadFromYAML(createTempConfigFile(t, fullYAML), cfg)
		require.NoError(t, err)

		assert.Equal(t, "https://agent.example.com/api", cfg.API.BaseURL)
		assert.Equal(t, "/tmp/agent.session", cfg.API.SessionFile)
		assert.Equal(t, 20*time.Second, cfg.API.RequestTimeout)

		assert.Equal(t, 500*time.Millisecond, cfg.Summaries.PollInterval)
		assert.Equal(t, 2*time.Minute, cfg.Summaries.WaitTimeout)
		assert.Equal(t, 14, cfg.Summaries.DefaultDays)

		assert.True(t, cfg.Notify.Enabled())
		assert.Equal(t, int64(-100500), cfg.Notify.ChatID)

		assert.Equal(t, "0.0.0.0:9000", cfg.Address())
		assert.Equal(t, "/v1", cfg.Server.PathPrefix)
		assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, "11111", cfg.Server.VerificationCode)
		assert.Equal(t, time.Minute, cfg.Server.VerificationTTL)
		assert.Equal(t, time.Hour, cfg.Server.JobTTL)
		assert.Equal(t, 30*time.Second, cfg.Server.JobTimeout)
		assert.Equal(t, []string{"export1.json", "export2.json"}, cfg.Server.SeedFiles)
		assert.True(t, cfg.Server.SeedRebase)

		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		cfg := defaultConfig()
		err := loadFromYAML(createTempConfigFile(t, "logging:\n  level: warn\n"), cfg)
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, DefaultAPIURL, cfg.API.BaseURL)
		assert.Equal(t, DefaultPollInterval, cfg.Summaries.PollInterval)
	})

	t.Run("file not found is not an error", func(t *testing.T) {
		cfg := defaultConfig()
		err := loadFromYAML("non_existent_file.yml", cfg)
		assert.NoError(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		cfg := defaultConfig()
		err := loadFromYAML(createTempConfigFile(t, "invalid yaml: {"), cfg)
		assert.Error(t, err)
	})
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("API_URL", "http://backend:8000/api")
	t.Setenv("SERVER_PORT", "8181")
	t.Setenv("NOTIFY_CHAT_ID", "42")
	t.Setenv("SEED_FILE", "chat.json")

	cfg, err := LoadConfig(createTempConfigFile(t, fullYAML))
	require.NoError(t, err)

	assert.Equal(t, "http://backend:8000/api", cfg.API.BaseURL)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, int64(42), cfg.Notify.ChatID)
	assert.Equal(t, []string{"chat.json"}, cfg.Server.SeedFiles)
}

func TestLoadConfig_DefaultBaseURL(t *testing.T) {
	t.Setenv("API_URL", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	validConfig := func(t *testing.T) *Config {
		cfg := defaultConfig()
		err := loadFromYAML(createTempConfigFile(t, fullYAML), cfg)
		require.NoError(t, err)
		return cfg
	}

	testCases := []struct {
		name    string
		mutator func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"defaults are valid", func(c *Config) { *c = *defaultConfig() }, false},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, true},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://host/api" }, true},
		{"negative request timeout", func(c *Config) { c.API.RequestTimeout = -time.Second }, true},
		{"zero poll interval", func(c *Config) { c.Summaries.PollInterval = 0 }, true},
		{"negative wait timeout", func(c *Config) { c.Summaries.WaitTimeout = -1 }, true},
		{"zero default days", func(c *Config) { c.Summaries.DefaultDays = 0 }, true},
		{"token without chat", func(c *Config) { c.Notify.ChatID = 0 }, true},
		{"invalid port", func(c *Config) { c.Server.Port = 0 }, true},
		{"invalid shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }, true},
		{"empty verification code", func(c *Config) { c.Server.VerificationCode = "" }, true},
		{"invalid verification ttl", func(c *Config) { c.Server.VerificationTTL = 0 }, true},
		{"invalid job ttl", func(c *Config) { c.Server.JobTTL = 0 }, true},
		{"invalid job timeout", func(c *Config) { c.Server.JobTimeout = -1 }, true},
		{"invalid cleanup interval", func(c *Config) { c.Server.CleanupInterval = 0 }, true},
		{"invalid logging level", func(c *Config) { c.Logging.Level = "wrong" }, true},
		{"invalid logging format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutator(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
