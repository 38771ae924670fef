package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.Gemini.BaseURL)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, "checkpoints", cfg.Checkpoint.Dir)
	assert.Equal(t, 60, cfg.Scheduler.RequestsPerMinute)
	assert.Equal(t, 3, cfg.Scheduler.MaxRetries)
	assert.Equal(t, 5, cfg.Scheduler.RetryDelaySecs)
	assert.Zero(t, cfg.Scheduler.BatchSize, "per-level batch size applies unless overridden")
	assert.Equal(t, "warn", cfg.Validator.Policy)
	assert.Equal(t, "data", cfg.Source.Dir)
	assert.Equal(t, "wordlists", cfg.Output.Dir)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "wordforge.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
scheduler:
  batch_size: 10
  requests_per_minute: 15
validator:
  policy: reject
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Scheduler.BatchSize)
	assert.Equal(t, 15, cfg.Scheduler.RequestsPerMinute)
	assert.Equal(t, "reject", cfg.Validator.Policy)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.Scheduler.MaxRetries)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chTempDir(t)

	yaml := `
validator:
  policy: reject
log:
  level: debug
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0644))

	t.Setenv("WORDFORGE_VALIDATOR_POLICY", "requeue")
	t.Setenv("WORDFORGE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "requeue", cfg.Validator.Policy)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chTempDir(t)

	t.Setenv("WORDFORGE_GEMINI_KEY", "env-key")
	t.Setenv("WORDFORGE_SCHEDULER_MAX_RETRIES", "5")
	t.Setenv("WORDFORGE_SCHEDULER_BATCH_SIZE", "25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Gemini.Key)
	assert.Equal(t, 5, cfg.Scheduler.MaxRetries)
	assert.Equal(t, 25, cfg.Scheduler.BatchSize)
}

// The API key has no file entry in most deployments; it must be
// reachable through the environment alone.
func TestLoadEnvOnlyGeminiKey(t *testing.T) {
	chTempDir(t)

	t.Setenv("WORDFORGE_GEMINI_KEY", "env-only-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-only-key", cfg.Gemini.Key)
}

func validConfig() *Config {
	return &Config{
		Scheduler: SchedulerConfig{RequestsPerMinute: 60, MaxRetries: 3, RetryDelaySecs: 5},
		Validator: ValidatorConfig{Policy: "warn"},
		Store:     StoreConfig{Driver: "sqlite", DatabaseURL: "wordforge.db"},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_BadPolicy(t *testing.T) {
	cfg := validConfig()
	cfg.Validator.Policy = "strict"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validator.policy")
}

func TestValidate_SchedulerBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Scheduler.MaxRetries = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_retries")
}

func TestValidate_StoreDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")

	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
