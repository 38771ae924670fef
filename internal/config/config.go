package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lexikit/wordforge/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	Checkpoint CheckpointConfig `yaml:"checkpoint" mapstructure:"checkpoint"`
	Scheduler  SchedulerConfig  `yaml:"scheduler" mapstructure:"scheduler"`
	Validator  ValidatorConfig  `yaml:"validator" mapstructure:"validator"`
	Source     SourceConfig     `yaml:"source" mapstructure:"source"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// CheckpointConfig configures the enrichment checkpoint log.
type CheckpointConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// SchedulerConfig configures batching, rate limiting, and retries.
type SchedulerConfig struct {
	// BatchSize overrides the per-level batch size when positive.
	BatchSize         int `yaml:"batch_size" mapstructure:"batch_size"`
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	MaxRetries        int `yaml:"max_retries" mapstructure:"max_retries"`
	RetryDelaySecs    int `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs"`
}

// ValidatorConfig configures record acceptance.
type ValidatorConfig struct {
	// Policy is warn, reject, or requeue.
	Policy string `yaml:"policy" mapstructure:"policy"`
}

// SourceConfig points at the local source datasets.
type SourceConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// OutputConfig configures artifact emission.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// FetchConfig configures source dataset downloads.
type FetchConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	TimeoutSecs       int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string            `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("WORDFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key needs a default registered, or viper's
	// Unmarshal never sees its env var.
	v.SetDefault("gemini.key", "")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("checkpoint.dir", "checkpoints")
	v.SetDefault("scheduler.batch_size", 0)
	v.SetDefault("scheduler.requests_per_minute", 60)
	v.SetDefault("scheduler.max_retries", 3)
	v.SetDefault("scheduler.retry_delay_secs", 5)
	v.SetDefault("validator.policy", "warn")
	v.SetDefault("source.dir", "data")
	v.SetDefault("output.dir", "wordlists")
	v.SetDefault("fetch.requests_per_minute", 30)
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "wordforge.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration for a generation run.
func (c *Config) Validate() error {
	var problems []string

	switch c.Validator.Policy {
	case "warn", "reject", "requeue":
	default:
		problems = append(problems, "validator.policy must be warn, reject, or requeue")
	}
	if c.Scheduler.RequestsPerMinute < 0 {
		problems = append(problems, "scheduler.requests_per_minute must be >= 0")
	}
	if c.Scheduler.MaxRetries < 1 {
		problems = append(problems, "scheduler.max_retries must be >= 1")
	}
	if c.Scheduler.RetryDelaySecs < 0 {
		problems = append(problems, "scheduler.retry_delay_secs must be >= 0")
	}
	switch c.Store.Driver {
	case "sqlite", "postgres", "":
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}
	if c.Store.Driver != "" && c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
