package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Adapter names accepted by batch.adapter.
const (
	AdapterRequest = "request"
	AdapterStream  = "stream"
)

// Store drivers accepted by store.driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the full application configuration.
type Config struct {
	STS     STSConfig     `yaml:"sts" mapstructure:"sts"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Retry   RetryConfig   `yaml:"retry" mapstructure:"retry"`
	Breaker BreakerConfig `yaml:"breaker" mapstructure:"breaker"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// STSConfig points at the remote risk calculator.
type STSConfig struct {
	RequestURL  string `yaml:"request_url" mapstructure:"request_url"`
	StreamURL   string `yaml:"stream_url" mapstructure:"stream_url"`
	Origin      string `yaml:"origin" mapstructure:"origin"`
	Referer     string `yaml:"referer" mapstructure:"referer"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	PacingMs    int    `yaml:"pacing_ms" mapstructure:"pacing_ms"`
}

// BatchConfig configures batch querying.
type BatchConfig struct {
	Adapter     string `yaml:"adapter" mapstructure:"adapter"`
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
	Resume      bool   `yaml:"resume" mapstructure:"resume"`
}

// RetryConfig configures retries of transient calculator failures.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// BreakerConfig configures the circuit breaker guarding the calculator.
type BreakerConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// CacheConfig configures the in-process reply cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	Size    int  `yaml:"size" mapstructure:"size"`
}

// StoreConfig configures the result database.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	// MaxConns and MinConns size the postgres pool.
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
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
	v.SetEnvPrefix("STSRISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sts.request_url", "https://riskcalc.sts.org/stswebriskcalc/v4.2/calculate")
	v.SetDefault("sts.stream_url", "wss://riskcalc.sts.org/stswebriskcalc/websocket/")
	v.SetDefault("sts.origin", "https://riskcalc.sts.org")
	v.SetDefault("sts.referer", "https://riskcalc.sts.org/stswebriskcalc/calculate")
	v.SetDefault("sts.user_agent", "stsrisk/1.0")
	v.SetDefault("sts.timeout_secs", 30)
	v.SetDefault("sts.pacing_ms", 1000)
	v.SetDefault("batch.adapter", AdapterRequest)
	v.SetDefault("batch.concurrency", 1)
	v.SetDefault("batch.resume", false)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 10000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.25)
	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.reset_timeout_secs", 30)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 256)
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.database_url", "stsrisk.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks values that Load cannot default away.
func (c *Config) Validate() error {
	switch c.Batch.Adapter {
	case AdapterRequest:
		if c.STS.RequestURL == "" {
			return eris.New("config: sts.request_url is required for the request adapter")
		}
	case AdapterStream:
		if c.STS.StreamURL == "" {
			return eris.New("config: sts.stream_url is required for the stream adapter")
		}
	default:
		return eris.Errorf("config: unknown batch.adapter %q", c.Batch.Adapter)
	}
	if c.STS.PacingMs <= 0 {
		return eris.Errorf("config: sts.pacing_ms must be positive, got %d", c.STS.PacingMs)
	}
	if c.Batch.Concurrency < 1 {
		return eris.Errorf("config: batch.concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}
	switch c.Store.Driver {
	case "", DriverSQLite, DriverPostgres:
	default:
		return eris.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if c.Store.MaxConns > 0 && c.Store.MinConns > c.Store.MaxConns {
		return eris.Errorf("config: store.min_conns %d exceeds store.max_conns %d", c.Store.MinConns, c.Store.MaxConns)
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
