package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"crosstalk/pkg/lang"
)

// Config is the full runtime configuration.
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Database  DatabaseConfig  `mapstructure:"database"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Translate TranslateConfig `mapstructure:"translate"`
	Redis     RedisConfig     `mapstructure:"redis"`
	LogLevel  string          `mapstructure:"log_level"`
}

type HTTPConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type WebSocketConfig struct {
	PingInterval time.Duration `mapstructure:"ping_interval"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BufferSize   int           `mapstructure:"buffer_size"`
}

type TranslateConfig struct {
	// EngineURL is the translation engine endpoint.
	EngineURL string `mapstructure:"engine_url"`
	// Workers bounds concurrent translation calls process-wide.
	Workers int `mapstructure:"workers"`
	// QueueSize bounds tasks waiting for a worker; submitters block once
	// the queue is full, they never fail.
	QueueSize int `mapstructure:"queue_size"`
	// HistoryLimit is the replay window on join.
	HistoryLimit int `mapstructure:"history_limit"`
	// FallbackLanguage is assumed for users with no stored preference.
	FallbackLanguage string `mapstructure:"fallback_language"`
}

type RedisConfig struct {
	// Addr enables the redis translation cache when non-empty.
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Load reads configuration from an optional yaml file plus CROSSTALK_*
// environment overrides, falling back to defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	fileName := os.Getenv("CROSSTALK_CONFIG")
	if fileName == "" {
		fileName = "config/config.yaml"
	}
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("crosstalk")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", "30s")
	v.SetDefault("http.write_timeout", "30s")
	v.SetDefault("database.path", "./data/crosstalk.db")
	v.SetDefault("database.timeout", "30s")
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.read_timeout", "60s")
	v.SetDefault("websocket.write_timeout", "10s")
	v.SetDefault("websocket.buffer_size", 100)
	v.SetDefault("translate.engine_url", "http://localhost:8090/translate")
	v.SetDefault("translate.workers", 3)
	v.SetDefault("translate.queue_size", 64)
	v.SetDefault("translate.history_limit", 50)
	v.SetDefault("translate.fallback_language", lang.Fallback)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "10m")
	v.SetDefault("log_level", "info")

	// A missing config file is fine; env overrides and defaults still apply.
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without touching files or the
// environment.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:    "./data/crosstalk.db",
			Timeout: 30 * time.Second,
		},
		WebSocket: WebSocketConfig{
			PingInterval: 30 * time.Second,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 10 * time.Second,
			BufferSize:   100,
		},
		Translate: TranslateConfig{
			EngineURL:        "http://localhost:8090/translate",
			Workers:          3,
			QueueSize:        64,
			HistoryLimit:     50,
			FallbackLanguage: lang.Fallback,
		},
		Redis: RedisConfig{
			CacheTTL: 10 * time.Minute,
		},
		LogLevel: "info",
	}
}

// Validate rejects configurations that would fail at runtime.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port must be between 1 and 65535")
	}
	if c.HTTP.Host == "" {
		return fmt.Errorf("http host cannot be empty")
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
		return fmt.Errorf("http timeouts must be positive")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.Database.Timeout <= 0 {
		return fmt.Errorf("database timeout must be positive")
	}
	if c.WebSocket.PingInterval <= 0 || c.WebSocket.ReadTimeout <= 0 || c.WebSocket.WriteTimeout <= 0 {
		return fmt.Errorf("websocket timeouts must be positive")
	}
	if c.WebSocket.BufferSize <= 0 {
		return fmt.Errorf("websocket buffer size must be positive")
	}
	if c.Translate.Workers <= 0 {
		return fmt.Errorf("translate workers must be positive")
	}
	if c.Translate.QueueSize <= 0 {
		return fmt.Errorf("translate queue size must be positive")
	}
	if c.Translate.HistoryLimit < 0 {
		return fmt.Errorf("history limit cannot be negative")
	}
	if !lang.IsValid(c.Translate.FallbackLanguage) {
		return fmt.Errorf("fallback language %q is not a supported code", c.Translate.FallbackLanguage)
	}
	return nil
}
