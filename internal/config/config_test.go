package config

import (
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
	if cfg.Translate.Workers != 3 {
		t.Errorf("expected 3 translate workers by default, got %d", cfg.Translate.Workers)
	}
	if cfg.Translate.FallbackLanguage != "eng_Latn" {
		t.Errorf("expected eng_Latn fallback, got %q", cfg.Translate.FallbackLanguage)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"port too low", func(c *Config) { c.HTTP.Port = 0 }, true},
		{"port too high", func(c *Config) { c.HTTP.Port = 70000 }, true},
		{"empty host", func(c *Config) { c.HTTP.Host = "" }, true},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, true},
		{"zero db timeout", func(c *Config) { c.Database.Timeout = 0 }, true},
		{"zero buffer", func(c *Config) { c.WebSocket.BufferSize = 0 }, true},
		{"zero workers", func(c *Config) { c.Translate.Workers = 0 }, true},
		{"zero queue", func(c *Config) { c.Translate.QueueSize = 0 }, true},
		{"negative history", func(c *Config) { c.Translate.HistoryLimit = -1 }, true},
		{"unknown fallback", func(c *Config) { c.Translate.FallbackLanguage = "klingon" }, true},
		{"zero history ok", func(c *Config) { c.Translate.HistoryLimit = 0 }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CROSSTALK_CONFIG", "does-not-exist.yaml")
	t.Setenv("CROSSTALK_HTTP_PORT", "9191")
	t.Setenv("CROSSTALK_TRANSLATE_WORKERS", "5")
	t.Setenv("CROSSTALK_WEBSOCKET_PING_INTERVAL", "15s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port != 9191 {
		t.Errorf("expected port 9191 from env, got %d", cfg.HTTP.Port)
	}
	if cfg.Translate.Workers != 5 {
		t.Errorf("expected 5 workers from env, got %d", cfg.Translate.Workers)
	}
	if cfg.WebSocket.PingInterval != 15*time.Second {
		t.Errorf("expected 15s ping interval from env, got %s", cfg.WebSocket.PingInterval)
	}
}
