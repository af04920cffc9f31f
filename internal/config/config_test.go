package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"codecomp-go/internal/model"
	"codecomp-go/internal/service/units"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func mapLookup(env map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}

	p := cfg.Pipeline
	if p.ModeValue() != units.ModeIDs {
		t.Fatalf("Expected mode ids, got '%s'", p.Mode)
	}
	if p.WindowSize != 100 {
		t.Fatalf("Expected window size 100, got %d", p.WindowSize)
	}
	if p.EffectiveStartOffset() != 1 {
		t.Fatalf("Expected start offset 1, got %d", p.EffectiveStartOffset())
	}
	if !p.Shuffle || p.ShuffleSeed != 777 {
		t.Fatalf("Expected shuffle with seed 777, got %v/%d", p.Shuffle, p.ShuffleSeed)
	}
	if p.Cache {
		t.Fatalf("Expected cache writes disabled by default")
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  mode: unified
  window_size: 50
  max_lines: 1000
  shuffle: false
  cache: true
logging:
  level: debug
  outputs: [stdout, run.log]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	p := cfg.Pipeline
	if p.ModeValue() != units.ModeUnified {
		t.Fatalf("Expected mode unified, got '%s'", p.Mode)
	}
	if p.EffectiveStartOffset() != 4 {
		t.Fatalf("Expected token mode start offset 4, got %d", p.EffectiveStartOffset())
	}
	if p.WindowSize != 50 || p.MaxLines != 1000 {
		t.Fatalf("Expected window 50 and max lines 1000, got %d/%d", p.WindowSize, p.MaxLines)
	}
	if p.Shuffle || !p.Cache {
		t.Fatalf("Expected shuffle off and cache on, got %v/%v", p.Shuffle, p.Cache)
	}
	// untouched keys keep their defaults
	if p.ShuffleSeed != 777 || p.Suggestions != 5 {
		t.Fatalf("Expected defaults to survive, got seed %d suggestions %d", p.ShuffleSeed, p.Suggestions)
	}
	if cfg.Logging.Level != "debug" || len(cfg.Logging.Outputs) != 2 {
		t.Fatalf("Unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadConfig_ExplicitZeroStartOffset(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "pipeline:\n  start_offset: 0\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Pipeline.EffectiveStartOffset() != 0 {
		t.Fatalf("Expected start offset 0, got %d", cfg.Pipeline.EffectiveStartOffset())
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CODECOMP_MODE", "tokens")
	t.Setenv("CODECOMP_WINDOW_SIZE", "20")

	cfg, err := LoadConfig(writeConfig(t, "pipeline:\n  mode: ids\n  window_size: 10\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Pipeline.Mode != "tokens" || cfg.Pipeline.WindowSize != 20 {
		t.Fatalf("Expected environment to win, got %s/%d", cfg.Pipeline.Mode, cfg.Pipeline.WindowSize)
	}
}

func TestLoad_DefersValidation(t *testing.T) {
	t.Setenv("CODECOMP_WINDOW_SIZE", "-1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Pipeline.WindowSize != -1 {
		t.Fatalf("Expected window size -1 from environment, got %d", cfg.Pipeline.WindowSize)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Expected validation error")
	}

	cfg.Pipeline.WindowSize = 8
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected overridden config to validate: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(mapLookup(map[string]string{
		"CODECOMP_START_OFFSET": "3",
		"CODECOMP_STEMMING":     "true",
		"CODECOMP_PUBLIC_ONLY":  "1",
		"CODECOMP_SHUFFLE_SEED": "42",
		"CODECOMP_LOG_OUTPUTS":  "stdout,all.log",
		"CODECOMP_SUGGESTIONS":  " ",
		"CODECOMP_LOG_ENCODING": "console",
		"UNRELATED_WINDOW_SIZE": "7",
	}))
	if err != nil {
		t.Fatalf("applyEnv failed: %v", err)
	}

	p := cfg.Pipeline
	if p.EffectiveStartOffset() != 3 || !p.Stemming || !p.PublicOnly || p.ShuffleSeed != 42 {
		t.Fatalf("Unexpected pipeline config: %+v", p)
	}
	if p.Suggestions != 5 || p.WindowSize != 100 {
		t.Fatalf("Blank and unrelated variables must not override, got %+v", p)
	}
	if len(cfg.Logging.Outputs) != 2 || cfg.Logging.Outputs[1] != "all.log" || cfg.Logging.Encoding != "console" {
		t.Fatalf("Unexpected logging config: %+v", cfg.Logging)
	}
}

func TestApplyEnv_InvalidValue(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(mapLookup(map[string]string{"CODECOMP_WINDOW_SIZE": "wide"}))

	var cfgErr *model.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got %v", err)
	}
	if cfgErr.Field != "CODECOMP_WINDOW_SIZE" {
		t.Fatalf("Expected field CODECOMP_WINDOW_SIZE, got '%s'", cfgErr.Field)
	}
}

func TestValidate(t *testing.T) {
	negative := -1
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"mode", func(c *Config) { c.Pipeline.Mode = "chars" }, "mode"},
		{"window", func(c *Config) { c.Pipeline.WindowSize = 0 }, "window_size"},
		{"start offset", func(c *Config) { c.Pipeline.StartOffset = &negative }, "start_offset"},
		{"max lines", func(c *Config) { c.Pipeline.MaxLines = -5 }, "max_lines"},
		{"memo", func(c *Config) { c.Pipeline.SegmentCacheSize = -1 }, "segment_cache_size"},
		{"suggestions", func(c *Config) { c.Pipeline.Suggestions = 0 }, "suggestions"},
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"encoding", func(c *Config) { c.Logging.Encoding = "xml" }, "logging.encoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			var cfgErr *model.ConfigError
			if err := cfg.Validate(); !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Fatalf("Expected field '%s', got '%s'", tt.field, cfgErr.Field)
			}
			if model.PolicyFor(cfgErr) != model.PolicyFatal {
				t.Fatalf("Config errors must be fatal")
			}
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("Expected error for missing file")
	}
	if _, err := LoadConfig(writeConfig(t, "pipeline: [unclosed")); err == nil {
		t.Fatalf("Expected error for malformed yaml")
	}
	if _, err := LoadConfig(writeConfig(t, "pipeline:\n  window_size: -3\n")); err == nil {
		t.Fatalf("Expected validation error")
	}
}
