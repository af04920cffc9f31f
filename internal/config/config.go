package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"codecomp-go/internal/model"
	"codecomp-go/internal/service/units"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "CODECOMP_"

type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type PipelineConfig struct {
	Mode       string `yaml:"mode"`
	WindowSize int    `yaml:"window_size"`
	// StartOffset defaults to the start offset of the mode when unset
	StartOffset      *int   `yaml:"start_offset"`
	MaxLines         int    `yaml:"max_lines"`
	Stemming         bool   `yaml:"stemming"`
	PublicOnly       bool   `yaml:"public_only"`
	Shuffle          bool   `yaml:"shuffle"`
	ShuffleSeed      uint64 `yaml:"shuffle_seed"`
	Cache            bool   `yaml:"cache"`
	SegmentCacheSize int    `yaml:"segment_cache_size"`
	Suggestions      int    `yaml:"suggestions"`
}

type LoggingConfig struct {
	Level    string   `yaml:"level"`
	Outputs  []string `yaml:"outputs"`
	Encoding string   `yaml:"encoding"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Mode:             string(units.ModeIDs),
			WindowSize:       100,
			Shuffle:          true,
			ShuffleSeed:      777,
			SegmentCacheSize: 1 << 16,
			Suggestions:      5,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Outputs:  []string{"stderr"},
			Encoding: "json",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies CODECOMP_*
// environment overrides. The result is not validated, so callers can layer
// further overrides first. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load followed by Validate
func LoadConfig(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ModeValue returns the pipeline mode
func (p *PipelineConfig) ModeValue() units.Mode {
	return units.Mode(p.Mode)
}

// EffectiveStartOffset resolves an unset start offset to the mode default
func (p *PipelineConfig) EffectiveStartOffset() int {
	if p.StartOffset != nil {
		return *p.StartOffset
	}
	return p.ModeValue().DefaultStartOffset()
}

// Validate reports the first invalid field as a *model.ConfigError
func (c *Config) Validate() error {
	p := &c.Pipeline
	if _, err := units.ParseMode(p.Mode); err != nil {
		return err
	}
	if p.WindowSize <= 0 {
		return &model.ConfigError{Field: "window_size", Reason: "must be positive"}
	}
	if p.StartOffset != nil && *p.StartOffset < 0 {
		return &model.ConfigError{Field: "start_offset", Reason: "must not be negative"}
	}
	if p.MaxLines < 0 {
		return &model.ConfigError{Field: "max_lines", Reason: "must not be negative"}
	}
	if p.SegmentCacheSize < 0 {
		return &model.ConfigError{Field: "segment_cache_size", Reason: "must not be negative"}
	}
	if p.Suggestions <= 0 {
		return &model.ConfigError{Field: "suggestions", Reason: "must be positive"}
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return &model.ConfigError{Field: "logging.level", Reason: err.Error()}
	}
	switch c.Logging.Encoding {
	case "json", "console":
	default:
		return &model.ConfigError{Field: "logging.encoding", Reason: fmt.Sprintf("unknown encoding %q", c.Logging.Encoding)}
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	p := &c.Pipeline
	env := envReader{lookup: lookup}

	env.readString("MODE", &p.Mode)
	env.readInt("WINDOW_SIZE", &p.WindowSize)
	if _, ok := env.get("START_OFFSET"); ok {
		n := 0
		env.readInt("START_OFFSET", &n)
		p.StartOffset = &n
	}
	env.readInt("MAX_LINES", &p.MaxLines)
	env.readBool("STEMMING", &p.Stemming)
	env.readBool("PUBLIC_ONLY", &p.PublicOnly)
	env.readBool("SHUFFLE", &p.Shuffle)
	env.readUint("SHUFFLE_SEED", &p.ShuffleSeed)
	env.readBool("CACHE", &p.Cache)
	env.readInt("SEGMENT_CACHE_SIZE", &p.SegmentCacheSize)
	env.readInt("SUGGESTIONS", &p.Suggestions)
	env.readString("LOG_LEVEL", &c.Logging.Level)
	env.readString("LOG_ENCODING", &c.Logging.Encoding)
	if v, ok := env.get("LOG_OUTPUTS"); ok {
		c.Logging.Outputs = strings.Split(v, ",")
	}

	return env.err
}

// envReader keeps the first parse failure
type envReader struct {
	lookup lookupFunc
	err    error
}

func (e *envReader) get(name string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + name)
	return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
}

func (e *envReader) fail(name string, err error) {
	if e.err == nil {
		e.err = &model.ConfigError{Field: EnvPrefix + name, Reason: err.Error()}
	}
}

func (e *envReader) readString(name string, dst *string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *envReader) readInt(name string, dst *int) {
	if v, ok := e.get(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) readUint(name string, dst *uint64) {
	if v, ok := e.get(name); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) readBool(name string, dst *bool) {
	if v, ok := e.get(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = b
	}
}
