// Package config loads the evidencectl configuration file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/evidencekit/evidence"
)

// EnvKeyHex overrides the configured key with a hex-encoded key
const EnvKeyHex = "EVIDENCE_KEY_HEX"

// validate is shared; building a validator is expensive
var validate = validator.New()

// Config represents the evidencectl configuration
type Config struct {
	Archive  Archive  `yaml:"archive"`
	Cipher   string   `yaml:"cipher" validate:"oneof=aes-cbc aes-xts"`
	Key      Key      `yaml:"key"`
	Logging  Logging  `yaml:"logging"`
	Parallel Parallel `yaml:"parallel"`
	Metrics  Metrics  `yaml:"metrics"`
}

// Archive locates the directory records are stored in
type Archive struct {
	Dir string `yaml:"dir" validate:"required"`
}

// Key describes where the record key comes from
type Key struct {
	Source   string `yaml:"source" validate:"oneof=hex env password"`
	Hex      string `yaml:"hex" validate:"required_if=Source hex"`
	Env      string `yaml:"env" validate:"required_if=Source env"`
	Password string `yaml:"password" validate:"required_if=Source password"`
	Salt     string `yaml:"salt" validate:"required_if=Source password"`
	KDF      string `yaml:"kdf" validate:"oneof=argon2id pbkdf2"`
	Size     int    `yaml:"size" validate:"oneof=16 24 32 48 64"`

	// Fallback lists hex keys tried after the primary one when decoding
	Fallback []string `yaml:"fallback" validate:"dive,hexadecimal"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// Parallel controls batch decoding
type Parallel struct {
	Workers  int `yaml:"workers" validate:"min=0,max=1024"`
	MinBatch int `yaml:"min_batch" validate:"min=1,max=1000"`
}

// Metrics controls the Prometheus textfile output
type Metrics struct {
	Namespace string `yaml:"namespace"`
	Textfile  string `yaml:"textfile"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in every unset field
func ApplyDefaults(cfg *Config) {
	if cfg.Archive.Dir == "" {
		cfg.Archive.Dir = "./evidence"
	}
	if cfg.Cipher == "" {
		cfg.Cipher = evidence.CipherAESCBC.String()
	}
	if cfg.Key.Source == "" {
		cfg.Key.Source = "hex"
	}
	if cfg.Key.Source == "env" && cfg.Key.Env == "" {
		cfg.Key.Env = EnvKeyHex
	}
	if cfg.Key.KDF == "" {
		cfg.Key.KDF = "argon2id"
	}
	if cfg.Key.Size == 0 {
		cfg.Key.Size = evidence.DefaultKeySize
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Parallel.MinBatch == 0 {
		cfg.Parallel.MinBatch = 4
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "evidence"
	}
}

// Validate checks the configuration
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file, applies defaults and the
// EVIDENCE_KEY_HEX override, and validates the result
func LoadConfig(path string) (*Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadConfig is LoadConfig without validation, for callers that apply
// further overrides before validating
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}
	return decode(data)
}

// Parse decodes and validates a YAML configuration document
func Parse(data []byte) (*Config, error) {
	cfg, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvKeyHex)); v != "" && cfg.Key.Source == "hex" {
		cfg.Key.Hex = v
	}
}

// CipherSuite returns the configured cipher suite
func (c *Config) CipherSuite() (evidence.CipherSuite, error) {
	return evidence.ParseCipherSuite(c.Cipher)
}

// KeyProvider builds the key provider described by the key section. With
// fallback keys configured the result is a *evidence.MultiKeyProvider.
func (c *Config) KeyProvider() (evidence.KeyProvider, error) {
	var primary evidence.KeyProvider

	switch c.Key.Source {
	case "hex":
		key, err := evidence.DecodeHexKey(c.Key.Hex)
		if err != nil {
			return nil, err
		}
		primary = evidence.NewStaticKeyProvider(key)
	case "env":
		primary = evidence.NewEnvKeyProvider(c.Key.Env)
	case "password":
		if c.Key.KDF == "pbkdf2" {
			primary = evidence.NewPasswordKeyProviderPBKDF2([]byte(c.Key.Password), []byte(c.Key.Salt),
				evidence.PBKDF2Params{KeySize: c.Key.Size})
		} else {
			primary = evidence.NewPasswordKeyProvider([]byte(c.Key.Password), []byte(c.Key.Salt),
				evidence.Argon2idParams{KeySize: c.Key.Size})
		}
	default:
		return nil, fmt.Errorf("unsupported key source %q", c.Key.Source)
	}

	if len(c.Key.Fallback) == 0 {
		return primary, nil
	}

	providers := []evidence.KeyProvider{primary}
	for _, h := range c.Key.Fallback {
		key, err := evidence.DecodeHexKey(h)
		if err != nil {
			return nil, fmt.Errorf("invalid fallback key: %w", err)
		}
		providers = append(providers, evidence.NewStaticKeyProvider(key))
	}
	return evidence.NewMultiKeyProvider(providers...)
}

// ParallelConfig converts the parallel section for the decoder
func (c *Config) ParallelConfig() evidence.ParallelConfig {
	p := evidence.DefaultParallelConfig()
	if c.Parallel.Workers > 0 {
		p.MaxWorkers = c.Parallel.Workers
	}
	p.MinJobsForParallel = c.Parallel.MinBatch
	return p
}

// NewLogger builds a slog logger from the logging section
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
