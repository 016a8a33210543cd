// Package config loads adflow settings from a YAML or JSON file and the environment.
package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/adflow/internal/logging"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreLRU    = "lru"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "adflow.yaml"

// Environment overrides.
const (
	EnvAddr          = "ADFLOW_ADDR"
	EnvStore         = "ADFLOW_STORE"
	EnvStorePath     = "ADFLOW_STORE_PATH"
	EnvRedisAddr     = "ADFLOW_REDIS_ADDR"
	EnvRedisPassword = "ADFLOW_REDIS_PASSWORD"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvOpenAIModel   = "ADFLOW_OPENAI_MODEL"
	EnvLogLevel      = "ADFLOW_LOG_LEVEL"
	EnvEncryptionKey = "ADFLOW_ENCRYPTION_KEY"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Duration is a time.Duration written as "30s" or "24h" in config files.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config is the full application configuration.
type Config struct {
	Addr     string         `yaml:"addr" json:"addr"`
	MCPAddr  string         `yaml:"mcp_addr" json:"mcp_addr"`
	LogLevel string         `yaml:"log_level" json:"log_level"`
	LogJSON  bool           `yaml:"log_json" json:"log_json"`
	Store    StoreConfig    `yaml:"store" json:"store"`
	OpenAI   OpenAIConfig   `yaml:"openai" json:"openai"`
	Workflow WorkflowConfig `yaml:"workflow" json:"workflow"`
}

// StoreConfig selects and tunes the session store.
type StoreConfig struct {
	Kind  string      `yaml:"kind" json:"kind"`
	Path  string      `yaml:"path" json:"path"` // file store directory
	Size  int         `yaml:"size" json:"size"` // lru capacity
	Redis RedisConfig `yaml:"redis" json:"redis"`

	// EncryptionKey, base64 of 32 bytes, seals access tokens at rest.
	// FallbackKeys still decrypt sessions written before a rotation.
	EncryptionKey string   `yaml:"encryption_key" json:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys" json:"fallback_keys"`
}

// Keys decodes the encryption keys. active is nil when encryption is off.
func (s StoreConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	decode := func(name, v string) ([]byte, error) {
		k, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("%s is not valid base64: %w", name, err)
		}
		if len(k) != 32 {
			return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", name, len(k))
		}
		return k, nil
	}
	if active, err = decode("store.encryption_key", s.EncryptionKey); err != nil {
		return nil, nil, err
	}
	for i, v := range s.FallbackKeys {
		k, err := decode(fmt.Sprintf("store.fallback_keys[%d]", i), v)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, k)
	}
	return active, fallback, nil
}

// RedisConfig configures the Redis store and its session lock.
type RedisConfig struct {
	Addr     string   `yaml:"addr" json:"addr"`
	Password string   `yaml:"password" json:"password"`
	DB       int      `yaml:"db" json:"db"`
	Prefix   string   `yaml:"prefix" json:"prefix"`
	TTL      Duration `yaml:"ttl" json:"ttl"`
	LockTTL  Duration `yaml:"lock_ttl" json:"lock_ttl"`
}

// OpenAIConfig enables the model-backed intent classifier when APIKey is set.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key" json:"api_key"`
	Model  string `yaml:"model" json:"model"`
}

// WorkflowConfig tunes the orchestration rules.
type WorkflowConfig struct {
	CampaignTriggers []string `yaml:"campaign_triggers" json:"campaign_triggers"`
	ImageCount       int      `yaml:"image_count" json:"image_count"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Addr:     ":8080",
		MCPAddr:  ":8081",
		LogLevel: "info",
		Store: StoreConfig{
			Kind: StoreMemory,
			Path: filepath.Join(".adflow", "sessions"),
			Size: 1024,
			Redis: RedisConfig{
				Addr:    "localhost:6379",
				Prefix:  "adflow:session:",
				TTL:     Duration(24 * time.Hour),
				LockTTL: Duration(30 * time.Second),
			},
		},
		OpenAI: OpenAIConfig{Model: "gpt-4o-mini"},
	}
}

// Load reads path over the defaults, applies environment overrides and validates.
// A missing file is not an error: the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment, read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvAddr, &c.Addr)
	set(EnvStore, &c.Store.Kind)
	set(EnvStorePath, &c.Store.Path)
	set(EnvRedisAddr, &c.Store.Redis.Addr)
	set(EnvRedisPassword, &c.Store.Redis.Password)
	set(EnvOpenAIKey, &c.OpenAI.APIKey)
	set(EnvOpenAIModel, &c.OpenAI.Model)
	set(EnvLogLevel, &c.LogLevel)
	set(EnvEncryptionKey, &c.Store.EncryptionKey)
}

// Validate reports every problem at once, each wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...)))
	}

	c.Store.Kind = strings.ToLower(strings.TrimSpace(c.Store.Kind))
	switch c.Store.Kind {
	case StoreMemory:
	case StoreLRU:
		if c.Store.Size <= 0 {
			bad("store.size must be positive, got %d", c.Store.Size)
		}
	case StoreFile:
		if c.Store.Path == "" {
			bad("store.path is required for the file store")
		}
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			bad("store.redis.addr is required for the redis store")
		}
	default:
		bad("unknown store kind %q", c.Store.Kind)
	}
	if len(c.Store.FallbackKeys) > 0 && c.Store.EncryptionKey == "" {
		bad("store.fallback_keys set without store.encryption_key")
	}
	if _, _, err := c.Store.Keys(); err != nil {
		bad("%v", err)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		bad("%v", err)
	}
	if c.Workflow.ImageCount < 0 {
		bad("workflow.image_count must not be negative")
	}
	return errors.Join(errs...)
}
