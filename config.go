package supremetask

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backend names accepted by StorageConfig.Type.
const (
	StorageLocal    = "local"
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config holds configuration for the engine and the defaults applied to
// every flow and task it runs.
type Config struct {
	// ResultStorage selects the default backend for persisted results.
	ResultStorage StorageConfig `yaml:"result_storage" json:"result_storage"`

	// ResultSerializer is the default serializer name ("json", "msgpack", "gob").
	ResultSerializer string `yaml:"result_serializer" json:"result_serializer"`

	// PersistResult is the default for tasks that do not set it explicitly.
	PersistResult bool `yaml:"persist_result" json:"persist_result"`

	// CacheResultInMemory keeps returned values on result handles.
	CacheResultInMemory bool `yaml:"cache_result_in_memory" json:"cache_result_in_memory"`

	// TaskTimeout bounds every task run that does not set its own timeout.
	// Zero disables the bound.
	TaskTimeout time.Duration `yaml:"task_timeout" json:"task_timeout"`

	// FlowTimeout bounds every flow run that does not set its own timeout.
	FlowTimeout time.Duration `yaml:"flow_timeout" json:"flow_timeout"`

	// LogLevel is the minimum level of the default logger.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// StorageConfig describes how to open a result storage backend.
type StorageConfig struct {
	Type string `yaml:"type" json:"type"`

	// BasePath is the root directory of local storage.
	BasePath string `yaml:"base_path" json:"base_path"`

	// RedisAddr and RedisPrefix configure redis storage.
	RedisAddr   string `yaml:"redis_addr" json:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix" json:"redis_prefix"`

	// PostgresDSN and PostgresTable configure postgres storage.
	PostgresDSN   string `yaml:"postgres_dsn" json:"postgres_dsn"`
	PostgresTable string `yaml:"postgres_table" json:"postgres_table"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ResultStorage: StorageConfig{
			Type:     StorageLocal,
			BasePath: ".supremetask/storage",
		},
		ResultSerializer:    "json",
		CacheResultInMemory: true,
		LogLevel:            "info",
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates the
// result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("supremetask: read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("supremetask: parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch c.ResultStorage.Type {
	case StorageLocal:
		if c.ResultStorage.BasePath == "" {
			return fmt.Errorf("%w: local storage requires base_path", ErrInvalidConfig)
		}
	case StorageMemory:
	case StorageRedis:
		if c.ResultStorage.RedisAddr == "" {
			return fmt.Errorf("%w: redis storage requires redis_addr", ErrInvalidConfig)
		}
	case StoragePostgres:
		if c.ResultStorage.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres storage requires postgres_dsn", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, c.ResultStorage.Type)
	}

	switch c.ResultSerializer {
	case "json", "msgpack", "gob":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSerializer, c.ResultSerializer)
	}

	if c.TaskTimeout < 0 || c.FlowTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	return nil
}
