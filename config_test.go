package supremetask_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	supremetask "github.com/marwan116/supreme-task"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := supremetask.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
	if cfg.ResultSerializer != "json" {
		t.Errorf("ResultSerializer = %q, want %q", cfg.ResultSerializer, "json")
	}
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "supremetask.yaml")
	body := []byte(`
result_storage:
  type: redis
  redis_addr: localhost:6379
  redis_prefix: "st:"
result_serializer: msgpack
persist_result: true
task_timeout: 30s
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := supremetask.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ResultStorage.Type != supremetask.StorageRedis {
		t.Errorf("ResultStorage.Type = %q, want redis", cfg.ResultStorage.Type)
	}
	if cfg.ResultStorage.RedisPrefix != "st:" {
		t.Errorf("RedisPrefix = %q, want %q", cfg.ResultStorage.RedisPrefix, "st:")
	}
	if cfg.ResultSerializer != "msgpack" {
		t.Errorf("ResultSerializer = %q, want msgpack", cfg.ResultSerializer)
	}
	if !cfg.PersistResult {
		t.Error("PersistResult = false, want true")
	}
	if cfg.TaskTimeout != 30*time.Second {
		t.Errorf("TaskTimeout = %v, want 30s", cfg.TaskTimeout)
	}
	// Untouched fields keep their defaults.
	if !cfg.CacheResultInMemory {
		t.Error("CacheResultInMemory = false, want default true")
	}
}

func TestConfig_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*supremetask.Config)
		want   error
	}{
		{"unknown storage", func(c *supremetask.Config) { c.ResultStorage.Type = "s3" }, supremetask.ErrUnknownStorage},
		{"local without path", func(c *supremetask.Config) { c.ResultStorage.BasePath = "" }, supremetask.ErrInvalidConfig},
		{"redis without addr", func(c *supremetask.Config) { c.ResultStorage.Type = supremetask.StorageRedis }, supremetask.ErrInvalidConfig},
		{"postgres without dsn", func(c *supremetask.Config) { c.ResultStorage.Type = supremetask.StoragePostgres }, supremetask.ErrInvalidConfig},
		{"unknown serializer", func(c *supremetask.Config) { c.ResultSerializer = "pickle" }, supremetask.ErrUnknownSerializer},
		{"negative timeout", func(c *supremetask.Config) { c.TaskTimeout = -time.Second }, supremetask.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := supremetask.DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := supremetask.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig(missing) = %v, want os.ErrNotExist", err)
	}
}
