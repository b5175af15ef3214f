package gorkrepair

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesignConstants(t *testing.T) {
	assert.Equal(t, "_deciderQueue", DeciderQueue)
	assert.Equal(t, int64(30), DeciderRepushDelaySeconds)
	assert.Equal(t, DeciderQueue, DefaultServiceConfig.DeciderQueue)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DeciderQueue, cfg.DeciderQueue)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "workflow-executions", cfg.DynamoDB.Table)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "log", cfg.Metrics.Exporter)
	assert.NoError(t, cfg.Validate())
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
log_level: debug
concurrency: 8
dynamodb:
  region: eu-west-1
  table: conductor
  endpoint: http://localhost:8000
redis:
  addr: redis:6379
  db: 2
  key_prefix: "prod:"
system_tasks:
  - name: HTTP
    async: true
  - name: INLINE
metrics:
  exporter: stdout
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, DeciderQueue, cfg.DeciderQueue, "unset fields keep their defaults")
	assert.Equal(t, DynamoDBConfig{Region: "eu-west-1", Table: "conductor", Endpoint: "http://localhost:8000"}, cfg.DynamoDB)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "prod:", cfg.Redis.KeyPrefix)
	assert.Equal(t, []SystemTaskConfig{{Name: "HTTP", Async: true}, {Name: "INLINE"}}, cfg.SystemTasks)
	assert.Equal(t, "stdout", cfg.Metrics.Exporter)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)
	assert.Equal(t, ServiceConfig{DeciderQueue: DeciderQueue}, cfg.ServiceConfig())
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "dynamodb: [oops"},
		{"empty decider queue", "decider_queue: \"\""},
		{"empty table", "dynamodb:\n  table: \"\""},
		{"empty redis addr", "redis:\n  addr: \"\""},
		{"zero concurrency", "concurrency: 0"},
		{"unnamed system task", "system_tasks:\n  - async: true"},
		{"unknown log level", "log_level: loud"},
		{"unknown metrics exporter", "metrics:\n  exporter: prometheus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repair.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decider_queue: decider\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "decider", cfg.DeciderQueue)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
