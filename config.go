package gorkrepair

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	// DeciderQueue carries workflow ids the decider must re-evaluate.
	// Shared with the orchestrator.
	DeciderQueue = "_deciderQueue"

	// DeciderRepushDelaySeconds matches the orchestrator's normal decider enqueue delay
	DeciderRepushDelaySeconds int64 = 30
)

// ServiceConfig holds repair service parameters
type ServiceConfig struct {
	// DeciderQueue names the decider's input queue
	DeciderQueue string
}

// DefaultServiceConfig provides the orchestrator defaults
var DefaultServiceConfig = ServiceConfig{
	DeciderQueue: DeciderQueue,
}

// DynamoDBConfig locates the execution store table
type DynamoDBConfig struct {
	Region   string `yaml:"region"`
	Table    string `yaml:"table"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

// RedisConfig locates the queue layer
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password,omitempty"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// SystemTaskConfig declares or overrides one system task type
type SystemTaskConfig struct {
	Name  string `yaml:"name"`
	Async bool   `yaml:"async"`
}

// MetricsConfig selects where repush counters are reported
type MetricsConfig struct {
	// Exporter is one of "log", "stdout" or "none"
	Exporter string `yaml:"exporter"`
}

// Config models the operator tool's YAML configuration file
type Config struct {
	LogLevel     string             `yaml:"log_level"`
	DeciderQueue string             `yaml:"decider_queue"`
	Concurrency  int                `yaml:"concurrency"`
	DynamoDB     DynamoDBConfig     `yaml:"dynamodb"`
	Redis        RedisConfig        `yaml:"redis"`
	SystemTasks  []SystemTaskConfig `yaml:"system_tasks,omitempty"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		LogLevel:     "info",
		DeciderQueue: DeciderQueue,
		Concurrency:  4,
		DynamoDB: DynamoDBConfig{
			Region: "us-east-1",
			Table:  "workflow-executions",
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "conductor:queue:",
		},
		Metrics: MetricsConfig{Exporter: "log"},
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config bytes on top of DefaultConfig
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required fields
func (c Config) Validate() error {
	if strings.TrimSpace(c.DeciderQueue) == "" {
		return NewRepairError(ErrCodeValidation, "decider_queue must not be empty", "")
	}
	if c.DynamoDB.Table == "" {
		return NewRepairError(ErrCodeValidation, "dynamodb.table must not be empty", "")
	}
	if c.Redis.Addr == "" {
		return NewRepairError(ErrCodeValidation, "redis.addr must not be empty", "")
	}
	if c.Concurrency < 1 {
		return NewRepairError(ErrCodeValidation, "concurrency must be at least 1", "")
	}
	for _, st := range c.SystemTasks {
		if st.Name == "" {
			return NewRepairError(ErrCodeValidation, "system_tasks entries need a name", "")
		}
	}
	switch c.Metrics.Exporter {
	case "log", "stdout", "none":
	default:
		return NewRepairError(ErrCodeValidation, "unknown metrics.exporter "+c.Metrics.Exporter, "")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the configured zerolog level
func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, NewRepairError(ErrCodeValidation, "unknown log_level "+c.LogLevel, "").WithCause(err)
	}
	return lvl, nil
}

// ServiceConfig returns the repair service settings carried by the file config
func (c Config) ServiceConfig() ServiceConfig {
	return ServiceConfig{DeciderQueue: c.DeciderQueue}
}
