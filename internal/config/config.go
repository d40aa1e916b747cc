// Package config loads the server's environment-variable configuration,
// following the teacher's os.Getenv-driven style (internal/config.LoadImposterConfig)
// generalised to the variable set in spec.md §6.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/opsmock/mockserver-go/pkg/utils"
)

// PersistenceDriver selects which backend stores the expectation set.
type PersistenceDriver string

const (
	DriverFile     PersistenceDriver = "file"
	DriverRedis    PersistenceDriver = "redis"
	DriverDynamoDB PersistenceDriver = "dynamodb"
)

// Config holds the process-wide configuration for one server instance.
// It is built once at startup by Load and passed down explicitly, rather
// than read piecemeal from the environment by every package.
type Config struct {
	Host string
	Port int

	LogLevel string

	MaxHeaderSizeKB int

	InitializationJSONPath  string
	WatchInitializationJSON bool

	PersistExpectations       bool
	PersistedExpectationsPath string

	PersistenceDriver PersistenceDriver
	RedisAddr         string
	RedisPassword     string
	DynamoDBTable      string
	DynamoDBRegion     string
}

// Load reads configuration from environment variables, applying the
// defaults from spec.md §6.
func Load() (*Config, error) {
	cfg := &Config{
		Host:                      getEnv("HOST", "0.0.0.0"),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		InitializationJSONPath:    os.Getenv("INITIALIZATION_JSON_PATH"),
		PersistedExpectationsPath: getEnv("PERSISTED_EXPECTATIONS_PATH", "./data/expectations.json"),
		PersistenceDriver:         PersistenceDriver(getEnv("PERSISTENCE_DRIVER", string(DriverFile))),
		RedisAddr:                 os.Getenv("REDIS_ADDR"),
		RedisPassword:             os.Getenv("REDIS_PASSWORD"),
		DynamoDBTable:             getEnv("DYNAMODB_TABLE", "mockserver-expectations"),
		DynamoDBRegion:            getEnv("AWS_REGION", "us-east-1"),
	}

	port, err := getEnvInt("PORT", 1080)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	maxHeader, err := getEnvInt("MAX_HEADER_SIZE_KB", 8192)
	if err != nil {
		return nil, err
	}
	cfg.MaxHeaderSizeKB = maxHeader

	cfg.WatchInitializationJSON, err = getEnvBool("WATCH_INITIALIZATION_JSON", false)
	if err != nil {
		return nil, err
	}

	cfg.PersistExpectations, err = getEnvBool("PERSIST_EXPECTATIONS", true)
	if err != nil {
		return nil, err
	}

	validDrivers := []string{string(DriverFile), string(DriverRedis), string(DriverDynamoDB)}
	if !utils.StringSliceContainsElement(&validDrivers, string(cfg.PersistenceDriver)) {
		return nil, fmt.Errorf("unsupported PERSISTENCE_DRIVER %q", cfg.PersistenceDriver)
	}

	return cfg, nil
}

// Addr returns the listener address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MaxBodySizeBytes converts MaxHeaderSizeKB (a body size cap, despite its
// name inherited from the source ecosystem's env var) into the byte limit
// httpserver enforces on a request body. Zero or negative disables the cap.
func (c *Config) MaxBodySizeBytes() int64 {
	if c.MaxHeaderSizeKB <= 0 {
		return 0
	}
	return int64(c.MaxHeaderSizeKB) * 1024
}

func getEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func getEnvInt(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}

func getEnvBool(name string, def bool) (bool, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", name, err)
	}
	return b, nil
}
