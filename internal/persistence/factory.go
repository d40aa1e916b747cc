package persistence

import (
	"fmt"

	"github.com/opsmock/mockserver-go/internal/config"
)

// NewBackend constructs the configured persistence backend.
func NewBackend(cfg *config.Config) (Backend, error) {
	switch cfg.PersistenceDriver {
	case config.DriverFile:
		return NewFileBackend(cfg.PersistedExpectationsPath), nil
	case config.DriverRedis:
		return NewRedisBackend(cfg.RedisAddr, cfg.RedisPassword), nil
	case config.DriverDynamoDB:
		return NewDynamoDBBackend(cfg.DynamoDBTable, cfg.DynamoDBRegion), nil
	default:
		return nil, fmt.Errorf("unsupported persistence driver %q", cfg.PersistenceDriver)
	}
}
