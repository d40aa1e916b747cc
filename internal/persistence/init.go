package persistence

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/opsmock/mockserver-go/internal/model"
	"github.com/opsmock/mockserver-go/pkg/logger"
)

// LoadInitializationFile reads the operator-supplied seed file at path,
// validates each document, and returns only the valid ones — invalid
// documents are logged and skipped, never fatal. An empty path yields no
// expectations.
func LoadInitializationFile(path string, log logger.Logger) []*model.Expectation {
	if path == "" {
		return nil
	}

	raw, err := readExpectationFile(path)
	if err != nil {
		log.Warnf("initialization file %s: %v", path, err)
		return nil
	}

	var valid []*model.Expectation
	for i, e := range raw {
		if err := e.Validate(); err != nil {
			log.Warnf("initialization file %s: skipping entry %d: %v", path, i, err)
			continue
		}
		valid = append(valid, e)
	}
	return valid
}

func readExpectationFile(path string) ([]*model.Expectation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var raw []*model.Expectation
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return raw, nil
}
