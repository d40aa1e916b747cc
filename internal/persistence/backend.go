// Package persistence implements the durable, pluggable backends that store
// the expectation set, plus the initialization-file loader and watcher that
// seed the in-memory store regardless of which backend is active.
package persistence

import "github.com/opsmock/mockserver-go/internal/model"

// Backend loads and saves the whole expectation set atomically. A backend
// need not support partial writes; the store always snapshots the full set
// before calling Save.
type Backend interface {
	Load() ([]*model.Expectation, error)
	Save(expectations []*model.Expectation) error
}
