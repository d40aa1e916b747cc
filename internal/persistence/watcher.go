package persistence

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"os"
	"sync/atomic"
	"time"

	"github.com/opsmock/mockserver-go/internal/model"
	"github.com/opsmock/mockserver-go/pkg/logger"
)

// pollInterval is the content-hash poll period. The spec notes ~1s is
// sufficient; this is not configurable.
const pollInterval = time.Second

// Watcher polls an initialization file's content hash and triggers a
// reload callback on change, replacing the source ecosystem's event+timer
// file watching. It never fires for changes it caused itself: the in-flight
// flag is set for the duration of a reload so a slow reload callback can't
// re-trigger itself.
type Watcher struct {
	Path     string
	Log      logger.Logger
	inFlight atomic.Bool
	lastHash [32]byte
}

// NewWatcher returns a Watcher for path.
func NewWatcher(path string, log logger.Logger) *Watcher {
	return &Watcher{Path: path, Log: log}
}

// Run polls until ctx is cancelled. onChange receives the freshly validated
// expectation set and returns an error if it rejects the reload (a file that
// fails to parse never reaches onChange); on error, the watcher logs and
// keeps watching — it does not
// retry immediately, nor does it clear any existing in-memory state itself,
// which is the rollback: the caller's prior state, untouched, remains live.
func (w *Watcher) Run(ctx context.Context, onChange func([]*model.Expectation) error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(onChange)
		}
	}
}

func (w *Watcher) poll(onChange func([]*model.Expectation) error) {
	if w.inFlight.Load() {
		return
	}

	data, err := readFile(w.Path)
	if err != nil {
		return
	}
	hash := sha256.Sum256(data)
	if hash == w.lastHash {
		return
	}

	w.inFlight.Store(true)
	defer w.inFlight.Store(false)

	expectations, err := parseValidExpectations(data)
	if err != nil {
		w.Log.Warnf("initialization file %s: reload failed, keeping previous set: %v", w.Path, err)
		return
	}
	if err := onChange(expectations); err != nil {
		w.Log.Warnf("initialization file %s: reload rejected, keeping previous set: %v", w.Path, err)
		return
	}
	w.lastHash = hash
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// parseValidExpectations parses data as a JSON array of expectations and
// returns only the entries that pass Validate, mirroring LoadInitializationFile.
func parseValidExpectations(data []byte) ([]*model.Expectation, error) {
	var raw []*model.Expectation
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var valid []*model.Expectation
	for _, e := range raw {
		if e.Validate() == nil {
			valid = append(valid, e)
		}
	}
	return valid, nil
}
