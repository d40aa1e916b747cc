// Package store owns the authoritative id→expectation map and its index,
// and drives persistence. A coarse-grained RWMutex covers the map and the
// index together so they never drift out of lockstep; a second, dedicated
// mutex serialises persistence so a save is never held across a request
// handler's lifetime.
package store

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/opsmock/mockserver-go/internal/index"
	"github.com/opsmock/mockserver-go/internal/matcher"
	"github.com/opsmock/mockserver-go/internal/model"
	"github.com/opsmock/mockserver-go/internal/persistence"
	"github.com/opsmock/mockserver-go/pkg/logger"
)

// Store is the in-memory, process-private owner of the expectation set.
// Instantiated once by the process; tests instantiate their own.
type Store struct {
	mu    sync.RWMutex
	items map[string]*model.Expectation
	idx   *index.Index

	persistMu      sync.Mutex
	backend        persistence.Backend
	persistEnabled bool

	log logger.Logger
}

// New builds an empty Store. backend may be nil if persistEnabled is false.
func New(backend persistence.Backend, persistEnabled bool, log logger.Logger) *Store {
	return &Store{
		items:          make(map[string]*model.Expectation),
		idx:            index.New(),
		backend:        backend,
		persistEnabled: persistEnabled,
		log:            log,
	}
}

// Initialize loads the persisted expectation set, deduplicating ids (a
// fresh id is assigned to every occurrence after the first, logged as a
// warning), and rebuilds the index. A load failure starts the store empty,
// logged, never fatal.
func (s *Store) Initialize() {
	if !s.persistEnabled || s.backend == nil {
		return
	}
	loaded, err := s.backend.Load()
	if err != nil {
		s.log.Warnf("persistence load failed, starting with an empty store: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(loaded))
	for _, e := range loaded {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if _, dup := seen[e.ID]; dup {
			old := e.ID
			e.ID = uuid.NewString()
			s.log.Warnf("duplicate id %q in persisted expectations, reassigned %q", old, e.ID)
		}
		seen[e.ID] = struct{}{}
		s.items[e.ID] = e
		s.idx.Add(e.ID, e)
	}
}

// Add assigns an id if absent, or a fresh one on collision, validates,
// inserts, indexes and persists.
func (s *Store) Add(e *model.Expectation) (*model.Expectation, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	} else if _, exists := s.items[e.ID]; exists {
		e.ID = uuid.NewString()
	}
	s.items[e.ID] = e
	s.idx.Add(e.ID, e)
	s.mu.Unlock()

	s.persist()
	return e, nil
}

// Upsert replaces e in place if e.ID already exists (de-indexing the old
// value and indexing the new one), or inserts it otherwise.
func (s *Store) Upsert(e *model.Expectation) (*model.Expectation, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	s.mu.Lock()
	if old, exists := s.items[e.ID]; exists {
		s.idx.Remove(e.ID, old)
	}
	s.items[e.ID] = e
	s.idx.Add(e.ID, e)
	s.mu.Unlock()

	s.persist()
	return e, nil
}

// ReplaceAll validates every expectation in replacement and, only if all of
// them pass, atomically swaps them in for the current set (building the new
// map and index off to the side first). If any entry fails validation, the
// current set is left untouched and the first validation error is returned
// — the reload this backs (the initialization-file watcher) must leave the
// last-known-good set intact on any failure, never a partial mix of old and
// new.
func (s *Store) ReplaceAll(replacement []*model.Expectation) error {
	items := make(map[string]*model.Expectation, len(replacement))
	idx := index.New()
	seen := make(map[string]struct{}, len(replacement))

	for _, e := range replacement {
		if err := e.Validate(); err != nil {
			return err
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if _, dup := seen[e.ID]; dup {
			e.ID = uuid.NewString()
		}
		seen[e.ID] = struct{}{}
		items[e.ID] = e
		idx.Add(e.ID, e)
	}

	s.mu.Lock()
	s.items = items
	s.idx = idx
	s.mu.Unlock()

	s.persist()
	return nil
}

// Get returns the expectation with id, if any.
func (s *Store) Get(id string) (*model.Expectation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	return e, ok
}

// List returns a snapshot of every expectation currently in the store.
func (s *Store) List() []*model.Expectation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Expectation, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	return out
}

// Delete removes id. It reports false, without error, if id is unknown.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	e, ok := s.items[id]
	if ok {
		s.idx.Remove(id, e)
		delete(s.items, id)
	}
	s.mu.Unlock()

	if ok {
		s.persist()
	}
	return ok
}

// ClearFilter selects which expectations Clear removes. A zero value clears
// everything.
type ClearFilter struct {
	ID     string
	Method string
	Path   string
}

// Clear removes expectations matching filter (nil or zero-value clears
// everything), persisting once regardless of how many were removed.
func (s *Store) Clear(filter *ClearFilter) int {
	var removed int

	s.mu.Lock()
	switch {
	case filter != nil && filter.ID != "":
		if e, ok := s.items[filter.ID]; ok {
			s.idx.Remove(filter.ID, e)
			delete(s.items, filter.ID)
			removed = 1
		}
	case filter != nil && (filter.Method != "" || filter.Path != ""):
		for id, e := range s.items {
			if requestDefinitionMatches(e, filter) {
				s.idx.Remove(id, e)
				delete(s.items, id)
				removed++
			}
		}
	default:
		removed = len(s.items)
		s.items = make(map[string]*model.Expectation)
		s.idx.Clear()
	}
	s.mu.Unlock()

	s.persist()
	return removed
}

func requestDefinitionMatches(e *model.Expectation, filter *ClearFilter) bool {
	m := e.RequestMatcher
	if m == nil {
		return false
	}
	if filter.Method != "" {
		if m.Method == nil || m.Method.Value != filter.Method {
			return false
		}
	}
	if filter.Path != "" {
		if m.Path == nil || m.Path.Value != filter.Path {
			return false
		}
	}
	return true
}

// Find runs the index then the full matcher over a live request, returning
// the selected expectation, if any, per the priority/tie-break rules in
// Select.
func (s *Store) Find(r *model.Request) (*model.Expectation, bool) {
	s.mu.RLock()
	candidateIDs := s.idx.Candidates(r)
	candidates := make([]*model.Expectation, 0, len(candidateIDs))
	for id := range candidateIDs {
		if e, ok := s.items[id]; ok {
			candidates = append(candidates, e)
		}
	}
	s.mu.RUnlock()

	var matched []*model.Expectation
	for _, e := range candidates {
		if matcher.Matches(e.RequestMatcher, r) {
			matched = append(matched, e)
		}
	}
	return Select(matched)
}

// Select applies the response-over-forward partitioning and
// priority-desc/id-desc tie-break described for the executor.
func Select(matched []*model.Expectation) (*model.Expectation, bool) {
	if len(matched) == 0 {
		return nil, false
	}

	var responses, forwards []*model.Expectation
	for _, e := range matched {
		if e.CannedResponse != nil {
			responses = append(responses, e)
		} else {
			forwards = append(forwards, e)
		}
	}

	pool := responses
	if len(pool) == 0 {
		pool = forwards
	}

	best := pool[0]
	for _, e := range pool[1:] {
		if e.Priority > best.Priority {
			best = e
		} else if e.Priority == best.Priority && strings.Compare(e.ID, best.ID) > 0 {
			best = e
		}
	}
	return best, true
}

// persist snapshots the current state under the read lock and writes it to
// the backend outside any store lock, serialised by persistMu so a slow
// save never blocks a concurrent handler.
func (s *Store) persist() {
	if !s.persistEnabled || s.backend == nil {
		return
	}
	snapshot := s.List()

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.backend.Save(snapshot); err != nil {
		s.log.Errorf("persistence save failed: %v", err)
	}
}
