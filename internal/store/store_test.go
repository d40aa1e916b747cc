package store

import (
	"path/filepath"
	"testing"

	"github.com/opsmock/mockserver-go/internal/model"
	"github.com/opsmock/mockserver-go/internal/persistence"
	"github.com/opsmock/mockserver-go/pkg/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	backend := persistence.NewFileBackend(filepath.Join(t.TempDir(), "expectations.json"))
	return New(backend, true, logger.Nop())
}

func expectation(id, method, path string, priority int) *model.Expectation {
	return &model.Expectation{
		ID:       id,
		Priority: priority,
		RequestMatcher: &model.RequestMatcher{
			Method: &model.FieldMatcher{Value: method},
			Path:   &model.FieldMatcher{Value: path},
		},
		CannedResponse: &model.CannedResponse{StatusCode: 200},
	}
}

func TestAddAssignsID(t *testing.T) {
	s := newTestStore(t)
	e := expectation("", "GET", "/x", 0)
	added, err := s.Add(e)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.ID == "" {
		t.Error("expected an id to be assigned")
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add(&model.Expectation{RequestMatcher: &model.RequestMatcher{}})
	if err == nil {
		t.Error("expected validation error for expectation with no action")
	}
}

func TestUpsertIdempotent(t *testing.T) {
	s := newTestStore(t)
	e := expectation("a", "GET", "/x", 0)
	if _, err := s.Upsert(e); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := s.Upsert(e); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if len(s.List()) != 1 {
		t.Errorf("got %d items, want 1", len(s.List()))
	}
}

func TestDeleteUnknownReturnsFalse(t *testing.T) {
	s := newTestStore(t)
	if s.Delete("missing") {
		t.Error("expected false for unknown id")
	}
}

func TestClearAllEmptiesListAndIndex(t *testing.T) {
	s := newTestStore(t)
	s.Add(expectation("", "GET", "/a", 0))
	s.Add(expectation("", "POST", "/b", 0))
	s.Clear(nil)
	if len(s.List()) != 0 {
		t.Error("expected empty list after Clear")
	}
	_, found := s.Find(&model.Request{Method: "GET", Path: "/a"})
	if found {
		t.Error("expected no match after Clear")
	}
}

func TestClearByRequestDefinition(t *testing.T) {
	s := newTestStore(t)
	s.Add(expectation("", "GET", "/a", 0))
	s.Add(expectation("", "GET", "/b", 0))
	removed := s.Clear(&ClearFilter{Method: "GET", Path: "/a"})
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(s.List()) != 1 {
		t.Errorf("got %d items, want 1", len(s.List()))
	}
}

func TestFindPriorityWinner(t *testing.T) {
	s := newTestStore(t)
	s.Add(expectation("aaa", "GET", "/x", 1))
	s.Add(expectation("zzz", "GET", "/x", 10))

	got, ok := s.Find(&model.Request{Method: "GET", Path: "/x"})
	if !ok {
		t.Fatal("expected a match")
	}
	if got.ID != "zzz" {
		t.Errorf("got id %q, want zzz (higher priority)", got.ID)
	}
}

func TestFindTieBreakByIDDescending(t *testing.T) {
	s := newTestStore(t)
	s.Add(expectation("aaa", "GET", "/x", 5))
	s.Add(expectation("zzz", "GET", "/x", 5))

	got, ok := s.Find(&model.Request{Method: "GET", Path: "/x"})
	if !ok {
		t.Fatal("expected a match")
	}
	if got.ID != "zzz" {
		t.Errorf("got id %q, want zzz (lexicographically greater)", got.ID)
	}
}

func TestFindPrefersResponseOverForward(t *testing.T) {
	s := newTestStore(t)
	s.Add(&model.Expectation{
		ID:             "fwd",
		Priority:       100,
		RequestMatcher: &model.RequestMatcher{Path: &model.FieldMatcher{Value: "/x"}},
		Forward:        &model.Forward{Host: "example.com"},
	})
	s.Add(&model.Expectation{
		ID:             "resp",
		Priority:       0,
		RequestMatcher: &model.RequestMatcher{Path: &model.FieldMatcher{Value: "/x"}},
		CannedResponse: &model.CannedResponse{StatusCode: 200},
	})

	got, ok := s.Find(&model.Request{Method: "GET", Path: "/x"})
	if !ok {
		t.Fatal("expected a match")
	}
	if got.ID != "resp" {
		t.Errorf("got id %q, want resp (response candidates preferred over forward)", got.ID)
	}
}

func TestFindNoMatch(t *testing.T) {
	s := newTestStore(t)
	s.Add(expectation("a", "GET", "/x", 0))
	_, ok := s.Find(&model.Request{Method: "GET", Path: "/y"})
	if ok {
		t.Error("expected no match")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "expectations.json")

	s1 := New(persistence.NewFileBackend(path), true, logger.Nop())
	s1.Add(expectation("a", "GET", "/x", 0))
	s1.Add(expectation("b", "POST", "/y", 0))

	s2 := New(persistence.NewFileBackend(path), true, logger.Nop())
	s2.Initialize()

	if len(s2.List()) != 2 {
		t.Fatalf("got %d items after reload, want 2", len(s2.List()))
	}
	if _, ok := s2.Get("a"); !ok {
		t.Error("expected id a to survive restart")
	}
	if _, ok := s2.Get("b"); !ok {
		t.Error("expected id b to survive restart")
	}
}

func TestInitializeDedupesDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "expectations.json")
	backend := persistence.NewFileBackend(path)
	dup := []*model.Expectation{
		expectation("same", "GET", "/a", 0),
		expectation("same", "GET", "/b", 0),
	}
	if err := backend.Save(dup); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	s := New(backend, true, logger.Nop())
	s.Initialize()

	if len(s.List()) != 2 {
		t.Fatalf("got %d items, want 2 (second duplicate should get a fresh id)", len(s.List()))
	}
}

func TestReplaceAllSwapsInNewSet(t *testing.T) {
	s := newTestStore(t)
	s.Add(expectation("old", "GET", "/old", 0))

	replacement := []*model.Expectation{
		expectation("new1", "GET", "/new1", 0),
		expectation("new2", "GET", "/new2", 0),
	}
	if err := s.ReplaceAll(replacement); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	if len(s.List()) != 2 {
		t.Fatalf("got %d items, want 2", len(s.List()))
	}
	if _, ok := s.Get("old"); ok {
		t.Error("expected prior set to be fully replaced")
	}
	if _, ok := s.Get("new1"); !ok {
		t.Error("expected new1 to be present")
	}
}

func TestReplaceAllLeavesPriorSetIntactOnFailure(t *testing.T) {
	s := newTestStore(t)
	s.Add(expectation("keep", "GET", "/keep", 0))

	broken := expectation("broken", "GET", "/broken", 0)
	broken.CannedResponse = nil // neither CannedResponse nor Forward set: fails Validate

	replacement := []*model.Expectation{
		expectation("new1", "GET", "/new1", 0),
		broken,
	}
	if err := s.ReplaceAll(replacement); err == nil {
		t.Fatal("expected ReplaceAll to reject a replacement set containing an invalid entry")
	}

	if len(s.List()) != 1 {
		t.Fatalf("got %d items, want 1 (prior set must survive untouched)", len(s.List()))
	}
	if _, ok := s.Get("keep"); !ok {
		t.Error("expected prior entry to still be present")
	}
	if _, ok := s.Get("new1"); ok {
		t.Error("expected no entry from the failed replacement to have been admitted")
	}
}
