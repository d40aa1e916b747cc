// Package index maintains the inverted indices that keep expectation
// matching sub-linear. It is a must-not-drop-matches filter: candidate
// selection may return false positives, never false negatives, so the full
// matcher in internal/matcher always runs over its output before a request
// is answered.
//
// Index has no lock of its own — internal/store guards it with the same
// mutex that protects the id→expectation map, so the two never drift out of
// lockstep.
package index

import (
	"strings"

	"github.com/opsmock/mockserver-go/internal/model"
)

// Index holds the three inverted structures described by the expectation
// engine: a literal-method bucket, a literal-path-prefix bucket, and a
// catch-all for everything a path-prefix lookup could wrongly exclude.
type Index struct {
	byMethod     map[string]map[string]struct{}
	byPathPrefix map[string]map[string]struct{}
	wildcards    map[string]struct{}
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		byMethod:     make(map[string]map[string]struct{}),
		byPathPrefix: make(map[string]map[string]struct{}),
		wildcards:    make(map[string]struct{}),
	}
}

// Add inserts id into every bucket e's shape admits it to.
func (idx *Index) Add(id string, e *model.Expectation) {
	m := e.RequestMatcher
	if m == nil {
		idx.wildcards[id] = struct{}{}
		return
	}

	if method, ok := literalMethod(m); ok {
		addTo(idx.byMethod, method, id)
	}

	switch {
	case e.Forward != nil:
		idx.wildcards[id] = struct{}{}
	case m.Path == nil:
		idx.wildcards[id] = struct{}{}
	case m.Path.Not:
		idx.wildcards[id] = struct{}{}
	default:
		if prefix, ok := literalPathPrefix(m.Path.Value); ok {
			addTo(idx.byPathPrefix, prefix, id)
		} else {
			idx.wildcards[id] = struct{}{}
		}
	}
}

// Remove undoes exactly what Add did for this id/expectation pair.
func (idx *Index) Remove(id string, e *model.Expectation) {
	m := e.RequestMatcher
	if m == nil {
		delete(idx.wildcards, id)
		return
	}

	if method, ok := literalMethod(m); ok {
		removeFrom(idx.byMethod, method, id)
	}

	switch {
	case e.Forward != nil:
		delete(idx.wildcards, id)
	case m.Path == nil:
		delete(idx.wildcards, id)
	case m.Path.Not:
		delete(idx.wildcards, id)
	default:
		if prefix, ok := literalPathPrefix(m.Path.Value); ok {
			removeFrom(idx.byPathPrefix, prefix, id)
		} else {
			delete(idx.wildcards, id)
		}
	}
}

// Clear empties every bucket.
func (idx *Index) Clear() {
	idx.byMethod = make(map[string]map[string]struct{})
	idx.byPathPrefix = make(map[string]map[string]struct{})
	idx.wildcards = make(map[string]struct{})
}

// Candidates returns the superset of ids that might match r: the union of
// the method bucket, the path-prefix bucket, and the wildcard catch-all.
func (idx *Index) Candidates(r *model.Request) map[string]struct{} {
	out := make(map[string]struct{})
	for id := range idx.byMethod[r.Method] {
		out[id] = struct{}{}
	}
	for id := range idx.wildcards {
		out[id] = struct{}{}
	}
	for id := range idx.byPathPrefix[firstSegment(r.Path)] {
		out[id] = struct{}{}
	}
	return out
}

// literalMethod reports the method an expectation fixes, if any: a method
// matcher that is present and not inverted.
func literalMethod(m *model.RequestMatcher) (string, bool) {
	if m.Method == nil || m.Method.Not {
		return "", false
	}
	return m.Method.Value, true
}

// literalPathPrefix reports the first path segment of value, if value is a
// plain literal path (no glob, no /regex/ delimiters).
func literalPathPrefix(value string) (string, bool) {
	if len(value) >= 2 && strings.HasPrefix(value, "/") && strings.HasSuffix(value, "/") {
		return "", false
	}
	if strings.Contains(value, "*") {
		return "", false
	}
	return firstSegment(value), true
}

func firstSegment(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

func addTo(buckets map[string]map[string]struct{}, key, id string) {
	set, ok := buckets[key]
	if !ok {
		set = make(map[string]struct{})
		buckets[key] = set
	}
	set[id] = struct{}{}
}

func removeFrom(buckets map[string]map[string]struct{}, key, id string) {
	set, ok := buckets[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(buckets, key)
	}
}
