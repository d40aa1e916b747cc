package index

import (
	"testing"

	"github.com/opsmock/mockserver-go/internal/model"
)

func mustMethod(v string) *model.FieldMatcher { return &model.FieldMatcher{Value: v} }
func mustPath(v string) *model.FieldMatcher   { return &model.FieldMatcher{Value: v} }

func TestCandidatesIncludesLiteralMethodAndPath(t *testing.T) {
	idx := New()
	e := &model.Expectation{RequestMatcher: &model.RequestMatcher{
		Method: mustMethod("GET"),
		Path:   mustPath("/api/users"),
	}}
	idx.Add("e1", e)

	got := idx.Candidates(&model.Request{Method: "GET", Path: "/api/users"})
	if _, ok := got["e1"]; !ok {
		t.Error("expected e1 in candidates")
	}
}

func TestCandidatesNeverDropsWildcardPath(t *testing.T) {
	idx := New()
	e := &model.Expectation{RequestMatcher: &model.RequestMatcher{Path: mustPath("/api/*")}}
	idx.Add("e1", e)

	got := idx.Candidates(&model.Request{Method: "POST", Path: "/completely/different"})
	if _, ok := got["e1"]; !ok {
		t.Error("wildcard-path expectations must survive candidate selection regardless of method/path")
	}
}

func TestCandidatesNeverDropsForward(t *testing.T) {
	idx := New()
	e := &model.Expectation{
		RequestMatcher: &model.RequestMatcher{Path: mustPath("/literal")},
		Forward:        &model.Forward{Host: "example.com"},
	}
	idx.Add("e1", e)

	got := idx.Candidates(&model.Request{Method: "GET", Path: "/unrelated"})
	if _, ok := got["e1"]; !ok {
		t.Error("forward expectations must be eligible for every path")
	}
}

func TestRemoveIsSymmetric(t *testing.T) {
	idx := New()
	e := &model.Expectation{RequestMatcher: &model.RequestMatcher{
		Method: mustMethod("GET"),
		Path:   mustPath("/api/users"),
	}}
	idx.Add("e1", e)
	idx.Remove("e1", e)

	got := idx.Candidates(&model.Request{Method: "GET", Path: "/api/users"})
	if _, ok := got["e1"]; ok {
		t.Error("expected e1 removed from every bucket")
	}
	if len(idx.byMethod) != 0 || len(idx.byPathPrefix) != 0 || len(idx.wildcards) != 0 {
		t.Error("expected all buckets empty after remove")
	}
}

func TestClearEmptiesAllBuckets(t *testing.T) {
	idx := New()
	idx.Add("e1", &model.Expectation{RequestMatcher: &model.RequestMatcher{Path: mustPath("/x")}})
	idx.Clear()
	got := idx.Candidates(&model.Request{Method: "GET", Path: "/x"})
	if len(got) != 0 {
		t.Error("expected no candidates after Clear")
	}
}

func TestCandidatesUnconstrainedMatcherIsWildcard(t *testing.T) {
	idx := New()
	e := &model.Expectation{RequestMatcher: &model.RequestMatcher{}}
	idx.Add("e1", e)
	got := idx.Candidates(&model.Request{Method: "DELETE", Path: "/anything"})
	if _, ok := got["e1"]; !ok {
		t.Error("expectation with no method/path constraint must always be a candidate")
	}
}
