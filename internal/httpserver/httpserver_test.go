package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opsmock/mockserver-go/internal/rest"
	"github.com/opsmock/mockserver-go/internal/store"
	"github.com/opsmock/mockserver-go/pkg/logger"
)

func newTestHandler() (*Handler, *store.Store) {
	s := store.New(nil, false, logger.Nop())
	controlAPI := rest.NewRouter(s, logger.Nop(), 1080)
	return New(s, controlAPI, logger.Nop(), 0), s
}

// Scenario 1 (spec.md §8): exact JSON matcher returns the canned reply.
func TestScenarioExactJSONMatchReturnsCannedResponse(t *testing.T) {
	h, _ := newTestHandler()

	putReq := httptest.NewRequest(http.MethodPut, "/mockserver/expectation", strings.NewReader(`{
		"httpRequest": {"method": "POST", "path": "/accounts", "body": {"type": "json", "value": {"name": "acme"}, "matchType": "EXACT"}},
		"httpResponse": {"statusCode": 201, "body": {"status": "created"}}
	}`))
	putRec := httptest.NewRecorder()
	h.ServeHTTP(putRec, putReq)
	if putRec.Code != http.StatusCreated {
		t.Fatalf("setup: status = %d, body=%s", putRec.Code, putRec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{"name":"acme"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != 201 {
		t.Fatalf("status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != `{"status":"created"}` {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestNoMatchingExpectationReturns404(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestOversizedBodyIsRejectedWith413(t *testing.T) {
	s := store.New(nil, false, logger.Nop())
	controlAPI := rest.NewRouter(s, logger.Nop(), 1080)
	h := New(s, controlAPI, logger.Nop(), 8)

	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader("this body is far longer than eight bytes"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestZeroMaxBodySizeDisablesCap(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/nope", strings.NewReader(strings.Repeat("x", 1<<20)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (cap disabled, request should reach the matcher)", rec.Code)
	}
}

func TestControlPlanePrefixNeverFallsThroughToMatcher(t *testing.T) {
	h, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPut, "/mockserver/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 from control plane, not matcher fallthrough", rec.Code)
	}
}
