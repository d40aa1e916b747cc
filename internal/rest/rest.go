// Package rest is the sideband control plane: handlers for declaring,
// listing, retrieving and clearing expectations, dispatched with
// go-chi/chi rather than hand-rolled path-segment splitting.
package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opsmock/mockserver-go/internal/store"
	"github.com/opsmock/mockserver-go/pkg/logger"
)

// Handler holds the dependencies the control plane needs: the store it
// mutates and reads, the port it reports in /mockserver/status, and a
// logger passed in rather than reached for as a package global.
type Handler struct {
	store *store.Store
	log   logger.Logger
	port  int
}

// NewRouter builds the control-plane router rooted at /mockserver.
func NewRouter(s *store.Store, log logger.Logger, port int) http.Handler {
	h := &Handler{store: s, log: log, port: port}

	r := chi.NewRouter()
	r.Route("/mockserver", func(r chi.Router) {
		r.Put("/expectation", h.putExpectation)
		r.Get("/expectation", h.listExpectations)
		r.Get("/expectation/active", h.listExpectations)
		r.Get("/expectation/{id}", h.getExpectation)
		r.Delete("/expectation/{id}", h.deleteExpectation)
		r.Delete("/expectation", h.clearAll)
		r.Put("/clear", h.clear)
		r.Put("/reset", h.reset)
		r.Put("/status", h.status)
	})
	return r
}

func writeJSONError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": kind, "message": message})
}
