package rest

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/opsmock/mockserver-go/internal/model"
)

// putExpectation accepts a single expectation document or a JSON array of
// them, validates and upserts each, and returns 201 with the admitted
// documents (ids included).
func (h *Handler) putExpectation(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "incorrect request format", err.Error())
		return
	}

	expectations, err := parseExpectations(body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "incorrect request format", err.Error())
		return
	}

	admitted := make([]*model.Expectation, 0, len(expectations))
	for _, e := range expectations {
		saved, err := h.store.Upsert(e)
		if err != nil {
			writeJSONError(w, http.StatusNotAcceptable, "invalid expectation", err.Error())
			return
		}
		admitted = append(admitted, saved)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(admitted)
}

// parseExpectations accepts either a single expectation object or a JSON
// array of them.
func parseExpectations(body []byte) ([]*model.Expectation, error) {
	var list []*model.Expectation
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var single model.Expectation
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, err
	}
	return []*model.Expectation{&single}, nil
}

func (h *Handler) listExpectations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.store.List())
}

func (h *Handler) getExpectation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, ok := h.store.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(e)
}

func (h *Handler) deleteExpectation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.store.Delete(id) {
		writeJSONError(w, http.StatusBadRequest, "incorrect request format", "unknown expectation id")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearAll(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(nil)
	w.WriteHeader(http.StatusNoContent)
}
