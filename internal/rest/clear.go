package rest

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/opsmock/mockserver-go/internal/store"
)

// clearRequest mirrors the three accepted PUT /mockserver/clear bodies: an
// expectation id, a request-definition (method/path), or an empty body
// clearing everything.
type clearRequest struct {
	ID          string `json:"id"`
	HTTPRequest *struct {
		Method string `json:"method"`
		Path   string `json:"path"`
	} `json:"httpRequest"`
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "incorrect request format", err.Error())
		return
	}

	filter := &store.ClearFilter{}
	if len(body) > 0 {
		var req clearRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "incorrect request format", err.Error())
			return
		}
		filter.ID = req.ID
		if req.HTTPRequest != nil {
			filter.Method = req.HTTPRequest.Method
			filter.Path = req.HTTPRequest.Path
		}
	}

	h.store.Clear(filter)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"ports": []int{h.port}})
}
