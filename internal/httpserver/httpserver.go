// Package httpserver is the single top-level HTTP entry point: it builds
// the internal request record once per inbound request, routes the
// /mockserver control-plane prefix to internal/rest, and otherwise falls
// through to the store and executor. There is no response-method
// shadowing: every request passes through exactly one handler function.
package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/opsmock/mockserver-go/internal/executor"
	"github.com/opsmock/mockserver-go/internal/model"
	"github.com/opsmock/mockserver-go/internal/store"
	"github.com/opsmock/mockserver-go/pkg/logger"
)

// Handler is the process's one HTTP entry point.
type Handler struct {
	store       *store.Store
	controlAPI  http.Handler
	log         logger.Logger
	maxBodySize int64
}

// New builds the top-level handler. controlAPI is the router returned by
// rest.NewRouter, already rooted at /mockserver. maxBodySize caps the
// non-control-plane request body in bytes; zero or negative disables the
// cap.
func New(s *store.Store, controlAPI http.Handler, log logger.Logger, maxBodySize int64) *Handler {
	return &Handler{store: s, controlAPI: controlAPI, log: log, maxBodySize: maxBodySize}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/mockserver") {
		h.controlAPI.ServeHTTP(w, r)
		return
	}

	req, err := buildRequest(w, r, h.maxBodySize)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.log.Warnf("request body exceeds the configured limit of %d bytes", h.maxBodySize)
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.log.Errorf("reading request body: %v", err)
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	e, ok := h.store.Find(req)
	if !ok {
		h.log.Infof("no matching expectation - method:%s path:%s", req.Method, req.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("Expectation not found"))
		return
	}

	rs := executor.Execute(r.Context(), e, req, h.log)
	rs.WriteTo(w)
}

// buildRequest reads r's body once and normalises it into the internal
// record the index, matcher and executor all share. maxBodySize, if
// positive, bounds how much of the body is read before the read fails with
// *http.MaxBytesError.
func buildRequest(w http.ResponseWriter, r *http.Request, maxBodySize int64) (*model.Request, error) {
	bodyReader := r.Body
	if maxBodySize > 0 {
		bodyReader = http.MaxBytesReader(w, r.Body, maxBodySize)
	}
	body, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, err
	}

	req := &model.Request{
		Method:   r.Method,
		Path:     r.URL.Path,
		Query:    r.URL.Query(),
		RawQuery: r.URL.RawQuery,
		Headers:  map[string][]string(r.Header),
		Body:     body,
	}

	var parsed interface{}
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		req.Parsed = parsed
	}
	return req, nil
}
