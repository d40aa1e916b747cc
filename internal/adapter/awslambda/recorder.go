package awslambda

import (
	"bytes"
	"net/http"
)

// responseRecorder captures what the engine's handler writes so it can be
// translated into a Lambda proxy response after the fact.
type responseRecorder struct {
	StatusCode int
	Headers    http.Header
	Body       bytes.Buffer
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{StatusCode: http.StatusOK, Headers: make(http.Header)}
}

func (r *responseRecorder) Header() http.Header { return r.Headers }

func (r *responseRecorder) Write(b []byte) (int, error) { return r.Body.Write(b) }

func (r *responseRecorder) WriteHeader(status int) { r.StatusCode = status }
