// Package executor realises the action of a matched expectation: a canned
// reply played back verbatim, or a forward to an upstream origin. Request
// handling is a single top-level pass — the executor writes the response
// exactly once, there is no middleware-style wrapping of the writer.
package executor

import (
	"net/http"
)

// ResponseState accumulates the outcome of executing an expectation before
// it is written to the client in one pass.
type ResponseState struct {
	StatusCode int
	Headers    map[string][]string
	Body       []byte
}

// NewResponseState returns a ResponseState defaulted to 200 with no headers.
func NewResponseState() *ResponseState {
	return &ResponseState{
		StatusCode: http.StatusOK,
		Headers:    make(map[string][]string),
	}
}

// WriteTo writes the accumulated state to w exactly once.
func (rs *ResponseState) WriteTo(w http.ResponseWriter) {
	for key, values := range rs.Headers {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(rs.StatusCode)
	if rs.Body != nil {
		w.Write(rs.Body)
	}
}
