package model

import (
	"net/url"
	"strings"
)

// Request is the internal record the framing layer builds once per inbound
// HTTP request and hands to the index, matcher and executor.
type Request struct {
	Method   string
	Path     string // without query
	Query    url.Values
	RawQuery string // original query string as sent, for faithful forwarding
	Headers  map[string][]string // case-insensitive keys, already canonicalised
	Body     []byte               // raw bytes, required for faithful forwarding
	Parsed   interface{}          // best-effort JSON parse of Body, nil if not JSON
}

// EffectiveRawQuery returns RawQuery if the framing layer captured it,
// otherwise rebuilds a stable encoding from the parsed multimap.
func (r *Request) EffectiveRawQuery() string {
	if r.RawQuery != "" {
		return r.RawQuery
	}
	return r.Query.Encode()
}

// HeaderValues returns the values for a header name, matching
// case-insensitively.
func (r *Request) HeaderValues(name string) ([]string, bool) {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}
