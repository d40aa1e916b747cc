// Package model is the expectation data model: the documents a client PUTs
// to the control plane, normalised at admission time into the shapes the
// matcher, index and executor consume.
package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/antchfx/xpath"
	"github.com/dlclark/regexp2"
)

// MatchType governs how unspecified request fields are treated.
type MatchType string

const (
	MatchStrict    MatchType = "STRICT"
	MatchOnlyGiven MatchType = "ONLY_MATCHING_FIELDS"
)

// FieldMatcher normalises the duck-typed "string or {value, not}" shape used
// throughout the wire format into a single tagged variant. A bare JSON string
// and an object both decode into this type.
type FieldMatcher struct {
	Value string
	Not   bool
}

// UnmarshalJSON accepts either a bare string or an object {"value","not"}.
func (f *FieldMatcher) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Value = s
		f.Not = false
		return nil
	}

	var obj struct {
		Value string `json:"value"`
		Not   bool   `json:"not"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("field matcher must be a string or {value, not}: %w", err)
	}
	f.Value = obj.Value
	f.Not = obj.Not
	return nil
}

func (f FieldMatcher) MarshalJSON() ([]byte, error) {
	if !f.Not {
		return json.Marshal(f.Value)
	}
	return json.Marshal(struct {
		Value string `json:"value"`
		Not   bool   `json:"not"`
	}{f.Value, f.Not})
}

// MultiValueMatcher matches a header or query-parameter multimap. Each key
// maps to one or more required values (set semantics: every listed value
// must appear among the actual values for that key); the whole matcher
// carries a single Not that inverts the field's overall verdict.
type MultiValueMatcher struct {
	Values map[string][]string
	Not    bool
}

// UnmarshalJSON accepts either a bare {"name": "value"|["v1","v2"]} map, or
// the explicit {"values": {...}, "not": bool} form.
func (m *MultiValueMatcher) UnmarshalJSON(data []byte) error {
	var explicit struct {
		Values map[string]json.RawMessage `json:"values"`
		Not    bool                       `json:"not"`
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("multi-value matcher must be an object: %w", err)
	}
	if raw, ok := probe["values"]; ok {
		if err := json.Unmarshal(data, &explicit); err != nil {
			return err
		}
		values, err := decodeValueOrList(explicit.Values)
		if err != nil {
			return err
		}
		m.Values = values
		m.Not = explicit.Not
		_ = raw
		return nil
	}
	values, err := decodeValueOrList(probe)
	if err != nil {
		return err
	}
	m.Values = values
	m.Not = false
	return nil
}

func decodeValueOrList(raw map[string]json.RawMessage) (map[string][]string, error) {
	out := make(map[string][]string, len(raw))
	for name, v := range raw {
		var single string
		if err := json.Unmarshal(v, &single); err == nil {
			out[name] = []string{single}
			continue
		}
		var list []string
		if err := json.Unmarshal(v, &list); err != nil {
			return nil, fmt.Errorf("value for %q must be a string or list of strings: %w", name, err)
		}
		out[name] = list
	}
	return out, nil
}

func (m MultiValueMatcher) MarshalJSON() ([]byte, error) {
	if m.Not {
		return json.Marshal(struct {
			Values map[string][]string `json:"values"`
			Not    bool                 `json:"not"`
		}{m.Values, m.Not})
	}
	return json.Marshal(m.Values)
}

// BodyMatchKind selects which body-matching variant is in play.
type BodyMatchKind string

const (
	BodyString   BodyMatchKind = "string"
	BodyJSON     BodyMatchKind = "json"
	BodyJSONPath BodyMatchKind = "jsonpath"
	BodyXPath    BodyMatchKind = "xpath"
	BodyRegex    BodyMatchKind = "regex"
)

// JSONBodyMode selects exact structural equality versus subset containment.
type JSONBodyMode string

const (
	JSONExact    JSONBodyMode = "EXACT"
	JSONContains JSONBodyMode = "CONTAINS"
)

// BodyMatcher is the tagged variant over the five body-matching kinds the
// wire format accepts. The wire format carries both string and json
// payloads under a single "value" key; UnmarshalJSON resolves which one
// applies based on Type.
type BodyMatcher struct {
	Type BodyMatchKind `json:"type"`

	// Value holds the raw string payload for string, jsonpath, xpath and
	// regex kinds.
	Value string `json:"-"`

	// JSON holds the parsed expected document for the json kind.
	JSON interface{} `json:"-"`

	// MatchType selects exact vs contains for the json kind; defaults to
	// CONTAINS when empty.
	MatchType JSONBodyMode `json:"matchType,omitempty"`
}

// UnmarshalJSON resolves the shared "value" key into either a string
// payload (string, jsonpath, xpath, regex kinds) or an arbitrary JSON
// document (json kind), keyed off Type.
func (b *BodyMatcher) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type      BodyMatchKind   `json:"type"`
		Value     json.RawMessage `json:"value"`
		MatchType JSONBodyMode    `json:"matchType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("body matcher must be an object: %w", err)
	}
	b.Type = probe.Type
	b.MatchType = probe.MatchType

	if len(probe.Value) == 0 {
		return nil
	}
	if probe.Type == BodyJSON {
		var parsed interface{}
		if err := json.Unmarshal(probe.Value, &parsed); err != nil {
			return fmt.Errorf("body matcher value must be valid JSON for type %q: %w", probe.Type, err)
		}
		b.JSON = parsed
		return nil
	}

	var s string
	if err := json.Unmarshal(probe.Value, &s); err != nil {
		return fmt.Errorf("body matcher value must be a string for type %q: %w", probe.Type, err)
	}
	b.Value = s
	return nil
}

// MarshalJSON re-emits the shared "value" key, choosing the string or raw
// JSON payload per Type.
func (b BodyMatcher) MarshalJSON() ([]byte, error) {
	out := struct {
		Type      BodyMatchKind   `json:"type"`
		Value     json.RawMessage `json:"value,omitempty"`
		MatchType JSONBodyMode    `json:"matchType,omitempty"`
	}{Type: b.Type, MatchType: b.MatchType}

	if b.Type == BodyJSON {
		if b.JSON != nil {
			encoded, err := json.Marshal(b.JSON)
			if err != nil {
				return nil, err
			}
			out.Value = encoded
		}
	} else if b.Value != "" {
		encoded, err := json.Marshal(b.Value)
		if err != nil {
			return nil, err
		}
		out.Value = encoded
	}
	return json.Marshal(out)
}

// EffectiveJSONMode returns the configured JSON match mode, defaulting to
// CONTAINS.
func (b *BodyMatcher) EffectiveJSONMode() JSONBodyMode {
	if b.MatchType == JSONExact {
		return JSONExact
	}
	return JSONContains
}

// RequestMatcher is the predicate half of an expectation.
type RequestMatcher struct {
	Method      *FieldMatcher      `json:"method,omitempty"`
	Path        *FieldMatcher      `json:"path,omitempty"`
	QueryParams *MultiValueMatcher `json:"queryParams,omitempty"`
	Headers     *MultiValueMatcher `json:"headers,omitempty"`
	Body        *BodyMatcher       `json:"body,omitempty"`
	MatchType   MatchType          `json:"matchType,omitempty"`
}

// EffectiveMatchType returns the configured match type, defaulting to
// ONLY_MATCHING_FIELDS.
func (r *RequestMatcher) EffectiveMatchType() MatchType {
	if r.MatchType == MatchStrict {
		return MatchStrict
	}
	return MatchOnlyGiven
}

// TimeUnit scales a Delay's Value into milliseconds.
type TimeUnit string

const (
	Milliseconds TimeUnit = "MILLISECONDS"
	Seconds      TimeUnit = "SECONDS"
	Minutes      TimeUnit = "MINUTES"
)

// Delay accepts either a bare integer (milliseconds) or an object
// {timeUnit, value}.
type Delay struct {
	TimeUnit TimeUnit
	Value    int64
}

func (d *Delay) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		d.TimeUnit = Milliseconds
		d.Value = n
		return nil
	}
	var obj struct {
		TimeUnit TimeUnit `json:"timeUnit"`
		Value    int64    `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("delay must be an integer or {timeUnit, value}: %w", err)
	}
	d.TimeUnit = obj.TimeUnit
	d.Value = obj.Value
	return nil
}

func (d Delay) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TimeUnit TimeUnit `json:"timeUnit"`
		Value    int64    `json:"value"`
	}{d.TimeUnit, d.Value})
}

// Milliseconds returns the delay expressed in milliseconds.
func (d *Delay) Milliseconds() int64 {
	if d == nil {
		return 0
	}
	switch d.TimeUnit {
	case Seconds:
		return d.Value * 1000
	case Minutes:
		return d.Value * 60 * 1000
	default:
		return d.Value
	}
}

// CannedResponse is a pre-declared reply the executor plays back verbatim.
type CannedResponse struct {
	StatusCode int                 `json:"statusCode,omitempty"`
	Headers    map[string][]string `json:"headers,omitempty"`
	Body       interface{}         `json:"body,omitempty"`
	Delay      *Delay              `json:"delay,omitempty"`
}

// EffectiveStatusCode returns the configured status, defaulting to 200.
func (c *CannedResponse) EffectiveStatusCode() int {
	if c.StatusCode == 0 {
		return 200
	}
	return c.StatusCode
}

// Scheme is the upstream protocol for a Forward action.
type Scheme string

const (
	SchemeHTTP  Scheme = "HTTP"
	SchemeHTTPS Scheme = "HTTPS"
)

// Forward proxies the request to a named upstream.
type Forward struct {
	Host   string `json:"host"`
	Port   int    `json:"port,omitempty"`
	Scheme Scheme `json:"scheme,omitempty"`
	Delay  *Delay `json:"delay,omitempty"`
}

// EffectiveScheme returns the configured scheme, defaulting to HTTP.
func (f *Forward) EffectiveScheme() Scheme {
	if f.Scheme == SchemeHTTPS {
		return SchemeHTTPS
	}
	return SchemeHTTP
}

// EffectivePort returns the configured port, defaulting per scheme (80/443).
func (f *Forward) EffectivePort() int {
	if f.Port != 0 {
		return f.Port
	}
	if f.EffectiveScheme() == SchemeHTTPS {
		return 443
	}
	return 80
}

// Expectation is the central entity: a request matcher paired with exactly
// one action.
type Expectation struct {
	ID             string          `json:"id,omitempty"`
	Priority       int             `json:"priority"`
	RequestMatcher *RequestMatcher `json:"httpRequest"`
	CannedResponse *CannedResponse `json:"httpResponse,omitempty"`
	Forward        *Forward        `json:"httpForward,omitempty"`
}

// HasExactlyOneAction reports whether exactly one action kind is set.
func (e *Expectation) HasExactlyOneAction() bool {
	n := 0
	if e.CannedResponse != nil {
		n++
	}
	if e.Forward != nil {
		n++
	}
	return n == 1
}

// Validate checks admission invariants: exactly one action, a matcher
// present, and a well-formed body matcher if one is given. It does not
// assign an id; the store does that.
func (e *Expectation) Validate() error {
	if e.RequestMatcher == nil {
		return fmt.Errorf("httpRequest is required")
	}
	if !e.HasExactlyOneAction() {
		return fmt.Errorf("exactly one of httpResponse or httpForward is required")
	}
	if e.Forward != nil && e.Forward.Host == "" {
		return fmt.Errorf("httpForward.host is required")
	}
	if b := e.RequestMatcher.Body; b != nil {
		switch b.Type {
		case BodyString, BodyJSON, BodyJSONPath, BodyXPath, BodyRegex:
		default:
			return fmt.Errorf("unsupported body matcher type %q", b.Type)
		}
		if err := validateBodyMatcher(b); err != nil {
			return err
		}
	}
	if err := validateFieldPattern("httpRequest.method", e.RequestMatcher.Method); err != nil {
		return err
	}
	if err := validateFieldPattern("httpRequest.path", e.RequestMatcher.Path); err != nil {
		return err
	}
	if err := validateMultiValuePatterns("httpRequest.headers", e.RequestMatcher.Headers); err != nil {
		return err
	}
	if err := validateMultiValuePatterns("httpRequest.queryParams", e.RequestMatcher.QueryParams); err != nil {
		return err
	}
	return nil
}

// regexLiteral reports whether value is a /pattern/ regex literal, the
// convention used throughout the matcher package for path, header and
// query values.
func regexLiteral(value string) (pattern string, ok bool) {
	if len(value) >= 2 && strings.HasPrefix(value, "/") && strings.HasSuffix(value, "/") {
		return value[1 : len(value)-1], true
	}
	return "", false
}

func validateFieldPattern(field string, f *FieldMatcher) error {
	if f == nil {
		return nil
	}
	if pattern, ok := regexLiteral(f.Value); ok {
		if _, err := regexp2.Compile(pattern, regexp2.None); err != nil {
			return fmt.Errorf("%s: bad regex %q: %w", field, pattern, err)
		}
	}
	return nil
}

func validateMultiValuePatterns(field string, m *MultiValueMatcher) error {
	if m == nil {
		return nil
	}
	for name, values := range m.Values {
		for _, v := range values {
			if pattern, ok := regexLiteral(v); ok {
				if _, err := regexp2.Compile(pattern, regexp2.None); err != nil {
					return fmt.Errorf("%s[%q]: bad regex %q: %w", field, name, pattern, err)
				}
			}
		}
	}
	return nil
}

// validateBodyMatcher attempts to compile or parse a body matcher's pattern
// at admission time: a regex must compile, a JSONPath expression must
// parse, an XPath expression must compile. string and json kinds carry no
// pattern to check here beyond the type-and-value shape UnmarshalJSON
// already enforced.
func validateBodyMatcher(b *BodyMatcher) error {
	switch b.Type {
	case BodyRegex:
		if _, err := regexp2.Compile(b.Value, regexp2.None); err != nil {
			return fmt.Errorf("httpRequest.body: bad regex %q: %w", b.Value, err)
		}
	case BodyJSONPath:
		if _, err := jsonpath.New(b.Value); err != nil {
			return fmt.Errorf("httpRequest.body: bad JSONPath %q: %w", b.Value, err)
		}
	case BodyXPath:
		if _, err := xpath.Compile(b.Value); err != nil {
			return fmt.Errorf("httpRequest.body: bad XPath %q: %w", b.Value, err)
		}
	}
	return nil
}
