package model

import (
	"encoding/json"
	"testing"
)

func TestFieldMatcherUnmarshalString(t *testing.T) {
	var f FieldMatcher
	if err := json.Unmarshal([]byte(`"GET"`), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if f.Value != "GET" || f.Not {
		t.Errorf("got %+v", f)
	}
}

func TestFieldMatcherUnmarshalObject(t *testing.T) {
	var f FieldMatcher
	if err := json.Unmarshal([]byte(`{"value":"GET","not":true}`), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if f.Value != "GET" || !f.Not {
		t.Errorf("got %+v", f)
	}
}

func TestMultiValueMatcherBareMap(t *testing.T) {
	var m MultiValueMatcher
	if err := json.Unmarshal([]byte(`{"a":"1","b":["x","y"]}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Not {
		t.Error("expected Not=false for bare map form")
	}
	if len(m.Values["a"]) != 1 || m.Values["a"][0] != "1" {
		t.Errorf("a = %v", m.Values["a"])
	}
	if len(m.Values["b"]) != 2 {
		t.Errorf("b = %v", m.Values["b"])
	}
}

func TestMultiValueMatcherExplicitForm(t *testing.T) {
	var m MultiValueMatcher
	if err := json.Unmarshal([]byte(`{"values":{"a":"1"},"not":true}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !m.Not {
		t.Error("expected Not=true")
	}
	if len(m.Values["a"]) != 1 || m.Values["a"][0] != "1" {
		t.Errorf("a = %v", m.Values["a"])
	}
}

func TestDelayBareInteger(t *testing.T) {
	var d Delay
	if err := json.Unmarshal([]byte(`100`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Milliseconds() != 100 {
		t.Errorf("Milliseconds() = %d, want 100", d.Milliseconds())
	}
}

func TestDelayObjectSeconds(t *testing.T) {
	var d Delay
	if err := json.Unmarshal([]byte(`{"timeUnit":"SECONDS","value":2}`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Milliseconds() != 2000 {
		t.Errorf("Milliseconds() = %d, want 2000", d.Milliseconds())
	}
}

func TestBodyMatcherUnmarshalJSONValue(t *testing.T) {
	var b BodyMatcher
	if err := json.Unmarshal([]byte(`{"type":"json","value":{"name":"Alice","age":30},"matchType":"EXACT"}`), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	doc, ok := b.JSON.(map[string]interface{})
	if !ok {
		t.Fatalf("JSON = %#v, want a map", b.JSON)
	}
	if doc["name"] != "Alice" {
		t.Errorf("name = %v, want Alice", doc["name"])
	}
	if b.EffectiveJSONMode() != JSONExact {
		t.Errorf("mode = %q, want EXACT", b.EffectiveJSONMode())
	}
}

func TestBodyMatcherUnmarshalStringValue(t *testing.T) {
	var b BodyMatcher
	if err := json.Unmarshal([]byte(`{"type":"regex","value":"^hello.*"}`), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.Value != "^hello.*" {
		t.Errorf("value = %q", b.Value)
	}
}

func TestBodyMatcherRoundTripJSON(t *testing.T) {
	b := BodyMatcher{Type: BodyJSON, JSON: map[string]interface{}{"k": "v"}, MatchType: JSONExact}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var b2 BodyMatcher
	if err := json.Unmarshal(data, &b2); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	doc, ok := b2.JSON.(map[string]interface{})
	if !ok || doc["k"] != "v" {
		t.Errorf("got %#v", b2.JSON)
	}
}

func TestExpectationValidateRequiresOneAction(t *testing.T) {
	e := Expectation{RequestMatcher: &RequestMatcher{}}
	if err := e.Validate(); err == nil {
		t.Error("expected validation error with no action")
	}
	e.CannedResponse = &CannedResponse{}
	e.Forward = &Forward{Host: "example.com"}
	if err := e.Validate(); err == nil {
		t.Error("expected validation error with two actions")
	}
}

func TestExpectationValidateOK(t *testing.T) {
	e := Expectation{
		RequestMatcher: &RequestMatcher{},
		CannedResponse: &CannedResponse{StatusCode: 200},
	}
	if err := e.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExpectationValidateRejectsBadPathRegex(t *testing.T) {
	e := Expectation{
		RequestMatcher: &RequestMatcher{Path: &FieldMatcher{Value: "/(unclosed/"}},
		CannedResponse: &CannedResponse{},
	}
	if err := e.Validate(); err == nil {
		t.Error("expected validation error for a malformed path regex")
	}
}

func TestExpectationValidateRejectsBadHeaderRegex(t *testing.T) {
	e := Expectation{
		RequestMatcher: &RequestMatcher{
			Headers: &MultiValueMatcher{Values: map[string][]string{"X-Foo": {"/[unclosed/"}}},
		},
		CannedResponse: &CannedResponse{},
	}
	if err := e.Validate(); err == nil {
		t.Error("expected validation error for a malformed header regex")
	}
}

func TestExpectationValidateAcceptsWellFormedRegex(t *testing.T) {
	e := Expectation{
		RequestMatcher: &RequestMatcher{Path: &FieldMatcher{Value: "/^hello.*$/"}},
		CannedResponse: &CannedResponse{},
	}
	if err := e.Validate(); err != nil {
		t.Errorf("unexpected error for a well-formed regex: %v", err)
	}
}

func TestExpectationValidateRejectsBadBodyRegex(t *testing.T) {
	e := Expectation{
		RequestMatcher: &RequestMatcher{Body: &BodyMatcher{Type: BodyRegex, Value: "(unclosed"}},
		CannedResponse: &CannedResponse{},
	}
	if err := e.Validate(); err == nil {
		t.Error("expected validation error for a malformed body regex")
	}
}

func TestExpectationValidateRejectsBadJSONPath(t *testing.T) {
	e := Expectation{
		RequestMatcher: &RequestMatcher{Body: &BodyMatcher{Type: BodyJSONPath, Value: "$["}},
		CannedResponse: &CannedResponse{},
	}
	if err := e.Validate(); err == nil {
		t.Error("expected validation error for a malformed JSONPath expression")
	}
}

func TestExpectationValidateAcceptsWellFormedJSONPath(t *testing.T) {
	e := Expectation{
		RequestMatcher: &RequestMatcher{Body: &BodyMatcher{Type: BodyJSONPath, Value: "$.name"}},
		CannedResponse: &CannedResponse{},
	}
	if err := e.Validate(); err != nil {
		t.Errorf("unexpected error for a well-formed JSONPath expression: %v", err)
	}
}

func TestExpectationValidateRejectsBadXPath(t *testing.T) {
	e := Expectation{
		RequestMatcher: &RequestMatcher{Body: &BodyMatcher{Type: BodyXPath, Value: "//foo["}},
		CannedResponse: &CannedResponse{},
	}
	if err := e.Validate(); err == nil {
		t.Error("expected validation error for a malformed XPath expression")
	}
}

func TestForwardEffectivePort(t *testing.T) {
	f := Forward{Host: "example.com", Scheme: SchemeHTTPS}
	if f.EffectivePort() != 443 {
		t.Errorf("port = %d, want 443", f.EffectivePort())
	}
	f2 := Forward{Host: "example.com"}
	if f2.EffectivePort() != 80 {
		t.Errorf("port = %d, want 80", f2.EffectivePort())
	}
}

func TestExpectationRoundTripJSON(t *testing.T) {
	raw := `{"httpRequest":{"method":"POST","path":"/api/users"},"httpResponse":{"statusCode":201,"body":{"status":"created"}}}`
	var e Expectation
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.RequestMatcher.Method.Value != "POST" {
		t.Errorf("method = %q", e.RequestMatcher.Method.Value)
	}
	if e.CannedResponse.EffectiveStatusCode() != 201 {
		t.Errorf("status = %d", e.CannedResponse.EffectiveStatusCode())
	}
}
