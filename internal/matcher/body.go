package matcher

import (
	"bytes"
	"encoding/json"

	"github.com/PaesslerAG/jsonpath"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/opsmock/mockserver-go/internal/model"
)

func matchBody(b *model.BodyMatcher, r *model.Request) bool {
	if b == nil {
		return true
	}
	switch b.Type {
	case model.BodyString:
		return string(r.Body) == b.Value
	case model.BodyRegex:
		return MatchRegex(b.Value, string(r.Body))
	case model.BodyJSON:
		return matchJSONBody(b, r.Body)
	case model.BodyJSONPath:
		return matchJSONPathBody(b.Value, r.Body)
	case model.BodyXPath:
		return matchXPathBody(b.Value, r.Body)
	default:
		return false
	}
}

func matchJSONBody(b *model.BodyMatcher, body []byte) bool {
	var actual interface{}
	if err := json.Unmarshal(body, &actual); err != nil {
		return false
	}
	if b.EffectiveJSONMode() == model.JSONExact {
		return jsonExactEqual(b.JSON, actual)
	}
	return jsonContains(b.JSON, actual)
}

func matchJSONPathBody(expr string, body []byte) bool {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return false
	}
	result, err := jsonpath.Get(expr, data)
	if err != nil {
		return false
	}
	switch v := result.(type) {
	case nil:
		return false
	case []interface{}:
		return len(v) > 0
	default:
		return true
	}
}

func matchXPathBody(expr string, body []byte) bool {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return false
	}
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return false
	}
	node := xmlquery.QuerySelector(doc, compiled)
	return node != nil
}
