package executor

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/opsmock/mockserver-go/internal/model"
)

func executeCannedResponse(ctx context.Context, resp *model.CannedResponse) *ResponseState {
	simulateDelay(ctx, resp.Delay)

	rs := NewResponseState()
	rs.StatusCode = resp.EffectiveStatusCode()
	for key, values := range resp.Headers {
		rs.Headers[key] = values
	}
	rs.Body = encodeBody(resp.Body, rs.Headers)
	return rs
}

// encodeBody passes strings and bytes through as-is; any other value
// (object, array, number) is serialised as JSON, setting Content-Type if
// the expectation did not already specify one.
func encodeBody(body interface{}, headers map[string][]string) []byte {
	switch v := body.(type) {
	case nil:
		return nil
	case string:
		return []byte(v)
	case []byte:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		hasContentType := false
		for key := range headers {
			if strings.EqualFold(key, "Content-Type") {
				hasContentType = true
				break
			}
		}
		if !hasContentType {
			headers["Content-Type"] = []string{"application/json"}
		}
		return data
	}
}
