package executor

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/opsmock/mockserver-go/internal/model"
	"github.com/opsmock/mockserver-go/pkg/logger"
)

// hopByHopHeaders are stripped before forwarding; x-forwarded-* headers are
// matched by prefix in isHopByHop. No other header is stripped.
var hopByHopHeaders = map[string]struct{}{
	"host":           {},
	"connection":     {},
	"content-length": {},
	"x-real-ip":      {},
}

func isHopByHop(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "x-forwarded-") {
		return true
	}
	_, ok := hopByHopHeaders[lower]
	return ok
}

// forwardClient forwards with certificate verification disabled, matching
// the source ecosystem's permissive default.
var forwardClient = &http.Client{
	Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	},
}

func executeForward(ctx context.Context, f *model.Forward, req *model.Request, log logger.Logger) *ResponseState {
	simulateDelay(ctx, f.Delay)

	target := buildTargetURL(f, req)

	body := req.Body
	if body == nil && req.Parsed != nil {
		if encoded, err := json.Marshal(req.Parsed); err == nil {
			body = encoded
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bytes.NewReader(body))
	if err != nil {
		log.Errorf("forward: build request to %s: %v", target, err)
		return upstreamErrorResponse(err)
	}
	for key, values := range req.Headers {
		if isHopByHop(key) {
			continue
		}
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Host = f.Host
	httpReq.Header.Set("Host", f.Host)

	resp, err := forwardClient.Do(httpReq)
	if err != nil {
		log.Errorf("forward: upstream request to %s failed: %v", target, err)
		return upstreamErrorResponse(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Errorf("forward: reading upstream response from %s failed: %v", target, err)
		return upstreamErrorResponse(err)
	}

	rs := NewResponseState()
	rs.StatusCode = resp.StatusCode
	for key, values := range resp.Header {
		lower := strings.ToLower(key)
		if lower == "connection" || lower == "transfer-encoding" {
			continue
		}
		rs.Headers[key] = values
	}
	rs.Body = respBody
	return rs
}

// buildTargetURL composes <scheme>://<host>[:<port>]<path>[?<query>],
// omitting the port when it is the scheme default.
func buildTargetURL(f *model.Forward, req *model.Request) string {
	scheme := strings.ToLower(string(f.EffectiveScheme()))
	port := f.EffectivePort()
	host := f.Host
	isDefaultPort := (scheme == "https" && port == 443) || (scheme == "http" && port == 80)
	if !isDefaultPort {
		host = fmt.Sprintf("%s:%d", f.Host, port)
	}

	u := &url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     req.Path,
		RawQuery: req.EffectiveRawQuery(),
	}
	return u.String()
}

func upstreamErrorResponse(err error) *ResponseState {
	rs := NewResponseState()
	rs.StatusCode = http.StatusBadGateway
	rs.Headers["Content-Type"] = []string{"application/json"}
	doc, marshalErr := json.Marshal(map[string]string{
		"error":   "upstream request failed",
		"message": err.Error(),
	})
	if marshalErr != nil {
		doc = []byte(`{"error":"upstream request failed"}`)
	}
	rs.Body = doc
	return rs
}
