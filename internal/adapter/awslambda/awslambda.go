// Package awslambda adapts the engine's single HTTP handler to run behind
// API Gateway or a Lambda Function URL, proving the framing layer is
// transport-agnostic.
package awslambda

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// HandleLambdaRequest dispatches a raw Lambda invocation payload to h,
// recognising both the API Gateway proxy shape and the newer Function URL
// shape.
func HandleLambdaRequest(req json.RawMessage, h http.Handler) (interface{}, error) {
	var apiGatewayReq events.APIGatewayProxyRequest
	if err := json.Unmarshal(req, &apiGatewayReq); err == nil && apiGatewayReq.HTTPMethod != "" {
		return handleAPIGatewayProxyRequest(apiGatewayReq, h)
	}

	var lambdaFunctionURLReq events.LambdaFunctionURLRequest
	if err := json.Unmarshal(req, &lambdaFunctionURLReq); err == nil && lambdaFunctionURLReq.RequestContext.HTTP.Method != "" {
		return handleLambdaFunctionURLRequest(lambdaFunctionURLReq, h)
	}

	return events.LambdaFunctionURLResponse{StatusCode: 400, Body: "Unsupported request type"}, nil
}

func handleAPIGatewayProxyRequest(req events.APIGatewayProxyRequest, h http.Handler) (events.APIGatewayProxyResponse, error) {
	httpReq, err := convertLambdaRequestToHTTPRequest(req.HTTPMethod, req.Path, req.Headers, req.Body)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: 500, Body: "Failed to convert request"}, nil
	}

	recorder := newResponseRecorder()
	h.ServeHTTP(recorder, httpReq)

	return events.APIGatewayProxyResponse{
		StatusCode: recorder.StatusCode,
		Headers:    convertHTTPHeaderToMap(recorder.Headers),
		Body:       recorder.Body.String(),
	}, nil
}

func handleLambdaFunctionURLRequest(req events.LambdaFunctionURLRequest, h http.Handler) (events.LambdaFunctionURLResponse, error) {
	httpReq, err := convertLambdaRequestToHTTPRequest(req.RequestContext.HTTP.Method, req.RawPath, req.Headers, req.Body)
	if err != nil {
		return events.LambdaFunctionURLResponse{StatusCode: 500, Body: "Failed to convert request"}, nil
	}

	recorder := newResponseRecorder()
	h.ServeHTTP(recorder, httpReq)

	return events.LambdaFunctionURLResponse{
		StatusCode: recorder.StatusCode,
		Headers:    convertHTTPHeaderToMap(recorder.Headers),
		Body:       recorder.Body.String(),
	}, nil
}

func convertLambdaRequestToHTTPRequest(method, path string, headers map[string]string, body string) (*http.Request, error) {
	httpReq, err := http.NewRequest(method, path, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}
	return httpReq, nil
}

func convertHTTPHeaderToMap(header http.Header) map[string]string {
	result := make(map[string]string, len(header))
	for key, values := range header {
		result[key] = strings.Join(values, ",")
	}
	return result
}
