package executor

import (
	"context"
	"fmt"

	"github.com/opsmock/mockserver-go/internal/model"
	"github.com/opsmock/mockserver-go/pkg/logger"
)

// Execute realises e's action against req: a canned response played back
// verbatim, or a forward to an upstream origin. e is assumed already
// validated to have exactly one action; if that invariant is somehow
// violated the caller gets a defensive 500 rather than a panic.
func Execute(ctx context.Context, e *model.Expectation, req *model.Request, log logger.Logger) *ResponseState {
	switch {
	case e.CannedResponse != nil:
		return executeCannedResponse(ctx, e.CannedResponse)
	case e.Forward != nil:
		return executeForward(ctx, e.Forward, req, log)
	default:
		log.Errorf("expectation %s has neither httpResponse nor httpForward", e.ID)
		return errorResponse(fmt.Errorf("expectation has no action"))
	}
}

func errorResponse(err error) *ResponseState {
	rs := NewResponseState()
	rs.StatusCode = 500
	rs.Headers["Content-Type"] = []string{"application/json"}
	rs.Body = []byte(fmt.Sprintf(`{"error":"internal error","message":%q}`, err.Error()))
	return rs
}
