package executor

import (
	"context"
	"time"

	"github.com/opsmock/mockserver-go/internal/model"
)

// simulateDelay sleeps for the configured delay, honouring ctx cancellation
// so a client disconnect aborts an in-flight sleep.
func simulateDelay(ctx context.Context, d *model.Delay) {
	ms := d.Milliseconds()
	if ms <= 0 {
		return
	}
	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
