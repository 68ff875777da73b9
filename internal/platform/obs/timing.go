package obs

import (
	"context"
	"log/slog"
	"time"

	"consolidation-route-service/internal/platform/metrics"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Time starts timing the operation name. Call the returned func with a pointer
// to the operation's named error result, usually via defer.
func Time(ctx context.Context, logger *slog.Logger, name string) func(errp *error) {
	start := time.Now()

	reqID := chimiddleware.GetReqID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			metrics.OpDuration.WithLabelValues(name, "error").Observe(dur.Seconds())
			logger.DebugContext(ctx, "operation failed", "req_id", reqID, "op", name, "dur_ms", dur.Milliseconds(), "error", *errp)
			return
		}
		metrics.OpDuration.WithLabelValues(name, "ok").Observe(dur.Seconds())
		logger.DebugContext(ctx, "operation finished", "req_id", reqID, "op", name, "dur_ms", dur.Milliseconds())
	}
}
