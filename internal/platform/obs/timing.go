package obs

import (
	"biodiversity-map-service/internal/platform/logger"
	"biodiversity-map-service/internal/platform/metrics"
	"context"
	"time"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time starts timing op. Call the returned func with a pointer to the
// operation's named error result, usually via defer.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID := RequestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			metrics.OpDurationMs.WithLabelValues(name, "error").Observe(float64(dur.Milliseconds()))
			logger.L().Warn("op", "req_id", reqID, "op", name, "dur_ms", dur.Milliseconds(), "err", *errp)
			return
		}
		metrics.OpDurationMs.WithLabelValues(name, "ok").Observe(float64(dur.Milliseconds()))
		logger.L().Debug("op", "req_id", reqID, "op", name, "dur_ms", dur.Milliseconds())
	}
}
