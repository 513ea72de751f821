// Package requestctx carries the per-request correlation id so handler
// logs, job logs, and response envelopes line up for one archive operation.
package requestctx

import "context"

type contextKey int

const requestIDKey contextKey = iota

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
