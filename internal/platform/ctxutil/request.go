package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type (
	requestDataKey    struct{}
	traceDataKey      struct{}
	realtimeOriginKey struct{}
)

// RequestData is attached by the auth middleware once a bearer token verified.
type RequestData struct {
	TokenString string
	UserID      uuid.UUID
}

// TraceData identifies one HTTP request in logs and response headers.
type TraceData struct {
	TraceID   string
	RequestID string
}

func value[T any](ctx context.Context, key any) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	return v, ok
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	rd, _ := value[*RequestData](ctx, requestDataKey{})
	return rd
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	td, _ := value[*TraceData](ctx, traceDataKey{})
	return td
}

// WithRealtimeOrigin marks work triggered by a websocket client so broadcasts
// skip that same client.
func WithRealtimeOrigin(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, realtimeOriginKey{}, clientID)
}

func RealtimeOrigin(ctx context.Context) string {
	id, _ := value[string](ctx, realtimeOriginKey{})
	return id
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
