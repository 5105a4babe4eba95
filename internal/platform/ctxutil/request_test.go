package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetRequestData(ctx))
	assert.Nil(t, GetTraceData(nil))
	assert.Equal(t, "", RealtimeOrigin(ctx))

	id := uuid.New()
	ctx = WithRequestData(ctx, &RequestData{TokenString: "t", UserID: id})
	ctx = WithTraceData(ctx, &TraceData{TraceID: "tr", RequestID: "rq"})
	ctx = WithRealtimeOrigin(ctx, "client-1")

	assert.Equal(t, id, GetRequestData(ctx).UserID)
	assert.Equal(t, "rq", GetTraceData(ctx).RequestID)
	assert.Equal(t, "client-1", RealtimeOrigin(ctx))
	assert.NotNil(t, Default(nil))
}
