package bus

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versatil/versatil-backend/internal/platform/logger"
	"github.com/versatil/versatil-backend/internal/realtime"
)

func TestRedisBusRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)

	b, err := NewRedisBus(logger.Nop(), RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan realtime.Message, 1)
	require.NoError(t, b.StartForwarder(ctx, func(m realtime.Message) { got <- m }))

	want := realtime.Message{Channel: "conversation:abc", Event: realtime.EventMessageCreated, Source: "client-1"}
	require.NoError(t, b.Publish(ctx, want))

	select {
	case m := <-got:
		assert.Equal(t, want.Channel, m.Channel)
		assert.Equal(t, want.Event, m.Event)
		assert.Equal(t, want.Source, m.Source)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for forwarded message")
	}
}

func TestRedisBusRequiresAddr(t *testing.T) {
	_, err := NewRedisBus(logger.Nop(), RedisConfig{})
	assert.Error(t, err)
}

func TestRedisBusPublishesPerChannelTopic(t *testing.T) {
	mr := miniredis.RunT(t)
	b, err := NewRedisBus(logger.Nop(), RedisConfig{Addr: mr.Addr(), Channel: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	ctx := context.Background()
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	sub := rdb.Subscribe(ctx, "test:conversation:xyz")
	t.Cleanup(func() { _ = sub.Close() })
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, realtime.Message{Channel: "conversation:xyz", Event: realtime.EventMessageCreated}))

	select {
	case m := <-sub.Channel():
		assert.Contains(t, m.Payload, `"conversation:xyz"`)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for topic message")
	}
}
