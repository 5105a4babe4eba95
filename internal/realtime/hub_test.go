package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/versatil/versatil-backend/internal/platform/logger"
)

func recvMessage(t *testing.T, ch <-chan Message, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for realtime message")
	}
	return Message{}
}

func TestHubOrderingAndReconnect(t *testing.T) {
	hub := NewHub(logger.Nop())
	channel := ConversationChannel(uuid.New())

	clientA := hub.NewClient(uuid.New())
	hub.AddChannel(clientA, channel)

	hub.Broadcast(Message{Channel: channel, Event: EventMessageCreated, Data: map[string]any{"seq": 1}})
	hub.Broadcast(Message{Channel: channel, Event: EventMessageCreated, Data: map[string]any{"seq": 2}})

	first := recvMessage(t, clientA.Outbound, time.Second)
	second := recvMessage(t, clientA.Outbound, time.Second)
	if first.Data.(map[string]any)["seq"] != 1 || second.Data.(map[string]any)["seq"] != 2 {
		t.Fatalf("unexpected order: %+v then %+v", first, second)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}

	clientB := hub.NewClient(uuid.New())
	hub.AddChannel(clientB, channel)
	if err := hub.Publish(context.Background(), Message{Channel: channel, Event: EventMessageCreated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	recvMessage(t, clientB.Outbound, time.Second)
}

func TestHubSkipsSourceClient(t *testing.T) {
	hub := NewHub(logger.Nop())
	channel := ConversationChannel(uuid.New())

	origin := hub.NewClient(uuid.New())
	other := hub.NewClient(uuid.New())
	hub.AddChannel(origin, channel)
	hub.AddChannel(other, channel)

	hub.Broadcast(Message{Channel: channel, Event: EventMessageCreated, Source: origin.ID.String()})

	recvMessage(t, other.Outbound, time.Second)
	select {
	case msg := <-origin.Outbound:
		t.Fatalf("origin should not receive its own event: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubIgnoresOtherChannels(t *testing.T) {
	hub := NewHub(logger.Nop())
	c := hub.NewClient(uuid.New())
	hub.AddChannel(c, "a")
	hub.RemoveChannel(c, "a")
	hub.AddChannel(c, "b")

	hub.Broadcast(Message{Channel: "a", Event: EventMessageCreated})
	hub.Broadcast(Message{Channel: "", Event: EventMessageCreated})
	select {
	case msg := <-c.Outbound:
		t.Fatalf("unexpected message: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
