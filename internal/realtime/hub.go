package realtime

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/versatil/versatil-backend/internal/platform/logger"
)

type Event string

const (
	EventMessageCreated Event = "message.created"
)

// Message is one event fanned out to every client subscribed to Channel.
// Source, when set, is the id of the client whose action produced the event;
// that client is skipped since it already has the result.
type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Publisher delivers a Message to every subscriber, possibly across instances.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

func ConversationChannel(conversationID uuid.UUID) string {
	return "conversation:" + conversationID.String()
}

type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan Message

	done      chan struct{}
	closeOnce sync.Once
}

// Done is closed once the hub has dropped the client.
func (c *Client) Done() <-chan struct{} { return c.done }

type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[*Client]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:           log.With("component", "RealtimeHub"),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

func (hub *Hub) NewClient(userID uuid.UUID) *Client {
	return &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Channels: make(map[string]bool),
		Outbound: make(chan Message, 16),
		done:     make(chan struct{}),
	}
}

func (hub *Hub) AddChannel(client *Client, channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	client.Channels[channel] = true

	clients, ok := hub.subscriptions[channel]
	if !ok {
		clients = make(map[*Client]bool)
		hub.subscriptions[channel] = clients
	}
	clients[client] = true

	hub.log.Debug("client subscribed", "client_id", client.ID, "channel", channel)
}

func (hub *Hub) RemoveChannel(client *Client, channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	delete(client.Channels, channel)
	hub.unsubscribeLocked(client, channel)
}

func (hub *Hub) unsubscribeLocked(client *Client, channel string) {
	if subs, ok := hub.subscriptions[channel]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(hub.subscriptions, channel)
		}
	}
}

func (hub *Hub) Broadcast(msg Message) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if msg.Channel == "" {
		return
	}
	for c := range hub.subscriptions[msg.Channel] {
		if msg.Source != "" && c.ID.String() == msg.Source {
			continue
		}
		select {
		case c.Outbound <- msg:
		default:
			hub.log.Warn("Dropping realtime message; outbound buffer full", "client_id", c.ID)
		}
	}
}

// Publish broadcasts in-process. Used when no cross-instance bus is configured.
func (hub *Hub) Publish(ctx context.Context, msg Message) error {
	hub.Broadcast(msg)
	return nil
}

// CloseClient unsubscribes the client and closes its outbound channel. Safe to call twice.
func (hub *Hub) CloseClient(client *Client) {
	client.closeOnce.Do(func() {
		hub.mu.Lock()
		for ch := range client.Channels {
			hub.unsubscribeLocked(client, ch)
		}
		client.Channels = make(map[string]bool)
		close(client.done)
		close(client.Outbound)
		hub.mu.Unlock()
		hub.log.Debug("client closed", "client_id", client.ID)
	})
}
