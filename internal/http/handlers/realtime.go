package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/versatil/versatil-backend/internal/http/response"
	"github.com/versatil/versatil-backend/internal/platform/apierr"
	"github.com/versatil/versatil-backend/internal/platform/ctxutil"
	"github.com/versatil/versatil-backend/internal/platform/logger"
	"github.com/versatil/versatil-backend/internal/realtime"
	"github.com/versatil/versatil-backend/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 64 << 10
)

type RealtimeHandler struct {
	log                 *logger.Logger
	hub                 *realtime.Hub
	conversationService services.ConversationService
	upgrader            websocket.Upgrader
	pongWait            time.Duration
}

// NewRealtimeHandler accepts upgrades from allowedOrigins; "*" or an empty
// list accepts any origin.
func NewRealtimeHandler(log *logger.Logger, hub *realtime.Hub, conversationService services.ConversationService, allowedOrigins []string) *RealtimeHandler {
	allowed := map[string]bool{}
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &RealtimeHandler{
		log:                 log.With("handler", "RealtimeHandler"),
		hub:                 hub,
		conversationService: conversationService,
		pongWait:            pongWait,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
		},
	}
}

type wsInbound struct {
	Content string `json:"content"`
}

type wsReply struct {
	Type             string             `json:"type"`
	UserMessage      any                `json:"user_message,omitempty"`
	AssistantMessage any                `json:"assistant_message,omitempty"`
	Event            realtime.Event     `json:"event,omitempty"`
	Data             any                `json:"data,omitempty"`
	Error            *response.APIError `json:"error,omitempty"`
}

func errorFrame(err error) wsReply {
	if ae, ok := apierr.As(err); ok {
		return wsReply{Type: "error", Error: &response.APIError{Message: ae.Error(), Code: ae.Code}}
	}
	return wsReply{Type: "error", Error: &response.APIError{Message: err.Error(), Code: "invalid_request"}}
}

// Stream serves WS /ws/:conversation_id. Each text frame {"content": "..."}
// is sent through the conversation and answered with a message frame.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	convID, ok := uuidParam(c, "conversation_id")
	if !ok {
		return
	}
	if _, err := h.conversationService.Get(c.Request.Context(), userID, convID); err != nil {
		response.RespondErr(c, err)
		return
	}

	// Subscribe before the handshake completes so no event published after
	// the client sees the upgrade is missed.
	client := h.hub.NewClient(userID)
	h.hub.AddChannel(client, realtime.ConversationChannel(convID))
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.CloseClient(client)
		h.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	log := h.log.With("client_id", client.ID, "conversation_id", convID)
	log.Debug("WebSocket connected")

	replies := make(chan wsReply, 4)
	done := make(chan struct{})
	writerDone := make(chan struct{})
	go h.writeLoop(conn, client, replies, done, writerDone)

	defer func() {
		close(done)
		h.hub.CloseClient(client)
		<-writerDone
		log.Debug("WebSocket closed")
	}()

	conn.SetReadLimit(maxMessageSize)
	// Pongs are only handled inside ReadMessage, so the deadline is also
	// pushed out whenever a frame arrives and after each reply is produced.
	extendDeadline := func() error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	}
	_ = extendDeadline()
	conn.SetPongHandler(func(string) error { return extendDeadline() })

	send := func(r wsReply) bool {
		select {
		case replies <- r:
			return true
		case <-writerDone:
			return false
		}
	}

	ctx := ctxutil.WithRealtimeOrigin(c.Request.Context(), client.ID.String())
	for {
		messageType, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("WebSocket read failed", "error", err)
			}
			return
		}
		_ = extendDeadline()
		if messageType != websocket.TextMessage {
			continue
		}

		var in wsInbound
		if err := json.Unmarshal(raw, &in); err != nil {
			if !send(errorFrame(errors.New("frames must be JSON objects"))) {
				return
			}
			continue
		}
		res, err := h.conversationService.SendMessage(ctx, userID, convID, in.Content)
		_ = extendDeadline()
		reply := wsReply{Type: "message"}
		if err != nil {
			reply = errorFrame(err)
		} else {
			reply.UserMessage, reply.AssistantMessage = res.UserMessage, res.AssistantMessage
		}
		if !send(reply) {
			return
		}
	}
}

// writeLoop owns every write to conn. A failed write closes conn so the
// reader unblocks.
func (h *RealtimeHandler) writeLoop(conn *websocket.Conn, client *realtime.Client, replies <-chan wsReply, done <-chan struct{}, writerDone chan<- struct{}) {
	defer close(writerDone)
	defer conn.Close()
	ticker := time.NewTicker(h.pongWait * 9 / 10)
	defer ticker.Stop()

	write := func(v any) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v) == nil
	}

	outbound := client.Outbound
	for {
		select {
		case <-done:
			return
		case r := <-replies:
			if !write(r) {
				return
			}
		case msg, ok := <-outbound:
			if !ok {
				outbound = nil
				continue
			}
			if !write(wsReply{Type: "event", Event: msg.Event, Data: msg.Data}) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

