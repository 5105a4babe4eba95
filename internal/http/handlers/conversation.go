package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/versatil/versatil-backend/internal/http/response"
	"github.com/versatil/versatil-backend/internal/services"
)

type ConversationHandler struct {
	conversationService services.ConversationService
}

func NewConversationHandler(conversationService services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

type createConversationRequest struct {
	AssistantID uuid.UUID       `json:"assistant_id" binding:"required"`
	Title       string          `json:"title"`
	Metadata    json.RawMessage `json:"metadata"`
}

type updateConversationRequest struct {
	Title    *string         `json:"title"`
	Status   *string         `json:"status"`
	Metadata json.RawMessage `json:"metadata"`
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// GET /api/workspaces/:id/conversations
func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.conversationService.List(c.Request.Context(), userID, wsID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/workspaces/:id/conversations
func (h *ConversationHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req createConversationRequest
	if !bindJSON(c, &req) {
		return
	}
	conv, err := h.conversationService.Create(c.Request.Context(), userID, wsID, services.ConversationInput{
		AssistantID: req.AssistantID,
		Title:       req.Title,
		Metadata:    req.Metadata,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, conv)
}

// GET /api/conversations/:id
func (h *ConversationHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	conv, err := h.conversationService.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, conv)
}

// PUT /api/conversations/:id
func (h *ConversationHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req updateConversationRequest
	if !bindJSON(c, &req) {
		return
	}
	conv, err := h.conversationService.Update(c.Request.Context(), userID, id, services.ConversationUpdate{
		Title:    req.Title,
		Status:   req.Status,
		Metadata: req.Metadata,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, conv)
}

// DELETE /api/conversations/:id
func (h *ConversationHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.conversationService.Delete(c.Request.Context(), userID, id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Conversation deleted"})
}

// GET /api/conversations/:id/messages
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	msgs, err := h.conversationService.ListMessages(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, msgs)
}

// POST /api/conversations/:id/messages
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req sendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.conversationService.SendMessage(c.Request.Context(), userID, id, req.Content)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}
