package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	assistantdomain "github.com/versatil/versatil-backend/internal/domain/assistant"
	"github.com/versatil/versatil-backend/internal/http/response"
	"github.com/versatil/versatil-backend/internal/services"
)

type AssistantHandler struct {
	assistantService services.AssistantService
}

func NewAssistantHandler(assistantService services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

type createAssistantRequest struct {
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	AvatarURL    string          `json:"avatar_url"`
	Type         string          `json:"type"`
	Model        string          `json:"model"`
	SystemPrompt string          `json:"system_prompt"`
	Instructions string          `json:"instructions"`
	Tools        json.RawMessage `json:"tools"`
	DataSources  json.RawMessage `json:"data_sources"`
	Settings     json.RawMessage `json:"settings"`
	IsPublic     bool            `json:"is_public"`
}

type updateAssistantRequest struct {
	Name         *string         `json:"name"`
	Description  *string         `json:"description"`
	AvatarURL    *string         `json:"avatar_url"`
	Type         *string         `json:"type"`
	Model        *string         `json:"model"`
	SystemPrompt *string         `json:"system_prompt"`
	Instructions *string         `json:"instructions"`
	Tools        json.RawMessage `json:"tools"`
	DataSources  json.RawMessage `json:"data_sources"`
	Settings     json.RawMessage `json:"settings"`
	IsPublic     *bool           `json:"is_public"`
}

// GET /api/models
func (h *AssistantHandler) Models(c *gin.Context) {
	models, err := assistantdomain.Catalog()
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"models": models})
}

// GET /api/workspaces/:id/assistants
func (h *AssistantHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.assistantService.List(c.Request.Context(), userID, wsID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/workspaces/:id/assistants
func (h *AssistantHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req createAssistantRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.assistantService.Create(c.Request.Context(), userID, wsID, services.AssistantInput{
		Name:         req.Name,
		Description:  req.Description,
		AvatarURL:    req.AvatarURL,
		Type:         req.Type,
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
		Instructions: req.Instructions,
		Tools:        req.Tools,
		DataSources:  req.DataSources,
		Settings:     req.Settings,
		IsPublic:     req.IsPublic,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, a)
}

// GET /api/workspaces/:id/assistants/:aid
func (h *AssistantHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	aID, ok := uuidParam(c, "aid")
	if !ok {
		return
	}
	a, err := h.assistantService.Get(c.Request.Context(), userID, wsID, aID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, a)
}

// PUT /api/workspaces/:id/assistants/:aid
func (h *AssistantHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	aID, ok := uuidParam(c, "aid")
	if !ok {
		return
	}
	var req updateAssistantRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.assistantService.Update(c.Request.Context(), userID, wsID, aID, services.AssistantUpdate{
		Name:         req.Name,
		Description:  req.Description,
		AvatarURL:    req.AvatarURL,
		Type:         req.Type,
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
		Instructions: req.Instructions,
		Tools:        req.Tools,
		DataSources:  req.DataSources,
		Settings:     req.Settings,
		IsPublic:     req.IsPublic,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, a)
}

// DELETE /api/workspaces/:id/assistants/:aid
func (h *AssistantHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	aID, ok := uuidParam(c, "aid")
	if !ok {
		return
	}
	if err := h.assistantService.Delete(c.Request.Context(), userID, wsID, aID); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Assistant deleted"})
}
