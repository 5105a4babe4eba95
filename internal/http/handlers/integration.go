package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/versatil/versatil-backend/internal/http/response"
	"github.com/versatil/versatil-backend/internal/services"
)

type IntegrationHandler struct {
	integrationService services.IntegrationService
}

func NewIntegrationHandler(integrationService services.IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{integrationService: integrationService}
}

// GET /api/workspaces/:id/integrations
func (h *IntegrationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.integrationService.List(c.Request.Context(), userID, wsID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/workspaces/:id/integrations/google
func (h *IntegrationHandler) StartGoogle(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	start, err := h.integrationService.StartGoogle(c.Request.Context(), userID, wsID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, start)
}

// GET /api/integrations/google/callback?code&state
func (h *IntegrationHandler) GoogleCallback(c *gin.Context) {
	integ, err := h.integrationService.CompleteGoogle(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, integ)
}

// POST /api/integrations/:id/sync
func (h *IntegrationHandler) Sync(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	docs, err := h.integrationService.Sync(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"synced": len(docs), "documents": docs})
}

// DELETE /api/integrations/:id
func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	integ, err := h.integrationService.Disconnect(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, integ)
}

// GET /api/workspaces/:id/documents
func (h *IntegrationHandler) ListDocuments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	docs, err := h.integrationService.ListDocuments(c.Request.Context(), userID, wsID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, docs)
}

// GET /api/workspaces/:id/documents/:did
func (h *IntegrationHandler) GetDocument(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	docID, ok := uuidParam(c, "did")
	if !ok {
		return
	}
	doc, err := h.integrationService.GetDocument(c.Request.Context(), userID, wsID, docID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, doc)
}
