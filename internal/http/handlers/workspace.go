package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/versatil/versatil-backend/internal/domain"
	"github.com/versatil/versatil-backend/internal/http/response"
	"github.com/versatil/versatil-backend/internal/services"
)

type WorkspaceHandler struct {
	workspaceService services.WorkspaceService
}

func NewWorkspaceHandler(workspaceService services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

type createWorkspaceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type updateWorkspaceRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Settings    json.RawMessage `json:"settings"`
}

type addMemberRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role"`
}

// GET /api/workspaces
func (h *WorkspaceHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	out, err := h.workspaceService.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/workspaces
func (h *WorkspaceHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req createWorkspaceRequest
	if !bindJSON(c, &req) {
		return
	}
	ws, err := h.workspaceService.Create(c.Request.Context(), userID, services.WorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, ws)
}

// GET /api/workspaces/:id
func (h *WorkspaceHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	ws, err := h.workspaceService.Get(c.Request.Context(), userID, wsID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, ws)
}

// PUT /api/workspaces/:id
func (h *WorkspaceHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req updateWorkspaceRequest
	if !bindJSON(c, &req) {
		return
	}
	ws, err := h.workspaceService.Update(c.Request.Context(), userID, wsID, services.WorkspaceUpdate{
		Name:        req.Name,
		Description: req.Description,
		Settings:    req.Settings,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, ws)
}

// DELETE /api/workspaces/:id
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.workspaceService.Delete(c.Request.Context(), userID, wsID); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Workspace deleted"})
}

// POST /api/workspaces/:id/members
func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req addMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	ws, err := h.workspaceService.AddMember(c.Request.Context(), userID, wsID, req.Email, types.WorkspaceRole(req.Role))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, ws)
}

// DELETE /api/workspaces/:id/members/:uid
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	wsID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := uuidParam(c, "uid")
	if !ok {
		return
	}
	ws, err := h.workspaceService.RemoveMember(c.Request.Context(), userID, wsID, memberID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, ws)
}
