package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/versatil/versatil-backend/internal/http/response"
	"github.com/versatil/versatil-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/users/:id/avatar
func (uh *UserHandler) Avatar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	png, err := uh.userService.AvatarPNG(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}
