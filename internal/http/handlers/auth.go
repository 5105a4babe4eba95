package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/versatil/versatil-backend/internal/http/response"
	"github.com/versatil/versatil-backend/internal/platform/ctxutil"
	"github.com/versatil/versatil-backend/internal/services"
)

type AuthHandler struct {
	authService  services.AuthService
	oauthService services.OAuthService
}

func NewAuthHandler(authService services.AuthService, oauthService services.OAuthService) *AuthHandler {
	return &AuthHandler{authService: authService, oauthService: oauthService}
}

type registerRequest struct {
	Email         string `json:"email" binding:"required"`
	Password      string `json:"password" binding:"required"`
	Name          string `json:"name" binding:"required"`
	WorkspaceName string `json:"workspace_name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:         req.Email,
		Password:      req.Password,
		Name:          req.Name,
		WorkspaceName: req.WorkspaceName,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/auth/verify
func (ah *AuthHandler) Verify(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	user, err := ah.authService.Authenticate(c.Request.Context(), rd.TokenString)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}

// GET /api/auth/google/url
func (ah *AuthHandler) GoogleURL(c *gin.Context) {
	start, err := ah.oauthService.StartLogin(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, start)
}

// GET /api/auth/google/callback?code&state
func (ah *AuthHandler) GoogleCallback(c *gin.Context) {
	res, err := ah.oauthService.CompleteLogin(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}
