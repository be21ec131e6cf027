package auth

import (
	"net/http"
	"strings"

	"devplan/internal/middleware"
	"devplan/internal/pkg/ratelimit"
	"devplan/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service      *Service
	loginLimiter ratelimit.Limiter
	log          *zap.Logger
}

// NewHandler creates a new auth handler. A nil limiter disables login
// throttling.
func NewHandler(service *Service, loginLimiter ratelimit.Limiter, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		service:      service,
		loginLimiter: loginLimiter,
		log:          log,
	}
}

// RegisterPublicRoutes mounts the unauthenticated auth endpoints. Extra
// handlers are run in front of /auth/refresh.
func (h *Handler) RegisterPublicRoutes(r gin.IRouter, refreshGuards ...gin.HandlerFunc) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", append(refreshGuards, h.Refresh)...)
		authGroup.POST("/logout", h.Logout)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected gin.IRouter) {
	protected.POST("/auth/logout-all", h.LogoutAll)
}

// Login authenticates a user by email and password.
// @Summary		Log in
// @Tags		Auth
// @Param		request	body	LoginRequest	true	"Credentials"
// @Success		200	{object}	map[string]interface{}	"User with access and refresh tokens"
// @Failure		400	{object}	map[string]interface{}	"Invalid body"
// @Failure		401	{object}	map[string]interface{}	"Wrong email or password"
// @Failure		403	{object}	map[string]interface{}	"Account inactive"
// @Failure		429	{object}	map[string]interface{}	"Too many attempts"
// @Router		/auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, nil)
		return
	}

	if h.loginLimiter != nil {
		key := c.ClientIP() + ":" + strings.ToLower(strings.TrimSpace(req.Email))
		if !h.loginLimiter.Allow(c.Request.Context(), key) {
			h.service.events.RecordAuth(opLogin, "throttled")
			response.FromError(c, ErrTooManyAttempts, h.log)
			return
		}
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err, h.log)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Refresh exchanges a refresh token for a new token pair.
// @Summary		Rotate refresh token
// @Tags		Auth
// @Param		request	body	RefreshRequest	true	"Refresh token"
// @Success		200	{object}	map[string]interface{}	"New token pair"
// @Failure		401	{object}	map[string]interface{}	"Unknown, used or expired token"
// @Failure		403	{object}	map[string]interface{}	"Account inactive"
// @Router		/auth/refresh [POST]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, nil)
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.FromError(c, err, h.log)
		return
	}
	response.Success(c, http.StatusOK, pair)
}

func (h *Handler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, nil)
		return
	}
	if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		response.FromError(c, err, h.log)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) LogoutAll(c *gin.Context) {
	caller := middleware.IdentityFrom(c)
	if err := h.service.LogoutAll(c.Request.Context(), caller, caller.UserID); err != nil {
		response.FromError(c, err, h.log)
		return
	}
	c.Status(http.StatusNoContent)
}
