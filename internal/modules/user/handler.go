package user

import (
	"net/http"

	"devplan/internal/middleware"
	"devplan/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

// RegisterRoutes mounts /users. optionalAuth guards creation, requireAuth
// everything else.
func (h *Handler) RegisterRoutes(r gin.IRouter, optionalAuth, requireAuth gin.HandlerFunc) {
	users := r.Group("/users")
	users.POST("", optionalAuth, h.Create)

	authed := users.Group("", requireAuth)
	{
		authed.GET("", h.List)
		authed.GET("/:id", h.Get)
		authed.PATCH("/:id", h.Rename)
	}

	admin := authed.Group("", middleware.AdminOnly())
	{
		admin.PATCH("/:id/activate", h.Activate)
		admin.PATCH("/:id/deactivate", h.Deactivate)
	}
}

// Create registers a user account.
// @Summary		Create user
// @Tags		Users
// @Param		request	body	CreateUserRequest	true	"Account data; role and managerId need an ADMIN token"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}
// @Router		/users [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, nil)
		return
	}

	u, err := h.service.Create(c.Request.Context(), middleware.IdentityFrom(c), req)
	if err != nil {
		response.FromError(c, err, h.log)
		return
	}
	response.Success(c, http.StatusCreated, u)
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, nil)
		return
	}

	page, err := h.service.List(c.Request.Context(), middleware.IdentityFrom(c), q)
	if err != nil {
		response.FromError(c, err, h.log)
		return
	}
	response.Success(c, http.StatusOK, page)
}

func (h *Handler) Get(c *gin.Context) {
	u, err := h.service.Get(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err, h.log)
		return
	}
	response.Success(c, http.StatusOK, u)
}

func (h *Handler) Rename(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, nil)
		return
	}

	u, err := h.service.Rename(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err, h.log)
		return
	}
	response.Success(c, http.StatusOK, u)
}

func (h *Handler) Activate(c *gin.Context) {
	if err := h.service.Activate(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id")); err != nil {
		response.FromError(c, err, h.log)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id")); err != nil {
		response.FromError(c, err, h.log)
		return
	}
	c.Status(http.StatusNoContent)
}
