package plan

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

func (h *Handler) RegisterRoutes(protected gin.IRouter) {
	plans := protected.Group("/plans")
	{
		plans.POST("", h.Create)
		plans.GET("", h.List)
		plans.GET("/:id", h.Get)
		plans.PATCH("/:id/activate", h.Activate)
		plans.POST("/:id/goals", h.AddGoal)
		plans.POST("/:id/goals/:goalId/actions", h.AddAction)
		plans.POST("/:id/goals/:goalId/check-ins", h.AddCheckIn)
		plans.POST("/:id/feedback", h.AddFeedback)
	}
}

// Create creates a DRAFT plan with optional nested goals and actions.
// @Summary		Create plan
// @Tags		Plans
// @Security	BearerAuth
// @Param		request	body	CreatePlanRequest	true	"Plan; userId defaults to the caller"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}	"Invalid body or periodTo <= periodFrom"
// @Failure		403	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}	"Owner not found"
// @Router		/plans [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, nil)
		return
	}

	p, err := h.service.CreateDraft(c.Request.Context(), middleware.IdentityFrom(c), req)
	if err != nil {
		response.FromError(c, err, h.log)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, nil)
		return
	}

	page, err := h.service.ListByUser(c.Request.Context(), middleware.IdentityFrom(c), q)
	if err != nil {
		response.FromError(c, err, h.log)
		return
	}
	response.Success(c, http.StatusOK, page)
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err, h.log)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) Activate(c *gin.Context) {
	if err := h.service.Activate(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id")); err != nil {
		response.FromError(c, err, h.log)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddGoal(c *gin.Context) {
	var in GoalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.ValidationError(c, nil)
		return
	}

	g, err := h.service.AddGoal(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), in)
	if err != nil {
		response.FromError(c, err, h.log)
		return
	}
	response.Success(c, http.StatusCreated, g)
}

func (h *Handler) AddAction(c *gin.Context) {
	var in ActionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.ValidationError(c, nil)
		return
	}

	a, err := h.service.AddAction(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), c.Param("goalId"), in)
	if err != nil {
		response.FromError(c, err, h.log)
		return
	}
	response.Success(c, http.StatusCreated, a)
}

func (h *Handler) AddCheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, nil)
		return
	}

	ci, err := h.service.AddCheckIn(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), c.Param("goalId"), req)
	if err != nil {
		response.FromError(c, err, h.log)
		return
	}
	response.Success(c, http.StatusCreated, ci)
}

func (h *Handler) AddFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, nil)
		return
	}

	f, err := h.service.AddFeedback(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err, h.log)
		return
	}
	response.Success(c, http.StatusCreated, f)
}
