package generation

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/bondfire/core/internal/middleware"
	"github.com/bondfire/core/internal/pkg/pagination"
	"github.com/bondfire/core/internal/pkg/response"
	"github.com/bondfire/core/internal/pkg/taskqueue"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	g := rg.Group("/ai", authMW, adminMW)
	g.POST("/cards/generate", h.generate)
	g.POST("/cards/generate/async", h.generateAsync)
	g.POST("/cards/estimate", h.estimate)
	g.GET("/tasks", h.listTasks)
	g.GET("/tasks/:id", h.task)
	g.POST("/tasks/:id/cancel", h.cancelTask)
	g.DELETE("/tasks/:id", h.deleteTask)
}

func (h *Handler) generate(c *gin.Context) {
	var dto GenerateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	dto.RequestedBy = middleware.CurrentUserID(c)
	result, err := h.svc.Generate(c.Request.Context(), &dto)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *Handler) generateAsync(c *gin.Context) {
	var dto GenerateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	dto.RequestedBy = middleware.CurrentUserID(c)
	task, err := h.svc.EnqueueGenerate(c.Request.Context(), &dto)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Created(c, task)
}

func (h *Handler) estimate(c *gin.Context) {
	var dto EstimateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, h.svc.Estimate(&dto))
}

func (h *Handler) task(c *gin.Context) {
	task, err := h.svc.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if task == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, task)
}

func (h *Handler) listTasks(c *gin.Context) {
	q := pagination.FromContext(c)

	var taskType *string
	if t := c.Query("type"); t != "" {
		taskType = &t
	}
	var status *taskqueue.TaskStatus
	if s := c.Query("status"); s != "" {
		st := taskqueue.TaskStatus(s)
		status = &st
	}

	tasks, total, err := h.svc.tasks.List(c.Request.Context(), q.Page, q.Size, taskType, status)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	totalPage := int((total + int64(q.Size) - 1) / int64(q.Size))
	response.Paged(c, tasks, response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPage,
		Size:        q.Size,
		HasNextPage: q.Page < totalPage,
	})
}

func (h *Handler) cancelTask(c *gin.Context) {
	err := h.svc.tasks.Cancel(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, taskqueue.ErrTaskNotFound):
		response.NotFound(c)
	case errors.Is(err, taskqueue.ErrNotCancellable):
		response.BadRequest(c, err.Error())
	case err != nil:
		response.InternalError(c, err)
	default:
		response.NoContent(c)
	}
}

func (h *Handler) deleteTask(c *gin.Context) {
	err := h.svc.tasks.DeleteByID(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, taskqueue.ErrTaskNotFound):
		response.NotFound(c)
	case err != nil:
		response.InternalError(c, err)
	default:
		response.NoContent(c)
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		verr *ValidationError
		rerr *RateLimitError
		terr *TotalFailureError
		perr *ParseError
	)
	switch {
	case errors.As(err, &verr):
		response.BadRequest(c, verr.Error())
	case errors.As(err, &rerr):
		response.TooManyRequests(c, rerr.Error())
	case errors.As(err, &terr):
		response.BadGateway(c, terr.Error())
	case errors.As(err, &perr):
		response.BadGateway(c, perr.Error())
	case errors.Is(err, errNoProvider):
		response.BadGateway(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
