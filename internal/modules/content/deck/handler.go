package deck

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/bondfire/core/internal/pkg/pagination"
	"github.com/bondfire/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	g := rg.Group("/decks")

	g.GET("", h.list)
	g.GET("/:id", h.get)

	a := g.Group("", authMW, adminMW)
	a.POST("", h.create)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
	a.POST("/:id/refresh-counts", h.refreshCounts)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	activeOnly := c.DefaultQuery("active", "true") != "false"
	decks, p, err := h.svc.List(q, c.Query("relationship_type"), activeOnly)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, decks, p)
}

func (h *Handler) get(c *gin.Context) {
	d, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if d == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, d)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateDeckDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	d, err := h.svc.Create(&dto)
	if err != nil {
		if errors.Is(err, errInvalidRelationship) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, d)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateDeckDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	d, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, errInvalidRelationship) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if d == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, d)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) refreshCounts(c *gin.Context) {
	id := c.Param("id")
	d, err := h.svc.GetByID(id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if d == nil {
		response.NotFound(c)
		return
	}
	if err := h.svc.RefreshCardCounts(id); err != nil {
		response.InternalError(c, err)
		return
	}
	d, _ = h.svc.GetByID(id)
	response.OK(c, d)
}
