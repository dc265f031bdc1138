package session

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/bondfire/core/internal/middleware"
	"github.com/bondfire/core/internal/models"
	"github.com/bondfire/core/internal/pkg/pagination"
	"github.com/bondfire/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/sessions", authMW)
	g.POST("", h.start)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("/:id/draw", h.draw)
	g.POST("/:id/cards/:cardId/complete", h.complete)
	g.POST("/:id/cards/:cardId/skip", h.skip)
	g.POST("/:id/finish", h.finish)
}

func (h *Handler) start(c *gin.Context) {
	var dto StartSessionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	sess, err := h.svc.Start(middleware.CurrentUserID(c), &dto)
	if err != nil {
		switch {
		case errors.Is(err, errInvalidRelationship):
			response.UnprocessableEntity(c, err.Error())
		case errors.Is(err, errDeckNotFound):
			response.NotFoundMsg(c, "deck not found")
		case errors.Is(err, errPremiumLocked):
			response.ForbiddenMsg(c, "premium deck not unlocked")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, sess)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	sessions, p, err := h.svc.ListByUser(middleware.CurrentUserID(c), q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, sessions, p)
}

func (h *Handler) get(c *gin.Context) {
	sess, err := h.svc.GetByID(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if sess == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, sess)
}

func (h *Handler) draw(c *gin.Context) {
	var dto DrawDTO
	if err := c.ShouldBindJSON(&dto); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, err.Error())
		return
	}
	card, err := h.svc.Draw(middleware.CurrentUserID(c), c.Param("id"), dto.Language)
	if err != nil {
		switch {
		case errors.Is(err, errSessionNotActive):
			response.Conflict(c, "session is not active")
		case errors.Is(err, errNoCardsAvailable):
			response.NotFoundMsg(c, "no cards available")
		default:
			response.InternalError(c, err)
		}
		return
	}
	if card == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, card)
}

func (h *Handler) complete(c *gin.Context) {
	sess, err := h.svc.Complete(middleware.CurrentUserID(c), c.Param("id"), c.Param("cardId"))
	h.respondResolve(c, sess, err)
}

func (h *Handler) skip(c *gin.Context) {
	sess, err := h.svc.Skip(middleware.CurrentUserID(c), c.Param("id"), c.Param("cardId"))
	h.respondResolve(c, sess, err)
}

func (h *Handler) respondResolve(c *gin.Context, sess *models.GameSessionModel, err error) {
	if err != nil {
		switch {
		case errors.Is(err, errSessionNotActive):
			response.Conflict(c, "session is not active")
		case errors.Is(err, errCardNotInSession):
			response.UnprocessableEntity(c, "card was not drawn in this session")
		default:
			response.InternalError(c, err)
		}
		return
	}
	if sess == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, sess)
}

func (h *Handler) finish(c *gin.Context) {
	sess, err := h.svc.Finish(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, errSessionNotActive) {
			response.Conflict(c, "session is not active")
			return
		}
		response.InternalError(c, err)
		return
	}
	if sess == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, sess)
}
