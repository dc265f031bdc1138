package card

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bondfire/core/internal/pkg/pagination"
	"github.com/bondfire/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	g := rg.Group("/cards")

	g.GET("", h.list)
	g.GET("/:id", h.get)

	a := g.Group("", authMW, adminMW)
	a.POST("", h.create)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
	a.POST("/:id/review", h.review)

	rg.GET("/cards-review-queue", authMW, adminMW, h.reviewQueue)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	f := ListFilter{
		Type:             c.Query("type"),
		RelationshipType: c.Query("relationship_type"),
		Tier:             c.Query("tier"),
		Status:           c.DefaultQuery("status", "active"),
		Source:           c.Query("source"),
		DeckID:           c.Query("deck_id"),
	}
	if raw := c.Query("connection_level"); raw != "" {
		if level, err := strconv.Atoi(raw); err == nil {
			f.ConnectionLevel = level
		}
	}

	cards, p, err := h.svc.List(q, f)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, cards, p)
}

func (h *Handler) get(c *gin.Context) {
	card, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if card == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, card)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCardDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	card, err := h.svc.Create(&dto)
	if err != nil {
		if isValidationErr(err) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, card)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateCardDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	card, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		if isValidationErr(err) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if card == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, card)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) review(c *gin.Context) {
	var dto ReviewDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	card, err := h.svc.Review(c.Param("id"), dto.Action)
	if err != nil {
		if errors.Is(err, errNotInReview) {
			response.Conflict(c, "card is not in review")
			return
		}
		response.InternalError(c, err)
		return
	}
	if card == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, card)
}

func (h *Handler) reviewQueue(c *gin.Context) {
	q := pagination.FromContext(c)
	cards, p, err := h.svc.ReviewQueue(q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, cards, p)
}

func isValidationErr(err error) bool {
	return errors.Is(err, errInvalidCardType) ||
		errors.Is(err, errInvalidLevel) ||
		errors.Is(err, errInvalidRelationship)
}
