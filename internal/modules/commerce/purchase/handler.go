package purchase

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/bondfire/core/internal/middleware"
	"github.com/bondfire/core/internal/pkg/pagination"
	"github.com/bondfire/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/purchases", authMW)
	g.POST("", h.create)
	g.POST("/:id/complete", h.complete)
	g.GET("", h.list)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreatePurchaseDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Create(middleware.CurrentUserID(c), &dto)
	if err != nil {
		switch {
		case errors.Is(err, errDeckNotFound):
			response.NotFoundMsg(c, "deck not found")
		case errors.Is(err, errDeckNotPurchasable):
			response.UnprocessableEntity(c, "deck is not purchasable")
		case errors.Is(err, errAlreadyUnlocked):
			response.Conflict(c, "deck already unlocked")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, p)
}

func (h *Handler) complete(c *gin.Context) {
	var dto CompletePurchaseDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Complete(middleware.CurrentUserID(c), c.Param("id"), &dto)
	if err != nil {
		if errors.Is(err, errNotPending) {
			response.Conflict(c, "purchase is not pending")
			return
		}
		response.InternalError(c, err)
		return
	}
	if p == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, p)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	purchases, p, err := h.svc.ListByUser(middleware.CurrentUserID(c), q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, purchases, p)
}
