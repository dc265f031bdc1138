package configs

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/bondfire/core/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	g := rg.Group("/configs")

	g.GET("", h.getPublic)

	a := g.Group("", authMW, adminMW)
	a.GET("/all", h.getAll)
	a.PATCH("", h.patch)
}

// getPublic returns the public-safe subset of the config.
func (h *Handler) getPublic(c *gin.Context) {
	cfg, err := h.svc.Get()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{
		"seo":              cfg.SEO,
		"url":              cfg.URL,
		"game_options":     cfg.GameOptions,
		"commerce_options": cfg.Commerce,
	})
}

// getAll returns the full config including provider API keys. Admin only.
func (h *Handler) getAll(c *gin.Context) {
	cfg, err := h.svc.Get()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, cfg)
}

// patch merges a partial config update.
func (h *Handler) patch(c *gin.Context) {
	var partial map[string]json.RawMessage
	if err := c.ShouldBindJSON(&partial); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	updated, err := h.svc.Patch(partial)
	if err != nil {
		if errors.Is(err, errGenerationProviderNotEnabled) {
			response.BadRequest(c, "cannot enable card generation without an enabled ai provider")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, updated)
}
