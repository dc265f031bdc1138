package user

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/bondfire/core/internal/middleware"
	appconfigs "github.com/bondfire/core/internal/modules/system/configs"
	"github.com/bondfire/core/internal/pkg/response"
)

type Handler struct {
	svc    *Service
	cfgSvc *appconfigs.Service
}

func NewHandler(svc *Service, cfgSvc *appconfigs.Service) *Handler {
	return &Handler{svc: svc, cfgSvc: cfgSvc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)

	a := g.Group("", authMW)
	a.GET("/me", h.me)
	a.PATCH("/me", h.updateProfile)
	a.PATCH("/password", h.changePassword)
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if cfg, err := h.cfgSvc.Get(); err == nil && cfg.AuthSecurity.DisableRegistration {
		response.ForbiddenMsg(c, "registration is disabled")
		return
	}
	u, err := h.svc.Register(&dto)
	if err != nil {
		switch {
		case errors.Is(err, errEmailTaken):
			response.Conflict(c, "email already registered")
		case errors.Is(err, errUsernameTaken):
			response.Conflict(c, "username already taken")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, toResponse(u))
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if cfg, err := h.cfgSvc.Get(); err == nil && cfg.AuthSecurity.DisablePasswordLogin {
		response.ForbiddenMsg(c, "password login is disabled")
		return
	}
	token, u, err := h.svc.Login(dto.Identifier, dto.Password, c.ClientIP())
	if err != nil {
		if errors.Is(err, errUserNotFound) || errors.Is(err, errWrongPassword) {
			response.ForbiddenMsg(c, "invalid credentials")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, loginResponse{Token: token, User: toResponse(u)})
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.svc.GetByID(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(u))
}

func (h *Handler) updateProfile(c *gin.Context) {
	var dto UpdateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.UpdateProfile(middleware.CurrentUserID(c), &dto)
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			response.Conflict(c, "email already registered")
			return
		}
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(u))
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ChangePassword(middleware.CurrentUserID(c), dto.OldPassword, dto.NewPassword); err != nil {
		switch {
		case errors.Is(err, errWrongPassword):
			response.BadRequest(c, "wrong password")
		case errors.Is(err, errPasswordSameAsOld):
			response.UnprocessableEntity(c, "new password must differ from the old one")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.NoContent(c)
}
