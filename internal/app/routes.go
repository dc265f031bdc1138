package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bondfire/core/internal/middleware"
	"github.com/bondfire/core/internal/modules/auth/user"
	"github.com/bondfire/core/internal/modules/commerce/purchase"
	"github.com/bondfire/core/internal/modules/content/card"
	"github.com/bondfire/core/internal/modules/content/deck"
	"github.com/bondfire/core/internal/modules/game/session"
	"github.com/bondfire/core/internal/modules/generation"
	appconfigs "github.com/bondfire/core/internal/modules/system/configs"
	"github.com/bondfire/core/internal/modules/system/health"
	"github.com/bondfire/core/internal/pkg/response"
	"github.com/bondfire/core/internal/pkg/taskqueue"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes() {
	r := a.router
	db := a.db
	rc := a.rc

	authMW := middleware.Auth()
	adminMW := middleware.RequireAdmin(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "bondfire-core",
		"version":  "1.0.0",
		"homepage": "https://github.com/bondfire/core",
	}

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	// Shared services
	cfgSvc := appconfigs.NewService(db)
	taskSvc := taskqueue.NewService(rc)
	cardSvc := card.NewService(db)
	deckSvc := deck.NewService(db)
	purchaseSvc := purchase.NewService(db, cfgSvc)
	sessionSvc := session.NewService(db, cardSvc, purchaseSvc, cfgSvc)
	genSvc := generation.NewService(cardSvc, deckSvc, cfgSvc, taskSvc, a.logger.Named("generation"))

	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth())
	api.Use(middleware.HTTPCache(rc.Raw(), middleware.HTTPCacheOptions{
		TTL:             15 * time.Second,
		EnableCDNHeader: true,
		Disable:         a.cfg.IsDev(),
		SkipPaths:       httpCacheSkipPaths(),
	}))

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(processStart).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})

	cleanCache := func(c *gin.Context) {
		cfgSvc.Invalidate()
		deleted, err := middleware.PurgeHTTPCache(c.Request.Context(), rc.Raw())
		if err != nil {
			response.InternalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
	}
	api.GET("/clean_cache", authMW, adminMW, cleanCache)

	// Infrastructure
	health.RegisterRoutes(api, db, rc, a.sched, authMW, adminMW)
	appconfigs.NewHandler(cfgSvc).RegisterRoutes(api, authMW, adminMW)

	// Auth & account
	user.NewHandler(user.NewService(db), cfgSvc).RegisterRoutes(api, authMW)

	// Content catalog
	card.NewHandler(cardSvc).RegisterRoutes(api, authMW, adminMW)
	deck.NewHandler(deckSvc).RegisterRoutes(api, authMW, adminMW)

	// Commerce
	purchase.NewHandler(purchaseSvc).RegisterRoutes(api, authMW)

	// Gameplay
	session.NewHandler(sessionSvc).RegisterRoutes(api, authMW)

	// AI card generation (admin)
	generation.NewHandler(genSvc).RegisterRoutes(api, authMW, adminMW)
}

// httpCacheSkipPaths lists endpoints whose responses must never be shared
// between clients.
func httpCacheSkipPaths() []string {
	return []string{
		apiPrefix + "/uptime",
		apiPrefix + "/clean_cache",
		apiPrefix + "/auth/*",
		apiPrefix + "/sessions*",
		apiPrefix + "/purchases*",
		apiPrefix + "/ai/*",
	}
}
