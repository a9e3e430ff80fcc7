package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sportsync/sportsync-api/docs"
)

// NewRouter wires every route. Public match reads stay outside the auth
// chain; everything mutating runs behind Authenticate and RefreshSweep.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), h.Metrics())

	window := time.Duration(h.Cfg.RateWindowMin) * time.Minute
	r.Use(h.RateLimit("global", h.Cfg.RateGlobalMax, window))

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api", h.RateLimit("api", h.Cfg.RateAPIMax, window))

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.RateLimit("register", h.Cfg.RateRegisterMax, time.Hour), h.Register)
		auth.POST("/login", h.RateLimit("login", h.Cfg.RateLoginMax, window), h.Login)
		auth.GET("/refresh", h.Authenticate(), h.Refresh)
		auth.POST("/logout", h.Authenticate(), h.Logout)

		for _, p := range h.Providers {
			auth.GET("/"+p.Name(), h.OAuthRedirect(p))
			auth.GET("/"+p.Name()+"/callback", h.OAuthCallback(p))
		}
	}

	users := api.Group("/users", h.Authenticate(), h.RefreshSweep())
	{
		users.GET("/me", h.Me)
		users.PUT("/me", h.UpdateMe)
		users.PUT("/me/password", h.UpdatePassword)
	}

	matches := api.Group("/matches")
	{
		matches.GET("", h.ListMatches)
		matches.GET("/:id", h.GetMatch)

		authed := matches.Group("", h.Authenticate(), h.RefreshSweep(),
			h.RateLimit("match", h.Cfg.RateMatchMax, time.Hour))
		{
			authed.POST("", h.CreateMatch)
			authed.PUT("/:id", h.UpdateMatch)
			authed.DELETE("/:id", h.DeleteMatch)
			authed.POST("/:id/join", h.JoinMatch)
			authed.POST("/:id/leave", h.LeaveMatch)
		}
	}

	return r
}
