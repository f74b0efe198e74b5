package http

import (
	"rps_link/internal/config"
	"rps_link/internal/http/handlers"
	"rps_link/internal/http/middleware"
	"rps_link/internal/repository"
	"rps_link/internal/service"
	"rps_link/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the routes need, built once in main.
type Deps struct {
	Config   *config.Config
	Store    repository.Store
	Games    *service.GameService
	Accounts *service.AccountService
	Hub      *ws.Hub
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	h := handlers.NewHandler(d.Games, d.Accounts)
	healthHandler := handlers.NewHealthHandler(d.Store, cfg.Store, cfg.AppVersion)

	r.Use(middleware.RequestLogger(), middleware.Metrics(), middleware.CORS(cfg.AllowedOrigin))

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, h, cfg)

	// Legacy /api routes
	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	api.GET("/health", healthHandler.Health)
	registerAPIRoutes(api, h, cfg)

	// Live game updates
	r.GET("/ws", ws.HandleWS(d.Hub, d.Games, cfg.AllowedOrigin))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	// Auth
	api.POST("/auth", h.Auth)

	// Profile
	api.GET("/me", middleware.JWT(), h.Me)
	api.PATCH("/me", middleware.JWT(), h.UpdateMe)

	// Game writes are limited per user
	gameRL := middleware.GameRateLimit(cfg.GameRateLimit, cfg.GameRateWindow)

	games := api.Group("/games", middleware.JWT())
	{
		games.POST("", gameRL, h.CreateGame)
		games.GET("/:id", h.GetGame)
		games.POST("/:id/plays", gameRL, h.SubmitMove)
		games.POST("/:id/archive", gameRL, h.ArchiveGame)
	}

	api.GET("/dashboard", middleware.JWT(), h.Dashboard)
}
