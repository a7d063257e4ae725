package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/ficha-service/internal/config"
	"github.com/fleveque/ficha-service/internal/handler"
	"github.com/fleveque/ficha-service/internal/middleware"
	"github.com/fleveque/ficha-service/internal/service"
	"github.com/fleveque/ficha-service/internal/studio"
)

// Deps are the long-lived services the handlers need.
// In Go, we pass dependencies explicitly, no DI container.
type Deps struct {
	Studio  *studio.Studio
	Exports *service.ExportService
	Encoder handler.EncoderProbe // nil when video export is not configured
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler(deps.Encoder)
	sessionHandler := handler.NewSessionHandler(deps.Studio, cfg.Upload.MaxBytes, logger)
	exportHandler := handler.NewExportHandler(deps.Studio, deps.Exports, logger)
	adminHandler := handler.NewAdminHandler(deps.Exports, deps.Studio, logger)

	// Public endpoints (no auth)
	r.GET("/healthz", healthHandler.Healthz)

	// CORS middleware applies to the entire API group.
	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	// Gin only runs group middleware on matched routes, so preflights need
	// a route of their own. CORS answers them before this handler runs.
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	authed := api.Group("")
	authed.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	authed.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		authed.POST("/sessions", sessionHandler.Create)
		authed.GET("/sessions/:id", sessionHandler.Get)
		authed.DELETE("/sessions/:id", sessionHandler.Delete)
		authed.PUT("/sessions/:id/vehicle", sessionHandler.UpdateVehicle)
		authed.POST("/sessions/:id/photos", sessionHandler.UploadPhotos)
		authed.GET("/sessions/:id/items", sessionHandler.Items)
		authed.DELETE("/sessions/:id/items", sessionHandler.ClearItems)
		authed.GET("/sessions/:id/items/:item/preview", sessionHandler.Preview)
		authed.POST("/sessions/:id/items/:item/frame", sessionHandler.SetFrame)
		authed.POST("/sessions/:id/items/:item/pan", sessionHandler.Pan)
		authed.POST("/sessions/:id/items/:item/zoom", sessionHandler.Zoom)

		authed.POST("/sessions/:id/exports/archive", exportHandler.Archive)
		authed.POST("/sessions/:id/exports/video", exportHandler.Video)
		authed.GET("/exports/:id", exportHandler.Download)
	}

	// Admin endpoints (separate auth with admin keys)
	admin := api.Group("/admin")
	admin.Use(middleware.AdminKeyAuth(cfg.Auth.AdminKeys))
	{
		admin.GET("/stats", adminHandler.Stats)
	}
}
