// internal/routes/api.go
package routes

import (
	"net/http"

	"swipevault/internal/handlers"
	"swipevault/internal/middleware"
	"swipevault/internal/rerank"
	"swipevault/internal/services"
	"swipevault/internal/unfurl"

	"github.com/gin-gonic/gin"
)

// Services holds every service instance the API depends on.
type Services struct {
	AuthService       *services.AuthService
	LinksService      *services.LinksService
	IngestService     *services.IngestService
	EngagementService *services.EngagementService
	FeedService       *services.FeedService
}

// APIRouter wires handlers, middleware, and services into the gin engine.
type APIRouter struct {
	AuthHandler       *handlers.AuthHandler
	LinksHandler      *handlers.LinksHandler
	UploadHandler     *handlers.UploadHandler
	UnfurlHandler     *handlers.UnfurlHandler
	EngagementHandler *handlers.EngagementHandler
	FeedHandler       *handlers.FeedHandler

	AuthMiddleware *middleware.AuthMiddleware

	Services *Services
}

// NewAPIRouter constructs every handler from its service dependency.
func NewAPIRouter(svc *Services, authMiddleware *middleware.AuthMiddleware, fetcher *unfurl.Fetcher) *APIRouter {
	return &APIRouter{
		AuthHandler:       handlers.NewAuthHandler(svc.AuthService),
		LinksHandler:      handlers.NewLinksHandler(svc.LinksService, svc.IngestService),
		UploadHandler:     handlers.NewUploadHandler(svc.IngestService),
		UnfurlHandler:     handlers.NewUnfurlHandler(fetcher),
		EngagementHandler: handlers.NewEngagementHandler(svc.EngagementService),
		FeedHandler:       handlers.NewFeedHandler(svc.FeedService),
		AuthMiddleware:    authMiddleware,
		Services:          svc,
	}
}

// SetupRoutes mounts every route group under /api/v1.
func SetupRoutes(router *gin.Engine, apiRouter *APIRouter) {
	router.Use(middleware.GlobalErrorHandler())

	router.GET("/health", healthCheck)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimit())
	{
		auth.POST("/signup", apiRouter.AuthHandler.Signup)
		auth.POST("/login", apiRouter.AuthHandler.Login)
	}

	authenticated := v1.Group("")
	authenticated.Use(apiRouter.AuthMiddleware.RequireAuth())
	{
		authenticated.GET("/auth/me", apiRouter.AuthHandler.Me)
		authenticated.POST("/auth/logout", apiRouter.AuthHandler.Logout)

		authenticated.POST("/links", apiRouter.LinksHandler.Add)
		authenticated.GET("/links", apiRouter.LinksHandler.List)
		authenticated.PATCH("/links/:id", apiRouter.LinksHandler.Patch)
		authenticated.DELETE("/links/:id", apiRouter.LinksHandler.Delete)

		authenticated.POST("/upload", apiRouter.UploadHandler.AddImage)
		authenticated.PUT("/upload", apiRouter.UploadHandler.BulkAdd)

		authenticated.POST("/unfurl", middleware.UnfurlRateLimit(), apiRouter.UnfurlHandler.Preview)

		authenticated.POST("/engagement", middleware.EngagementRateLimit(), apiRouter.EngagementHandler.Ingest)

		authenticated.GET("/feed", middleware.FeedRateLimit(), apiRouter.FeedHandler.Get)
	}

	router.NoRoute(middleware.NotFoundHandler())
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "swipevault",
	})
}
