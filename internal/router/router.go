// Package router registers the HTTP routes for the curation API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/splitlease/message-curation/internal/config"
	"github.com/splitlease/message-curation/internal/handler"
	"github.com/splitlease/message-curation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the console login endpoints and the protected
// identity endpoint. Unauthenticated operations live under /v1/auth,
// protected ones under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a bearer token (ends all sessions) or a
	// refreshToken body (ends one), so it stays outside the JWT group.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterAdmin registers the curation endpoints under /admin. Every
// route requires a valid JWT with a curator role. The two listing reads
// sit behind the Redis response cache; mutations bypass it and flush it.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, cacheCfg config.CacheConfig, rdb *redis.Client) {
	g := e.Group(
		"/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireCurator(),
	)

	cached := middleware.NewRedisCache(cacheCfg, rdb)

	// ---- Threads ----
	g.GET("/threads", h.ListThreads, cached)
	g.GET("/threads/:threadId/messages", h.GetThreadMessages, cached)
	g.DELETE("/threads/:threadId", h.DeleteThread)

	// ---- Messages ----
	g.POST("/messages", h.SendAsBot)
	g.GET("/messages/:messageId", h.GetMessage)
	g.DELETE("/messages/:messageId", h.DeleteMessage)
	g.POST("/messages/:messageId/forward", h.ForwardMessage)

	// ---- Proposals ----
	g.POST("/proposals/:proposalId/mark-documents-signed", h.MarkLeaseDocumentsSigned)

	// ---- Templates ----
	g.GET("/templates", h.ListTemplates)
}
