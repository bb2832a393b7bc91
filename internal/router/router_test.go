package router

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitlease/message-curation/internal/config"
	"github.com/splitlease/message-curation/internal/handler"
	"github.com/splitlease/message-curation/internal/service"
)

func registeredRoutes(t *testing.T) map[string]bool {
	t.Helper()
	e := echo.New()
	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(config.Config{}, nil, nil), "secret")
	RegisterAdmin(e, handler.NewAdminHandler(&service.Moderation{}, config.CacheConfig{}, nil), "secret", config.CacheConfig{}, nil)

	out := make(map[string]bool)
	for _, r := range e.Routes() {
		out[r.Method+" "+r.Path] = true
	}
	return out
}

// The curation surface lives directly under /admin; clients are written
// against those paths, so the mount point is part of the contract.
func TestAdminRoutesMountedAtAdminPrefix(t *testing.T) {
	routes := registeredRoutes(t)
	for _, want := range []string{
		http.MethodPost + " /admin/messages",
		http.MethodGet + " /admin/messages/:messageId",
		http.MethodDelete + " /admin/messages/:messageId",
		http.MethodPost + " /admin/messages/:messageId/forward",
		http.MethodGet + " /admin/threads",
		http.MethodGet + " /admin/threads/:threadId/messages",
		http.MethodDelete + " /admin/threads/:threadId",
		http.MethodPost + " /admin/proposals/:proposalId/mark-documents-signed",
		http.MethodGet + " /admin/templates",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
	for path := range routes {
		assert.NotContains(t, path, "/v1/admin", "admin routes must not hide behind /v1")
	}
}

func TestAuthAndHealthRoutes(t *testing.T) {
	routes := registeredRoutes(t)
	for _, want := range []string{
		http.MethodGet + " /healthz",
		http.MethodPost + " /v1/auth/login",
		http.MethodPost + " /v1/auth/refresh",
		http.MethodPost + " /v1/auth/logout",
		http.MethodGet + " /v1/me",
	} {
		require.True(t, routes[want], "missing route %s", want)
	}
}
