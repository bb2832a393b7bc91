// Package handler defines the HTTP layer: request binding, the response
// envelope and the mapping from workflow errors to status codes. All
// business decisions live in internal/service; handlers stay thin.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/splitlease/message-curation/internal/config"
	"github.com/splitlease/message-curation/internal/middleware"
	"github.com/splitlease/message-curation/internal/repository"
	"github.com/splitlease/message-curation/internal/service"
)

// AdminHandler bundles the workflow engine and the cache handle for the
// curation endpoints.
type AdminHandler struct {
	Mod      *service.Moderation
	CacheCfg config.CacheConfig
	Redis    *redis.Client
}

// NewAdminHandler constructs an AdminHandler and panics if the engine is nil.
func NewAdminHandler(mod *service.Moderation, cacheCfg config.CacheConfig, rdb *redis.Client) *AdminHandler {
	if mod == nil {
		panic("nil moderation engine passed to NewAdminHandler")
	}
	return &AdminHandler{Mod: mod, CacheCfg: cacheCfg, Redis: rdb}
}

// ok writes the success envelope every console response uses.
func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

// fail writes the error envelope.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// failErr maps a workflow error onto a status code and message. Unknown
// errors become an opaque 500 so internals never leak to the client.
func failErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, repository.ErrThreadNotFound):
		return fail(c, http.StatusNotFound, "Thread not found")
	case errors.Is(err, repository.ErrMessageNotFound):
		return fail(c, http.StatusNotFound, "Message not found")
	case errors.Is(err, repository.ErrProposalNotFound):
		return fail(c, http.StatusNotFound, "Proposal not found")
	case errors.Is(err, repository.ErrTemplateNotFound):
		return fail(c, http.StatusNotFound, "Template not found")
	case errors.Is(err, repository.ErrSplitBotMissing):
		return fail(c, http.StatusInternalServerError, "Split Bot user not found")
	case errors.Is(err, service.ErrNotificationFailed):
		return fail(c, http.StatusInternalServerError, "Failed to forward message")
	default:
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

// getActor reads the authenticated identity the JWT middleware stored on
// the context. The sub claim arrives as float64 from the JSON decoder or
// occasionally as a numeric string.
func getActor(c echo.Context) (service.Actor, error) {
	role, _ := c.Get("role").(string)
	switch v := c.Get("user_id").(type) {
	case float64:
		return service.Actor{ID: uint64(v), Role: role}, nil
	case uint64:
		return service.Actor{ID: v, Role: role}, nil
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return service.Actor{ID: n, Role: role}, nil
		}
	}
	return service.Actor{}, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// flushCache drops cached listing pages after a mutation.
func (h *AdminHandler) flushCache(ctx context.Context) {
	middleware.FlushCache(ctx, h.CacheCfg, h.Redis)
}
