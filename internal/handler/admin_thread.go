package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ListThreads handles GET /admin/threads. Supports ?search=, ?limit= and
// ?offset=; the search term matches listing names, participant emails and
// message bodies.
func (h *AdminHandler) ListThreads(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	page, err := h.Mod.ListThreads(c.Request().Context(), actor, c.QueryParam("search"), limit, offset)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, page)
}

// GetThreadMessages handles GET /admin/threads/:threadId/messages: the
// active messages of one thread in chronological order plus the thread
// header with its listing.
func (h *AdminHandler) GetThreadMessages(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	threadID, okID := pathID(c, "threadId")
	if !okID {
		return fail(c, http.StatusBadRequest, "Invalid thread id")
	}

	out, err := h.Mod.ListThreadMessages(c.Request().Context(), actor, threadID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, out)
}

// DeleteThread handles DELETE /admin/threads/:threadId. The thread and all
// of its messages tombstone atomically.
func (h *AdminHandler) DeleteThread(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	threadID, okID := pathID(c, "threadId")
	if !okID {
		return fail(c, http.StatusBadRequest, "Invalid thread id")
	}

	if err := h.Mod.DeleteThread(c.Request().Context(), actor, threadID); err != nil {
		return failErr(c, err)
	}
	h.flushCache(c.Request().Context())
	return ok(c, http.StatusOK, echo.Map{"message": "Thread deleted successfully"})
}
