package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListTemplates handles GET /admin/templates: the seeded Split Bot
// templates for the console's picker.
func (h *AdminHandler) ListTemplates(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	templates, err := h.Mod.ListTemplates(c.Request().Context(), actor)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, templates)
}
