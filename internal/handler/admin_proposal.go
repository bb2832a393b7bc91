package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MarkLeaseDocumentsSigned handles POST
// /admin/proposals/:proposalId/mark-documents-signed. On success the
// response carries the updated proposal and the Split Bot announcement
// posted into its thread.
func (h *AdminHandler) MarkLeaseDocumentsSigned(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	proposalID, okID := pathID(c, "proposalId")
	if !okID {
		return fail(c, http.StatusBadRequest, "Invalid proposal id")
	}

	res, err := h.Mod.MarkLeaseDocumentsSigned(c.Request().Context(), actor, proposalID)
	if err != nil {
		return failErr(c, err)
	}
	h.flushCache(c.Request().Context())
	return ok(c, http.StatusOK, echo.Map{
		"proposal": res.Proposal,
		"message":  res.Message,
	})
}
