package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/splitlease/message-curation/internal/service"
)

type forwardReq struct {
	RecipientEmail string `json:"recipientEmail"`
}

type sendAsBotReq struct {
	ThreadID      uint64 `json:"threadId"`
	MessageBody   string `json:"messageBody"`
	RecipientType string `json:"recipientType"`
	TemplateName  string `json:"templateName"`
}

// GetMessage handles GET /admin/messages/:messageId. Deleted messages are
// returned too; the console shows tombstones.
func (h *AdminHandler) GetMessage(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	messageID, okID := pathID(c, "messageId")
	if !okID {
		return fail(c, http.StatusBadRequest, "Invalid message id")
	}

	det, err := h.Mod.GetMessage(c.Request().Context(), actor, messageID)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, det)
}

// DeleteMessage handles DELETE /admin/messages/:messageId.
func (h *AdminHandler) DeleteMessage(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	messageID, okID := pathID(c, "messageId")
	if !okID {
		return fail(c, http.StatusBadRequest, "Invalid message id")
	}

	if err := h.Mod.DeleteMessage(c.Request().Context(), actor, messageID); err != nil {
		return failErr(c, err)
	}
	h.flushCache(c.Request().Context())
	return ok(c, http.StatusOK, echo.Map{"message": "Message deleted successfully"})
}

// ForwardMessage handles POST /admin/messages/:messageId/forward. The body
// may name a recipient; otherwise the configured support mailbox receives
// the message. Delivery failure aborts the operation and the message row
// stays untouched.
func (h *AdminHandler) ForwardMessage(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	messageID, okID := pathID(c, "messageId")
	if !okID {
		return fail(c, http.StatusBadRequest, "Invalid message id")
	}
	var req forwardReq
	_ = c.Bind(&req) // empty body means default recipient

	if err := h.Mod.ForwardMessage(c.Request().Context(), actor, messageID, req.RecipientEmail); err != nil {
		return failErr(c, err)
	}
	h.flushCache(c.Request().Context())
	return ok(c, http.StatusOK, echo.Map{"message": "Message forwarded successfully"})
}

// SendAsBot handles POST /admin/messages: posts a Split Bot message into a
// thread and notifies the chosen participant. Notification failures do not
// fail the request; the created message is returned either way.
func (h *AdminHandler) SendAsBot(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req sendAsBotReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid body")
	}
	if req.ThreadID == 0 || strings.TrimSpace(req.MessageBody) == "" {
		return fail(c, http.StatusBadRequest, "threadId and messageBody are required")
	}
	if req.RecipientType != "guest" {
		req.RecipientType = "host"
	}

	det, err := h.Mod.SendAsBot(c.Request().Context(), actor, service.SendAsBotInput{
		ThreadID:      req.ThreadID,
		MessageBody:   req.MessageBody,
		RecipientType: req.RecipientType,
		TemplateName:  req.TemplateName,
	})
	if err != nil {
		return failErr(c, err)
	}
	h.flushCache(c.Request().Context())
	return ok(c, http.StatusCreated, det)
}
