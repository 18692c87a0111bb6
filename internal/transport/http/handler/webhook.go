package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/maxschool-bot/internal/infrastructure/maxapi"
)

// updateDispatcher is the slice of the bot layer the webhook needs.
type updateDispatcher interface {
	Dispatch(ctx context.Context, upd *maxapi.Update) error
}

// WebhookHandler accepts platform updates. The platform retries non-2xx
// responses, so only undecodable payloads are rejected; dispatch failures are
// logged and acknowledged to avoid redelivery loops.
type WebhookHandler struct {
	dispatcher updateDispatcher
}

func NewWebhookHandler(dispatcher updateDispatcher) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher}
}

func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var upd maxapi.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid update payload")
		return
	}
	if err := h.dispatcher.Dispatch(r.Context(), &upd); err != nil {
		slog.Error("update dispatch failed", "update_type", upd.UpdateType, "err", err)
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ok"})
}
