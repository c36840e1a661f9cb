package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"raseed/internal/chat"
)

type chatGateway interface {
	SendMessage(ctx context.Context, text string) (string, error)
}

// ChatHandler relays chat messages to the conversational graph.
type ChatHandler struct {
	gateway chatGateway
	logger  *slog.Logger
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(gateway chatGateway, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{gateway: gateway, logger: logger}
}

// Send handles POST /api/chat. A missing message fails with 400 before the
// gateway is invoked.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
	}

	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	if strings.TrimSpace(payload.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.gateway.SendMessage(r.Context(), payload.Message)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}
		h.logger.Error("chat relay failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reach the assistant")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
