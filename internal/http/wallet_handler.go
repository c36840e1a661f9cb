package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"raseed/internal/wallet"
)

type passCreator interface {
	CreateGroupedReceipts(ctx context.Context, groupingID string, passes []wallet.ReceiptData) (wallet.GroupResult, error)
	CreateShoppingLists(ctx context.Context, groupingID string, lists []wallet.ShoppingListData) (wallet.GroupResult, error)
}

// WalletHandler exposes the pass-issuing endpoints of the wallet service.
type WalletHandler struct {
	service passCreator
	logger  *slog.Logger
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(service passCreator, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{service: service, logger: logger}
}

// CreateGroupedPasses handles POST /create-grouped-passes.
func (h *WalletHandler) CreateGroupedPasses(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		GroupingID string               `json:"groupingId"`
		Passes     []wallet.ReceiptData `json:"passes"`
	}

	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	if payload.GroupingID == "" {
		writeError(w, http.StatusBadRequest, "groupingId is required")
		return
	}
	if len(payload.Passes) == 0 {
		writeError(w, http.StatusBadRequest, "passes must not be empty")
		return
	}

	result, err := h.service.CreateGroupedReceipts(r.Context(), payload.GroupingID, payload.Passes)
	if err != nil {
		h.writeWalletError(w, "create grouped passes", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"object_ids": result.ObjectIDs,
		"save_link":  result.SaveLink,
	})
}

// CreateShoppingLists handles POST /create-shopping-lists.
func (h *WalletHandler) CreateShoppingLists(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		GroupingID string                    `json:"groupingId"`
		Lists      []wallet.ShoppingListData `json:"lists"`
	}

	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeJSONError(w, err)
		return
	}

	if payload.GroupingID == "" {
		writeError(w, http.StatusBadRequest, "groupingId is required")
		return
	}
	if len(payload.Lists) == 0 {
		writeError(w, http.StatusBadRequest, "lists must not be empty")
		return
	}

	result, err := h.service.CreateShoppingLists(r.Context(), payload.GroupingID, payload.Lists)
	if err != nil {
		h.writeWalletError(w, "create shopping lists", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"object_ids": result.ObjectIDs,
		"save_link":  result.SaveLink,
	})
}

func (h *WalletHandler) writeWalletError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", "error", err)
	if errors.Is(err, wallet.ErrClassProvisioning) || errors.Is(err, wallet.ErrObjectCreation) {
		writeError(w, http.StatusInternalServerError, "wallet pass creation failed")
		return
	}
	writeError(w, http.StatusInternalServerError, "unexpected error")
}
