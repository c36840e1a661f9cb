package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"raseed/internal/images"
)

const maxImageUploadBytes int64 = 10 << 20

// base64Encoder is implemented by stores that can encode a saved file for
// inline delivery (local disk storage).
type base64Encoder interface {
	ToBase64(path string) (string, error)
}

// ImageHandler accepts receipt image uploads.
type ImageHandler struct {
	store  images.Store
	logger *slog.Logger
}

// NewImageHandler creates an ImageHandler.
func NewImageHandler(store images.Store, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{store: store, logger: logger}
}

// Upload handles POST /api/upload-image with a multipart field named "image".
// A missing or empty file fails with 400 before any storage call.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadBytes)
	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("image is too large (max %d bytes)", maxErr.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}

	if !images.IsAllowedExtension(header.Filename) {
		writeError(w, http.StatusBadRequest, images.ErrInvalidFileType.Error())
		return
	}

	stored, err := h.store.Save(r.Context(), file, header.Filename)
	if err != nil {
		if errors.Is(err, images.ErrInvalidFileType) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("image upload failed", "filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	if stored.SignedURL != "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "image uploaded",
			"gcs_url": stored.SignedURL,
			"object":  stored.ObjectName,
			"size":    stored.Size,
		})
		return
	}

	response := map[string]any{
		"message":   "image uploaded",
		"path":      stored.Path,
		"size":      stored.Size,
		"extension": stored.Extension,
	}

	if encoder, ok := h.store.(base64Encoder); ok {
		encoded, err := encoder.ToBase64(stored.Path)
		if err != nil {
			h.logger.Error("image encoding failed", "path", stored.Path, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to encode image")
			return
		}
		response["image_base64"] = encoded
	}

	writeJSON(w, http.StatusOK, response)
}
