package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"google.golang.org/api/googleapi"
)

// HandleImage proxies a stored photo so browsers and the image host can
// fetch it without file store credentials.
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("fileId")
	body, contentType, err := h.images.FetchImageStream(r.Context(), fileID)
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			http.Error(w, "Image not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to fetch image", "file_id", fileID, "error", err)
		http.Error(w, "Error fetching image", http.StatusInternalServerError)
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("Image stream interrupted", "file_id", fileID, "error", err)
	}
}
