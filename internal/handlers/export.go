package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/recordroom/vinyl-lister/internal/csvexport"
)

// HandleCSV downloads the saved records of a session.
func (h *Handler) HandleCSV(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r.PathValue("sessionId"))
	if !ok {
		return
	}

	data, err := h.exporter.Export(session)
	if err != nil {
		h.writeError(w, "Failed to build CSV: "+err.Error(), http.StatusInternalServerError)
		return
	}

	name := csvexport.FileName(h.now())
	w.Header().Set("Content-Type", csvexport.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write(data); err != nil {
		slog.Error("Unable to write CSV", "session_id", session.ID, "err", err)
	}
}
