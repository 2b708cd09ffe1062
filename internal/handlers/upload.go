package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/recordroom/vinyl-lister/internal/models"
)

type processRequest struct {
	ParentFolderURL string `json:"parentFolderUrl"`
	DefaultCategory string `json:"defaultCategory"`
}

// HandleProcess starts a batch. JSON callers get {"sessionId": ...}; form
// posts are redirected to the UI with the session selected.
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	isJSON := strings.Contains(r.Header.Get("Content-Type"), "application/json")

	var req processRequest
	if isJSON {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			h.writeError(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
			return
		}
		req.ParentFolderURL = r.PostFormValue("parentFolderUrl")
		req.DefaultCategory = r.PostFormValue("defaultCategory")
	}

	if strings.TrimSpace(req.ParentFolderURL) == "" {
		if isJSON {
			h.writeError(w, "parentFolderUrl is required", http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	sessionID, err := h.processor.Submit(r.Context(), req.ParentFolderURL, req.DefaultCategory)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			h.writeError(w, "Invalid Folder URL", http.StatusBadRequest)
			return
		}
		h.writeErr(w, err)
		return
	}
	slog.Info("Batch submitted", "session_id", sessionID)

	if isJSON {
		h.writeJSON(w, map[string]string{"sessionId": sessionID})
		return
	}
	http.Redirect(w, r, "/?session="+url.QueryEscape(sessionID), http.StatusSeeOther)
}
