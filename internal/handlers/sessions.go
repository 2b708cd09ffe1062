package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/recordroom/vinyl-lister/internal/models"
)

// HandleStatus returns the full session for polling.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := h.getSessionOrError(w, r.PathValue("sessionId"))
	if !ok {
		return
	}
	h.writeJSON(w, session)
}

type sessionSummary struct {
	ID        string               `json:"id"`
	Status    models.SessionStatus `json:"status"`
	Records   int                  `json:"records"`
	Saved     int                  `json:"saved"`
	CreatedAt time.Time            `json:"createdAt"`
}

// HandleSessions lists every session, newest first.
func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessionStore.GetAll()
	list := make([]sessionSummary, 0, len(sessions))
	for _, s := range sessions {
		sum := sessionSummary{ID: s.ID, Status: s.Status, Records: len(s.Records), CreatedAt: s.CreatedAt}
		for _, rec := range s.Records {
			if rec.Status == models.RecordSaved {
				sum.Saved++
			}
		}
		list = append(list, sum)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	h.writeJSON(w, list)
}
