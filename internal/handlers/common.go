package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/recordroom/vinyl-lister/internal/csvexport"
	"github.com/recordroom/vinyl-lister/internal/models"
	"github.com/recordroom/vinyl-lister/internal/storage"
)

// Processor starts batch sessions and re-runs analysis for single records.
type Processor interface {
	Submit(ctx context.Context, parentRef, defaultCategory string) (string, error)
	Reanalyze(ctx context.Context, sessionID, recordID string) (*models.AnalysisResult, error)
}

// Saver stores operator edits.
type Saver interface {
	Save(ctx context.Context, sessionID, recordID string, patch models.UserInputPatch) error
}

// ImageStreamer opens a stored photo for proxying.
type ImageStreamer interface {
	FetchImageStream(ctx context.Context, fileID string) (io.ReadCloser, string, error)
}

type Options struct {
	Store     *storage.SessionStore
	Processor Processor
	Saver     Saver
	Images    ImageStreamer
	Exporter  *csvexport.Exporter
	// StaticDir holds the browser UI. Empty disables it.
	StaticDir string
	Now       func() time.Time
}

type Handler struct {
	sessionStore *storage.SessionStore
	processor    Processor
	saver        Saver
	images       ImageStreamer
	exporter     *csvexport.Exporter
	staticDir    string
	now          func() time.Time
}

func New(opts Options) *Handler {
	if opts.Exporter == nil {
		opts.Exporter = csvexport.New(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{
		sessionStore: opts.Store,
		processor:    opts.Processor,
		saver:        opts.Saver,
		images:       opts.Images,
		exporter:     opts.Exporter,
		staticDir:    opts.StaticDir,
		now:          opts.Now,
	}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /process", h.HandleProcess)
	mux.HandleFunc("GET /status/{sessionId}", h.HandleStatus)
	mux.HandleFunc("GET /api/sessions", h.HandleSessions)
	mux.HandleFunc("POST /research/{sessionId}/{recordId}", h.HandleResearch)
	mux.HandleFunc("POST /save/{sessionId}/{recordId}", h.HandleSave)
	mux.HandleFunc("GET /csv/{sessionId}", h.HandleCSV)
	mux.HandleFunc("GET /image/{fileId}", h.HandleImage)
	mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	mux.HandleFunc("GET /", h.HandleStatic)
	return mux
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Debug(message, "code", code)
	}
	h.writeJSONStatus(w, code, errorResponse{Status: "error", Error: message})
}

// writeErr maps domain errors onto HTTP status codes.
func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		h.writeError(w, "Session not found", http.StatusNotFound)
	case errors.Is(err, models.ErrRecordNotFound):
		h.writeError(w, "Record not found", http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidInput):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrConflict):
		h.writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrAnalysisFailed),
		errors.Is(err, models.ErrHostingFailed),
		errors.Is(err, models.ErrNoImages):
		h.writeError(w, err.Error(), http.StatusBadGateway)
	default:
		h.writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*models.Session, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}
