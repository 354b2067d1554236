package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/handler/http/response"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/cron"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/jwt"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/sse"
	"github.com/bpo-ops/ops-backend-go/internal/pkg/storage"
	"github.com/go-chi/chi/v5"
)

const keepaliveInterval = 30 * time.Second

// Pinger is satisfied by *database.DB.
type Pinger interface {
	Healthy(ctx context.Context) error
}

// JobReporter is satisfied by *cron.Scheduler.
type JobReporter interface {
	Status() []cron.JobStatus
}

type SystemHandler interface {
	Events(w http.ResponseWriter, r *http.Request)
	Files(w http.ResponseWriter, r *http.Request)
	Health(w http.ResponseWriter, r *http.Request)
}

type systemHandlerImpl struct {
	hub     *sse.Hub
	storage storage.FileStorage
	db      Pinger
	jobs    JobReporter
}

func NewSystemHandler(hub *sse.Hub, fileStorage storage.FileStorage, db Pinger, jobs JobReporter) SystemHandler {
	return &systemHandlerImpl{hub: hub, storage: fileStorage, db: db, jobs: jobs}
}

// Events streams the caller's task events. EventSource cannot send headers, so the router also accepts the
// access token as ?jwt=.
func (h *systemHandlerImpl) Events(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(claims.UserID)
	defer cleanup()

	sse.Event{Event: "connected", Data: map[string]string{"status": "connected", "user_id": claims.UserID}}.WriteTo(w)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if _, err := event.WriteTo(w); err != nil {
				slog.Warn("SSE write failed", "user_id", claims.UserID, "error", err)
				return
			}
			flusher.Flush()
		case now := <-keepalive.C:
			sse.Event{Event: "ping", Data: map[string]int64{"timestamp": now.Unix()}}.WriteTo(w)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// Files serves stored documents under /files/*.
func (h *systemHandlerImpl) Files(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" {
		response.NotFound(w, "File not found")
		return
	}

	rc, err := h.storage.Download(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			response.NotFound(w, "File not found")
			return
		}
		slog.Error("File download failed", "path", key, "error", err)
		response.BadRequest(w, "Invalid file path", nil)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+path.Base(key)+`"`)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, rc)
}

type healthStatus struct {
	Status   string           `json:"status"`
	Database string           `json:"database"`
	Events   sse.Stats        `json:"events"`
	Jobs     []cron.JobStatus `json:"jobs,omitempty"`
	Time     time.Time        `json:"time"`
}

func (h *systemHandlerImpl) Health(w http.ResponseWriter, r *http.Request) {
	status := healthStatus{Status: "ok", Database: "ok", Events: h.hub.Stats(), Time: time.Now().UTC()}
	if h.jobs != nil {
		status.Jobs = h.jobs.Status()
	}
	code := http.StatusOK
	if err := h.db.Healthy(r.Context()); err != nil {
		slog.Error("Health check failed", "error", err)
		status.Status = "degraded"
		status.Database = "unreachable"
		code = http.StatusServiceUnavailable
	}
	response.Raw(w, code, status)
}
