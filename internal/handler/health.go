package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// healthTimeout bounds the dependency checks of one health request.
const healthTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PendingCounter reports the queue backlog. Satisfied by *worker.Worker and
// *streams.Consumer.
type PendingCounter interface {
	Pending(ctx context.Context) (int64, error)
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status   string       `json:"status"`
	Database string       `json:"database"`
	Queue    *QueueStatus `json:"queue,omitempty"`
}

type QueueStatus struct {
	Transport string `json:"transport"`
	Status    string `json:"status"`
	Pending   int64  `json:"pending"`
}

// HealthHandler reports whether the database and the thumbnail queue are
// reachable.
type HealthHandler struct {
	db        Pinger
	queue     PendingCounter
	transport string
	logger    *slog.Logger
}

// NewHealthHandler creates a health handler. queue may be nil when no
// consumer runs in this process.
func NewHealthHandler(db Pinger, queue PendingCounter, transport string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		queue:     queue,
		transport: transport,
		logger:    logger,
	}
}

// RegisterRoutes registers the health route on mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
}

// Health responds 200 when every dependency is reachable and 503 otherwise.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := HealthStatus{Status: "ok", Database: "ok"}

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("health check: database unreachable", "error", err)
		status.Status = "unavailable"
		status.Database = "unavailable"
	}

	if h.queue != nil {
		queue := &QueueStatus{Transport: h.transport, Status: "ok"}
		pending, err := h.queue.Pending(ctx)
		if err != nil {
			h.logger.Error("health check: queue unreachable", "transport", h.transport, "error", err)
			status.Status = "unavailable"
			queue.Status = "unavailable"
		}
		queue.Pending = pending
		status.Queue = queue
	}

	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
