package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
)

// =============================================================================
// Test Helpers
// =============================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type fakeQueue struct {
	pending int64
	err     error
}

func (q fakeQueue) Pending(context.Context) (int64, error) { return q.pending, q.err }

func getHealth(t *testing.T, h *HealthHandler) (int, HealthStatus) {
	t.Helper()
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec.Code, body
}

// =============================================================================
// Health Tests
// =============================================================================

func TestHealth(t *testing.T) {
	tests := []struct {
		name         string
		db           Pinger
		queue        PendingCounter
		wantCode     int
		wantStatus   string
		wantDatabase string
		wantQueue    *QueueStatus
	}{
		{
			name:         "healthy without queue",
			db:           fakePinger{},
			wantCode:     http.StatusOK,
			wantStatus:   "ok",
			wantDatabase: "ok",
		},
		{
			name:         "healthy with backlog",
			db:           fakePinger{},
			queue:        fakeQueue{pending: 12},
			wantCode:     http.StatusOK,
			wantStatus:   "ok",
			wantDatabase: "ok",
			wantQueue:    &QueueStatus{Transport: "redis", Status: "ok", Pending: 12},
		},
		{
			name:         "database down",
			db:           fakePinger{err: errors.New("connection refused")},
			queue:        fakeQueue{},
			wantCode:     http.StatusServiceUnavailable,
			wantStatus:   "unavailable",
			wantDatabase: "unavailable",
			wantQueue:    &QueueStatus{Transport: "redis", Status: "ok"},
		},
		{
			name:         "queue down",
			db:           fakePinger{},
			queue:        fakeQueue{err: errors.New("NOGROUP")},
			wantCode:     http.StatusServiceUnavailable,
			wantStatus:   "unavailable",
			wantDatabase: "ok",
			wantQueue:    &QueueStatus{Transport: "redis", Status: "unavailable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := getHealth(t, NewHealthHandler(tt.db, tt.queue, "redis", discardLogger()))

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantDatabase, body.Database)
			assert.Equal(t, tt.wantQueue, body.Queue)
		})
	}
}

// =============================================================================
// Error Response Tests
// =============================================================================

func TestErrorCodeToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrorCodeToHTTPStatus(domain.EINVALID))
	assert.Equal(t, http.StatusNotFound, ErrorCodeToHTTPStatus(domain.ENOTFOUND))
	assert.Equal(t, http.StatusNotImplemented, ErrorCodeToHTTPStatus(domain.ENOTIMPL))
	assert.Equal(t, http.StatusInternalServerError, ErrorCodeToHTTPStatus(domain.EINTERNAL))
	assert.Equal(t, http.StatusInternalServerError, ErrorCodeToHTTPStatus(""))
}

func TestErrorResponse_DoesNotExposeInternalDetails(t *testing.T) {
	err := domain.Internal(errors.New("pq: password authentication failed"), "repository.find_media", "failed to load media")

	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest(http.MethodGet, "/health", nil), discardLogger(), err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "repository.find_media")

	var body JSONError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.EINTERNAL, body.Error.Code)
}

func TestErrorResponse_Unsupported(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest(http.MethodGet, "/", nil), discardLogger(),
		domain.Unsupported("thumbnail.static.private_url", "static icons have no private url"))

	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	var body JSONError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.ENOTIMPL, body.Error.Code)
	assert.Equal(t, "static icons have no private url", body.Error.Message)
}

func TestNotFoundResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFoundResponse(rec, httptest.NewRequest(http.MethodGet, "/files/missing.jpg", nil), discardLogger())

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
