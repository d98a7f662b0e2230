package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Request Logging Middleware Tests
// =============================================================================

func serve(t *testing.T, status int, req *http.Request) string {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})

	rec := httptest.NewRecorder()
	NewRequestLoggingMiddleware(logger).Handler(handler).ServeHTTP(rec, req)
	assert.Equal(t, status, rec.Code)

	return buf.String()
}

func TestRequestLoggingMiddleware_LogsRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/files/default/0001/01/thumb_5_admin.jpg", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	req.Header.Set("User-Agent", "curl/8.5.0")

	out := serve(t, http.StatusOK, req)

	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/files/default/0001/01/thumb_5_admin.jpg")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "duration_ms=")
	assert.Contains(t, out, "ip=192.168.1.1")
	assert.Contains(t, out, "curl/8.5.0")
}

func TestRequestLoggingMiddleware_ServerErrorsLogAtWarn(t *testing.T) {
	out := serve(t, http.StatusInternalServerError, httptest.NewRequest(http.MethodGet, "/files/missing.jpg", nil))

	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "status=500")
}

func TestRequestLoggingMiddleware_SkipsProbes(t *testing.T) {
	for _, path := range []string{"/health", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			out := serve(t, http.StatusOK, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Empty(t, out)
		})
	}
}

func TestRequestLoggingMiddleware_RedactsSignatures(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/media/cache/admin/default/0001/01/a.jpg?s=0badc0de&w=1", nil)

	out := serve(t, http.StatusOK, req)

	assert.NotContains(t, out, "0badc0de")
	assert.Contains(t, out, "s=REDACTED")
	assert.Contains(t, out, "w=1")
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		rawQuery string
		expected string
	}{
		{"no query", "/files/a.jpg", "", "/files/a.jpg"},
		{"plain params", "/files/a.jpg", "v=2", "/files/a.jpg?v=2"},
		{"presigned url", "/files/a.jpg", "X-Amz-Signature=abc&X-Amz-Expires=3600", "/files/a.jpg?X-Amz-Expires=3600&X-Amz-Signature=REDACTED"},
		{"malformed query", "/files/a.jpg", "%zz", "/files/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizePath(tt.path, tt.rawQuery))
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"remote addr", nil, "10.0.0.1:5555", "10.0.0.1"},
		{"remote addr without port", nil, "10.0.0.1", "10.0.0.1"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"}, "10.0.0.1:5555", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": " 203.0.113.9 "}, "10.0.0.1:5555", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, getClientIP(req))
		})
	}
}
