package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantBytes  int
		wantLevel  string
	}{
		{
			name: "implicit 200",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("hello"))
			},
			wantStatus: http.StatusOK,
			wantBytes:  5,
			wantLevel:  "INFO",
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantLevel:  "INFO",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("{}"))
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBytes:  2,
			wantLevel:  "WARN",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := chimiddleware.RequestID(Logger(captureLogger(&buf))(tt.handler))

			req := httptest.NewRequest(http.MethodGet, "/api/characters?limit=5", nil)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

			assert.Equal(t, "request completed", line["msg"])
			assert.Equal(t, tt.wantLevel, line["level"])
			assert.Equal(t, "GET", line["method"])
			assert.Equal(t, "/api/characters", line["path"])
			assert.EqualValues(t, tt.wantStatus, line["status"])
			assert.EqualValues(t, tt.wantBytes, line["bytes"])
			assert.NotEmpty(t, line["request_id"])
		})
	}
}
