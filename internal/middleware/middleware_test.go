package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newEngine(logger *zap.Logger, origins string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), CORS(origins), Logger(logger))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })
	return r
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	r := newEngine(zap.NewNop(), "*")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := w.Header().Get(HeaderRequestID)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestCORS(t *testing.T) {
	r := newEngine(zap.NewNop(), "http://localhost:3000")

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSWildcard(t *testing.T) {
	r := newEngine(zap.NewNop(), "*")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Vary"))
}

func TestOriginPolicy(t *testing.T) {
	p := newOriginPolicy(" https://party.example/ , http://localhost:3000")
	assert.Equal(t, "https://party.example", p.allowOrigin("https://party.example"))
	assert.Equal(t, "http://localhost:3000", p.allowOrigin("http://localhost:3000"))
	assert.Empty(t, p.allowOrigin("http://localhost:3001"))

	assert.Equal(t, "*", newOriginPolicy("").allowOrigin("http://x"))
}

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newEngine(zap.New(core), "*")

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	entries := logs.FilterMessage("request").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Equal(t, "/ping", fields["path"])
		assert.NotEmpty(t, fields["request_id"])
	}
}
