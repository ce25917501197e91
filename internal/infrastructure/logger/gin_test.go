package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findLog(logs []observer.LoggedEntry, msg string) *observer.LoggedEntry {
	for i := range logs {
		if logs[i].Message == msg {
			return &logs[i]
		}
	}
	return nil
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("generates an ID when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		router.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
	})

	t.Run("honors a client-supplied ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		req.Header.Set("X-Request-ID", "client-123")
		router.ServeHTTP(w, req)

		assert.Equal(t, "client-123", w.Header().Get("X-Request-ID"))
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.InfoLevel)
	zapLogger := zap.New(core)

	router := gin.New()
	router.Use(RequestID(), GinMiddleware(zapLogger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test?page=2", nil)
	req.Header.Set("X-Request-ID", "req-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	httpLog := findLog(recorded.All(), "HTTP Request")
	require.NotNil(t, httpLog)
	assert.Equal(t, zapcore.InfoLevel, httpLog.Level)

	fields := httpLog.ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/test", fields["path"])
	assert.Equal(t, "page=2", fields["query"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}

func TestGinMiddlewareLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"server error logs at error", http.StatusInternalServerError, zapcore.ErrorLevel},
		{"client error logs at warn", http.StatusNotFound, zapcore.WarnLevel},
		{"success logs at info", http.StatusOK, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)

			router := gin.New()
			router.Use(GinMiddleware(zap.New(core)))
			router.GET("/s", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/s", nil)
			router.ServeHTTP(w, req)

			httpLog := findLog(recorded.All(), "HTTP Request")
			require.NotNil(t, httpLog)
			assert.Equal(t, tt.level, httpLog.Level)
		})
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/panic", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	panicLog := findLog(recorded.All(), "Panic recovered")
	require.NotNil(t, panicLog)
	assert.Equal(t, "boom", panicLog.ContextMap()["error"])
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))

	base := zap.NewNop()
	c.Set("logger", base)
	assert.Same(t, base, GetGinLogger(c))
}
