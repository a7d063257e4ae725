package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/bad", "/boom"} {
		serve(router, httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(entries))
	}
	want := []zapcore.Level{zapcore.DebugLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Errorf("entry %d level = %v, want %v", i, e.Level, want[i])
		}
		if e.ContextMap()["path"] == "" {
			t.Errorf("entry %d missing path", i)
		}
	}
}
