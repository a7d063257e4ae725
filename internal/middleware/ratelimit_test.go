package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// withKey stands in for the auth middleware.
func withKey(c *gin.Context) {
	if k := c.GetHeader("X-API-Key"); k != "" {
		c.Set(ClientKey, k)
	}
	c.Next()
}

func get(router *gin.Engine, key, remote string) int {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	if remote != "" {
		req.RemoteAddr = remote
	}
	return serve(router, req).Code
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	router := newRouter(withKey, RateLimit(1, 2))

	for i := 0; i < 2; i++ {
		if code := get(router, "k", ""); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-API-Key", "k")
	w := serve(router, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
}

func TestRateLimit_PerKeyIsolation(t *testing.T) {
	router := newRouter(withKey, RateLimit(1, 1))

	if code := get(router, "key-a", ""); code != http.StatusOK {
		t.Errorf("key-a first: expected 200, got %d", code)
	}
	if code := get(router, "key-a", ""); code != http.StatusTooManyRequests {
		t.Errorf("key-a second: expected 429, got %d", code)
	}
	if code := get(router, "key-b", ""); code != http.StatusOK {
		t.Errorf("key-b first: expected 200, got %d", code)
	}
}

func TestRateLimit_FallsBackToClientIP(t *testing.T) {
	router := newRouter(RateLimit(1, 1))

	if code := get(router, "", "10.0.0.1:1234"); code != http.StatusOK {
		t.Errorf("first from 10.0.0.1: expected 200, got %d", code)
	}
	if code := get(router, "", "10.0.0.1:5678"); code != http.StatusTooManyRequests {
		t.Errorf("second from 10.0.0.1: expected 429, got %d", code)
	}
	if code := get(router, "", "10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("first from 10.0.0.2: expected 200, got %d", code)
	}
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	router := newRouter(withKey, RateLimit(0, 0))

	for i := 0; i < 20; i++ {
		if code := get(router, "k", ""); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
}
