package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func publicFormRouter(limiter gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/public/forms/:token", limiter, func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func getForm(router *gin.Engine, ip string) int {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/public/forms/tok", nil)
	req.RemoteAddr = ip + ":12345"
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_AllowsNormalRequests(t *testing.T) {
	rl := NewRateLimiter(10, 10) // 10 rps, burst 10
	router := publicFormRouter(rl.Middleware())

	if code := getForm(router, "192.168.1.1"); code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, code)
	}
}

func TestRateLimit_BlocksExcessiveRequests(t *testing.T) {
	rl := NewRateLimiter(1, 2) // 1 rps, burst 2
	router := publicFormRouter(rl.Middleware())

	// Send burst+1 requests rapidly, last one should be blocked
	var lastCode int
	for i := 0; i < 5; i++ {
		lastCode = getForm(router, "10.0.0.1")
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("expected status %d after burst exceeded, got %d", http.StatusTooManyRequests, lastCode)
	}
}

func TestRateLimit_IndependentPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 1) // 1 rps, burst 1
	router := publicFormRouter(rl.Middleware())

	// First IP uses its burst
	if code := getForm(router, "10.0.0.1"); code != http.StatusOK {
		t.Errorf("IP1 first request: expected %d, got %d", http.StatusOK, code)
	}

	// Second IP should still have its own burst
	if code := getForm(router, "10.0.0.2"); code != http.StatusOK {
		t.Errorf("IP2 first request: expected %d, got %d", http.StatusOK, code)
	}
}

func TestPublicFormRateLimit_DefaultBurst(t *testing.T) {
	router := publicFormRouter(PublicFormRateLimit())

	// The configured burst passes; the request after it is rejected.
	for i := 0; i < PublicFormBurst; i++ {
		if code := getForm(router, "172.16.0.9"); code != http.StatusOK {
			t.Fatalf("request %d within burst: expected %d, got %d", i+1, http.StatusOK, code)
		}
	}
	if code := getForm(router, "172.16.0.9"); code != http.StatusTooManyRequests {
		t.Errorf("request past burst: expected %d, got %d", http.StatusTooManyRequests, code)
	}
}
