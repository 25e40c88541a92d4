package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/html2pdf/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newLimitedRouter(cfg config.RateLimitConfig) *gin.Engine {
	r := gin.New()
	r.POST("/convert", RateLimit(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/convert", nil)
	req.RemoteAddr = ip + ":40000"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimit_Disabled(t *testing.T) {
	r := newLimitedRouter(config.RateLimitConfig{RequestsPerSecond: 0, Burst: 1})

	for i := 0; i < 20; i++ {
		if code := hit(r, "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, code)
		}
	}
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	r := newLimitedRouter(config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 3})

	for i := 0; i < 3; i++ {
		if code := hit(r, "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, code)
		}
	}
	if code := hit(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", code)
	}

	// Other clients have their own bucket.
	if code := hit(r, "10.0.0.2"); code != http.StatusOK {
		t.Errorf("second client status = %d, want 200", code)
	}
}
