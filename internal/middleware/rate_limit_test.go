package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"paycompliance/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitByIP(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RateLimitByIP(1, 2))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// another client has its own bucket
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestKeyedRateLimiter_ReusesLimiter(t *testing.T) {
	l := middleware.NewKeyedRateLimiter(1, 1)
	assert.Same(t, l.GetLimiter("a"), l.GetLimiter("a"))
	assert.NotSame(t, l.GetLimiter("a"), l.GetLimiter("b"))
}

func TestRateLimitByUser(t *testing.T) {
	user := ""
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user != "" {
			c.Set(middleware.ContextUserID, user)
		}
		c.Next()
	})
	r.Use(middleware.RateLimitByUser(1, 1))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(u string) int {
		user = u
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("emp-1"))
	assert.Equal(t, http.StatusTooManyRequests, call("emp-1"))
	assert.Equal(t, http.StatusOK, call("emp-2"))

	// anonymous traffic is left to the IP limiter
	assert.Equal(t, http.StatusOK, call(""))
	assert.Equal(t, http.StatusOK, call(""))
}
