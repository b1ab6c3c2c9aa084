package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func rateLimitedRouter(h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", h, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return r
}

func hit(r *gin.Engine, remoteAddr string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_LocalBlocksAfterLimit(t *testing.T) {
	r := rateLimitedRouter(RateLimiter(nil, RateLimitConfig{Limit: 3, Window: time.Hour}))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(r, "192.168.1.1:1234"), "request %d", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "192.168.1.1:1234"))

	// other clients have their own bucket
	assert.Equal(t, http.StatusOK, hit(r, "192.168.1.2:1234"))
}

func TestRateLimiter_DefaultConfig(t *testing.T) {
	cfg := RateLimitConfig{}.withDefaults()
	assert.Equal(t, defaultRateLimit, cfg.Limit)
	assert.Equal(t, defaultRateWindow, cfg.Window)

	r := rateLimitedRouter(RateLimiter(nil, RateLimitConfig{}))
	assert.Equal(t, http.StatusOK, hit(r, "192.168.1.1:1234"))
}

func TestRateLimiter_Redis(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	key := "ratelimit:/login:192.168.1.1"
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, time.Minute).SetVal(true)
	mock.ExpectIncr(key).SetVal(2)
	mock.ExpectIncr(key).SetVal(3)

	r := rateLimitedRouter(RateLimiter(rdb, RateLimitConfig{Limit: 2, Window: time.Minute}))

	assert.Equal(t, http.StatusOK, hit(r, "192.168.1.1:1234"))
	assert.Equal(t, http.StatusOK, hit(r, "192.168.1.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "192.168.1.1:1234"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_RedisErrorFailsOpen(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	mock.ExpectIncr("ratelimit:/login:192.168.1.1").SetErr(errors.New("connection refused"))

	r := rateLimitedRouter(RateLimiter(rdb, RateLimitConfig{Limit: 1, Window: time.Minute}))
	assert.Equal(t, http.StatusOK, hit(r, "192.168.1.1:1234"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
