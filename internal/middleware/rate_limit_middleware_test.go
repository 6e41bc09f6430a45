package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Set(key string, value interface{}, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *MockCache) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Delete(key string) error {
	return m.Called(key).Error(0)
}

func (m *MockCache) Increment(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) SetJSON(key string, value interface{}, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *MockCache) GetJSON(key string, dest interface{}) error {
	return m.Called(key, dest).Error(0)
}

func (m *MockCache) ExpireAt(key string, expiration time.Time) error {
	return m.Called(key, expiration).Error(0)
}

func (m *MockCache) TTL(key string) (time.Duration, error) {
	args := m.Called(key)
	return args.Get(0).(time.Duration), args.Error(1)
}

func rateLimitedRouter(cache *MockCache, cfg RateLimitConfig) *gin.Engine {
	router := gin.New()
	rl := NewRateLimiter(cache)
	router.GET("/ping", rl.LimitByIP(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestRateLimiter_FirstRequestSetsWindow(t *testing.T) {
	// Arrange
	cache := new(MockCache)
	cfg := RateLimitConfig{MaxRequests: 5, Window: time.Minute, KeyPrefix: "rl:test"}
	cache.On("Increment", mock.Anything).Return(int64(1), nil)
	cache.On("ExpireAt", mock.Anything, mock.AnythingOfType("time.Time")).Return(nil)
	cache.On("TTL", mock.Anything).Return(time.Minute, nil)

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rateLimitedRouter(cache, cfg).ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	cache.AssertCalled(t, "ExpireAt", mock.Anything, mock.AnythingOfType("time.Time"))
}

func TestRateLimiter_OverLimitReturns429(t *testing.T) {
	// Arrange
	cache := new(MockCache)
	cfg := RateLimitConfig{MaxRequests: 5, Window: time.Minute, KeyPrefix: "rl:test"}
	cache.On("Increment", mock.Anything).Return(int64(6), nil)
	cache.On("TTL", mock.Anything).Return(30*time.Second, nil)

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rateLimitedRouter(cache, cfg).ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	cache.AssertNotCalled(t, "ExpireAt", mock.Anything, mock.Anything)
}

func TestRateLimiter_FailsOpenOnCacheError(t *testing.T) {
	// Arrange
	cache := new(MockCache)
	cfg := RateLimitConfig{MaxRequests: 5, Window: time.Minute, KeyPrefix: "rl:test"}
	cache.On("Increment", mock.Anything).Return(int64(0), errors.New("connection refused"))

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rateLimitedRouter(cache, cfg).ServeHTTP(w, req)

	// Assert: an unreachable cache must not block traffic.
	assert.Equal(t, http.StatusOK, w.Code)
	cache.AssertNotCalled(t, "TTL", mock.Anything)
}
