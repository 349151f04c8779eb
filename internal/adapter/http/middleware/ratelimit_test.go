package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"billpay/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func rateLimitedRouter(store *mocks.MockRateLimitStore, rule RateLimitRule) *gin.Engine {
	r := gin.New()
	r.GET("/", RateLimiter(store, "purchase", rule, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimiter_Allows(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockRateLimitStore(ctrl)
	store.EXPECT().Incr(gomock.Any(), gomock.Any(), time.Minute).Return(int64(3), nil)

	r := rateLimitedRouter(store, RateLimitRule{Limit: 5, Window: time.Minute})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimiter_Blocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockRateLimitStore(ctrl)
	store.EXPECT().Incr(gomock.Any(), gomock.Any(), time.Minute).Return(int64(6), nil)

	r := rateLimitedRouter(store, RateLimitRule{Limit: 5, Window: time.Minute})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_001")
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimiter_StoreErrorDegrades(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockRateLimitStore(ctrl)
	store.EXPECT().Incr(gomock.Any(), gomock.Any(), time.Minute).Return(int64(0), errors.New("redis down"))

	r := rateLimitedRouter(store, RateLimitRule{Limit: 5, Window: time.Minute})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
