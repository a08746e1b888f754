package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"restobook/config"
	"restobook/infras/otel/mocks"
	cacheMocks "restobook/shared/cache/mocks"
	"restobook/transport/http/middleware"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newAppMiddleware(t *testing.T, enable bool, proxies ...string) (middleware.AppMiddleware, *cacheMocks.MockRedisCache) {
	t.Helper()

	ctrl := gomock.NewController(t)
	cache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = enable
	cfg.App.RateLimiter.MaxRequests = 2
	cfg.App.RateLimiter.WindowSeconds = 60
	cfg.App.RateLimiter.TrustedProxies = proxies

	return middleware.NewAppMiddleware(mocks.NewOtel(), cfg, cache), cache
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name          string
		enable        bool
		setupMock     func(cache *cacheMocks.MockRedisCache)
		wantStatus    int
		wantRemaining string
	}{
		{
			name:       "disabled",
			enable:     false,
			setupMock:  func(_ *cacheMocks.MockRedisCache) {},
			wantStatus: http.StatusOK,
		},
		{
			name:   "first request in window",
			enable: true,
			setupMock: func(cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Incr(gomock.Any(), "limiter:192.0.2.1", 60).Return(int64(1), nil)
			},
			wantStatus:    http.StatusOK,
			wantRemaining: "1",
		},
		{
			name:   "over the limit",
			enable: true,
			setupMock: func(cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Incr(gomock.Any(), gomock.Any(), 60).Return(int64(3), nil)
			},
			wantStatus:    http.StatusTooManyRequests,
			wantRemaining: "0",
		},
		{
			name:   "redis down fails open",
			enable: true,
			setupMock: func(cache *cacheMocks.MockRedisCache) {
				cache.EXPECT().Incr(gomock.Any(), gomock.Any(), 60).Return(int64(0), errors.New("dial tcp: connection refused"))
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, cache := newAppMiddleware(t, tt.enable)
			tt.setupMock(cache)

			req := httptest.NewRequest(http.MethodGet, "/v1/restaurants", nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
			req.Header.Set("User-Agent", "booking-app")

			rec := httptest.NewRecorder()
			app.RateLimit()(http.HandlerFunc(ok)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantRemaining, rec.Header().Get("X-RateLimit-Remaining"))

			if tt.wantStatus == http.StatusTooManyRequests {
				assert.Equal(t, "60", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestRateLimit_ClientKey(t *testing.T) {
	tests := []struct {
		name       string
		proxies    []string
		remoteAddr string
		headers    map[string]string
		wantKey    string
	}{
		{
			name:       "forwarded header from untrusted peer is ignored",
			remoteAddr: "198.51.100.7:40000",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9", "X-Real-IP": "203.0.113.10"},
			wantKey:    "limiter:198.51.100.7",
		},
		{
			name:       "user agent is not part of the key",
			remoteAddr: "198.51.100.7:40000",
			headers:    map[string]string{"User-Agent": "rotating-agent-42"},
			wantKey:    "limiter:198.51.100.7",
		},
		{
			name:       "trusted proxy chain resolves to first untrusted hop",
			proxies:    []string{"192.0.2.0/24", "10.0.0.1"},
			remoteAddr: "192.0.2.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"},
			wantKey:    "limiter:203.0.113.9",
		},
		{
			name:       "spoofed leftmost hop behind trusted proxy is skipped",
			proxies:    []string{"192.0.2.0/24"},
			remoteAddr: "192.0.2.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.9"},
			wantKey:    "limiter:203.0.113.9",
		},
		{
			name:       "trusted proxy without forwarded header uses real ip",
			proxies:    []string{"192.0.2.1"},
			remoteAddr: "192.0.2.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.10"},
			wantKey:    "limiter:203.0.113.10",
		},
		{
			name:       "invalid proxy entries are skipped",
			proxies:    []string{"not-an-ip"},
			remoteAddr: "192.0.2.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9"},
			wantKey:    "limiter:192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, cache := newAppMiddleware(t, true, tt.proxies...)
			cache.EXPECT().Incr(gomock.Any(), tt.wantKey, 60).Return(int64(1), nil)

			req := httptest.NewRequest(http.MethodGet, "/v1/restaurants", nil)
			req.RemoteAddr = tt.remoteAddr

			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			rec := httptest.NewRecorder()
			app.RateLimit()(http.HandlerFunc(ok)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	app, _ := newAppMiddleware(t, false)

	echo := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")

	rec := httptest.NewRecorder()
	app.RequestID(echo).ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	app.RequestID(echo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}
