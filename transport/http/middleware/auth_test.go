package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"restobook/config"
	"restobook/infras/jwt"
	"restobook/infras/otel/mocks"
	"restobook/permissions"
	"restobook/shared"
	"restobook/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiKey = "internal-key"

func newRouter(t *testing.T) (http.Handler, jwt.JWT) {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.APIKey = apiKey
	cfg.JWT.AccessSecret = "test-secret"
	cfg.JWT.Issuer = "restobook"
	cfg.JWT.AccessExpireMin = 5

	jwtService := jwt.New(cfg)

	policy := permissions.New(false,
		permissions.Endpoint{Method: http.MethodGet, Path: "/v1/restaurants", Public: true},
		permissions.Endpoint{Method: http.MethodPost, Path: "/v1/restaurants", Roles: []string{"admin", "staff"}},
		permissions.Endpoint{Method: http.MethodDelete, Path: "/v1/restaurants/{id}", Roles: []string{"admin"}},
	)

	auth := middleware.NewAuthRoleMiddleware(jwtService, mocks.NewOtel(), policy, cfg)

	actor := func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(shared.ActorFromContext(r.Context())))
	}

	mux := chi.NewRouter()
	mux.Group(func(r chi.Router) {
		r.Use(auth.APIKey)
		r.Use(auth.Auth)
		r.Use(auth.RBAC)

		r.Route("/v1", func(v1 chi.Router) {
			v1.Route("/restaurants", func(restaurants chi.Router) {
				restaurants.Get("/", actor)
				restaurants.Post("/", actor)
				restaurants.Delete("/{id}", actor)
				restaurants.Put("/{id}", actor)
			})
		})
	})

	return mux, jwtService
}

func TestAuthRole(t *testing.T) {
	router, jwtService := newRouter(t)

	staffToken, err := jwtService.Issue("staff-1", "staff@example.com", "staff")
	require.NoError(t, err)

	guestToken, err := jwtService.Issue("diner-1", "diner@example.com", "customer")
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		target     string
		header     map[string]string
		wantStatus int
		wantActor  string
	}{
		{
			name:       "public route without a token",
			method:     http.MethodGet,
			target:     "/v1/restaurants/",
			wantStatus: http.StatusOK,
			wantActor:  "guest",
		},
		{
			name:       "staff route without a token",
			method:     http.MethodPost,
			target:     "/v1/restaurants/",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "staff route with a malformed header",
			method:     http.MethodPost,
			target:     "/v1/restaurants/",
			header:     map[string]string{"Authorization": "Token abc"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "staff route with a forged token",
			method:     http.MethodPost,
			target:     "/v1/restaurants/",
			header:     map[string]string{"Authorization": "Bearer not.a.jwt"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "staff route with a staff token",
			method:     http.MethodPost,
			target:     "/v1/restaurants/",
			header:     map[string]string{"Authorization": "Bearer " + staffToken},
			wantStatus: http.StatusOK,
			wantActor:  "staff-1",
		},
		{
			name:       "token from the query string",
			method:     http.MethodPost,
			target:     "/v1/restaurants/?access_token=" + staffToken,
			wantStatus: http.StatusOK,
			wantActor:  "staff-1",
		},
		{
			name:       "role not allowed",
			method:     http.MethodPost,
			target:     "/v1/restaurants/",
			header:     map[string]string{"Authorization": "Bearer " + guestToken},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin only route with a staff token",
			method:     http.MethodDelete,
			target:     "/v1/restaurants/9",
			header:     map[string]string{"Authorization": "Bearer " + staffToken},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "route missing from the policy accepts any verified role",
			method:     http.MethodPut,
			target:     "/v1/restaurants/9",
			header:     map[string]string{"Authorization": "Bearer " + guestToken},
			wantStatus: http.StatusOK,
			wantActor:  "diner-1",
		},
		{
			name:       "route missing from the policy still needs a token",
			method:     http.MethodPut,
			target:     "/v1/restaurants/9",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "internal api key skips auth",
			method:     http.MethodDelete,
			target:     "/v1/restaurants/9",
			header:     map[string]string{"X-API-Key": apiKey},
			wantStatus: http.StatusOK,
			wantActor:  "internal",
		},
		{
			name:       "wrong api key",
			method:     http.MethodDelete,
			target:     "/v1/restaurants/9",
			header:     map[string]string{"X-API-Key": "guess"},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			for key, value := range tt.header {
				req.Header.Set(key, value)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantActor != "" {
				assert.Equal(t, tt.wantActor, rec.Body.String())
			}
		})
	}
}
