package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"restobook/config"
	"restobook/infras/jwt"
	"restobook/infras/otel"
	"restobook/permissions"
	"restobook/shared/constant"
	"restobook/shared/failure"
	"restobook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type internalCallerKey struct{}

// Auth verifies who is calling: a staff bearer token or the internal API key.
type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
}

// Role checks the verified caller against the route policy.
type Role interface {
	RBAC(http.Handler) http.Handler
}

type AuthRole interface {
	Auth
	Role
}

type authRoleImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	policy     *permissions.Policy
	cfg        *config.Config
}

// NewAuthRoleMiddleware expects APIKey, Auth and RBAC to be installed in that order.
func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, policy *permissions.Policy, cfg *config.Config) AuthRole {
	return &authRoleImpl{
		jwtService: jwtService,
		otel:       otel,
		policy:     policy,
		cfg:        cfg,
	}
}

func isInternalCaller(ctx context.Context) bool {
	internal, _ := ctx.Value(internalCallerKey{}).(bool)

	return internal
}

// routePattern resolves the chi pattern ahead of routing, which the policy is keyed on.
func routePattern(request *http.Request) string {
	rctx := chi.RouteContext(request.Context())
	if rctx == nil {
		return request.URL.Path
	}

	return rctx.Routes.Find(chi.NewRouteContext(), request.Method, request.URL.Path)
}

func (m *authRoleImpl) endpoint(request *http.Request) (permissions.Endpoint, bool) {
	if m.policy == nil {
		return permissions.Endpoint{}, false
	}

	return m.policy.Lookup(request.Method, routePattern(request))
}

func (m *authRoleImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "api_key.middleware")
		defer scope.End()

		apiKey := request.Header.Get(constant.RequestHeaderAPIKey)
		if apiKey == "" {
			scope.SetAttribute("http.source", "client")
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttribute("http.source", "internal")

		expected := m.cfg.App.APIKey
		if expected == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			scope.TraceError(failure.ForbiddenError)
			response.WithError(writer, failure.ForbiddenError)

			return
		}

		ctx := context.WithValue(request.Context(), internalCallerKey{}, true)
		ctx = context.WithValue(ctx, constant.ContextKeyUserID, constant.ContextInternal)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()

		if isInternalCaller(ctx) {
			next.ServeHTTP(writer, request)

			return
		}

		if endpoint, ok := m.endpoint(request); ok && endpoint.Public {
			next.ServeHTTP(writer, request)

			return
		}

		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "auth.middleware")

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.route":      routePattern(request),
			"http.method":     request.Method,
		})

		claims, err := m.verify(ctx, request)
		if err != nil {
			scope.TraceError(err)
			scope.End()
			response.WithError(writer, err)

			return
		}

		scope.End()

		ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, claims.Email)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, claims.Role)
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

func (m *authRoleImpl) verify(ctx context.Context, request *http.Request) (*jwt.Claims, error) {
	token, err := bearerToken(request)
	if err != nil {
		return nil, err
	}

	claims, err := m.jwtService.ValidateToken(ctx, token, jwt.AccessToken)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			return nil, failure.Unauthorized("Token has expired") // nolint:wrapcheck
		case errors.Is(err, jwt.ErrInvalidClaim):
			return nil, failure.Unauthorized("Invalid token claims") // nolint:wrapcheck
		case errors.Is(err, jwt.ErrInvalidToken):
			return nil, failure.Unauthorized("Invalid token") // nolint:wrapcheck
		default:
			return nil, failure.Unauthorized("Token validation failed") // nolint:wrapcheck
		}
	}

	if claims.UserID == "" {
		log.Error().Msg("JWT claims: UserID is empty")

		return nil, failure.Unauthorized("Invalid token claims") // nolint:wrapcheck
	}

	return claims, nil
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// websocket upgrades, so the access_token query parameter is accepted too.
func bearerToken(request *http.Request) (string, error) {
	authHeader := request.Header.Get(constant.RequestHeaderAuthorization)
	if authHeader == "" {
		if token := request.URL.Query().Get(constant.RequestParamAccessToken); token != "" {
			return token, nil
		}

		return "", failure.Unauthorized("Missing authorization header") // nolint:wrapcheck
	}

	token, err := jwt.ExtractTokenFromHeader(authHeader)
	if err != nil {
		return "", failure.Unauthorized("Invalid authorization header format") // nolint:wrapcheck
	}

	return token, nil
}

// RBAC lets through internal callers, public endpoints and callers whose role
// the endpoint lists. Routes missing from the policy accept any verified role.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()

		if isInternalCaller(ctx) {
			next.ServeHTTP(writer, request)

			return
		}

		if m.policy == nil {
			response.WithError(writer, failure.ForbiddenError)

			return
		}

		endpoint, _ := m.endpoint(request)
		if m.policy.Bypass || endpoint.Public {
			next.ServeHTTP(writer, request)

			return
		}

		role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
		if endpoint.Allows(role) {
			next.ServeHTTP(writer, request)

			return
		}

		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "rbac.middleware")
		scope.SetAttributes(map[string]any{
			"user_role":     role,
			"allowed_roles": endpoint.Roles,
			"reason":        "role_not_allowed",
		})
		scope.TraceError(failure.ForbiddenError)
		scope.End()

		response.WithError(writer, failure.ForbiddenError)
	})
}
