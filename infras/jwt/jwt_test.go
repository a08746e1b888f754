package jwt_test

import (
	"context"
	"testing"
	"time"

	"restobook/config"
	"restobook/infras/jwt"

	goJWT "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = "front-desk-secret"
	cfg.JWT.Issuer = "restobook-identity"
	cfg.JWT.AccessExpireMin = 15

	return cfg
}

func TestValidateToken(t *testing.T) {
	cfg := newConfig()
	service := jwt.New(cfg)

	valid, err := service.Issue("staff-7", "host@bistro.test", "staff")
	require.NoError(t, err)

	otherIssuer := newConfig()
	otherIssuer.JWT.Issuer = "someone-else"
	foreign, err := jwt.New(otherIssuer).Issue("staff-7", "host@bistro.test", "staff")
	require.NoError(t, err)

	expired, err := goJWT.NewWithClaims(goJWT.SigningMethodHS256, jwt.Claims{
		UserID: "staff-7",
		Type:   jwt.AccessToken,
		RegisteredClaims: goJWT.RegisteredClaims{
			Issuer:    cfg.JWT.Issuer,
			ExpiresAt: goJWT.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}).SignedString([]byte(cfg.JWT.AccessSecret))
	require.NoError(t, err)

	wrongType, err := goJWT.NewWithClaims(goJWT.SigningMethodHS256, jwt.Claims{
		UserID: "staff-7",
		Type:   "refresh",
		RegisteredClaims: goJWT.RegisteredClaims{
			Issuer:    cfg.JWT.Issuer,
			ExpiresAt: goJWT.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(cfg.JWT.AccessSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid token", token: valid},
		{name: "garbage", token: "not.a.token", wantErr: jwt.ErrInvalidToken},
		{name: "foreign issuer", token: foreign, wantErr: jwt.ErrInvalidToken},
		{name: "expired", token: expired, wantErr: jwt.ErrExpiredToken},
		{name: "wrong type", token: wrongType, wantErr: jwt.ErrInvalidClaim},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(context.Background(), tt.token, jwt.AccessToken)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "staff-7", claims.UserID)
			assert.Equal(t, "staff", claims.Role)
			assert.NotEmpty(t, claims.TokenID)
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := jwt.ExtractTokenFromHeader("Bearer abc.def")
	assert.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = jwt.ExtractTokenFromHeader("")
	assert.Error(t, err)

	_, err = jwt.ExtractTokenFromHeader("Basic abc")
	assert.Error(t, err)

	_, err = jwt.ExtractTokenFromHeader("Bearer ")
	assert.Error(t, err)
}
