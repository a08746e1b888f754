package permissions_test

import (
	"net/http"
	"testing"

	"restobook/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_EmbeddedPolicy(t *testing.T) {
	policy := permissions.Get()
	require.NotNil(t, policy)
	assert.False(t, policy.Bypass)

	tests := []struct {
		name       string
		method     string
		pattern    string
		wantPublic bool
		wantRoles  []string
	}{
		{
			name:       "listing is public with trailing slash",
			method:     http.MethodGet,
			pattern:    "/v1/restaurants/",
			wantPublic: true,
		},
		{
			name:       "availability is public",
			method:     http.MethodGet,
			pattern:    "/v1/restaurants/{id}/availability",
			wantPublic: true,
		},
		{
			name:       "booking is public",
			method:     http.MethodPost,
			pattern:    "/v1/reservations/",
			wantPublic: true,
		},
		{
			name:       "lookup by reference is public",
			method:     http.MethodGet,
			pattern:    "/v1/reservations/lookup/{reference}",
			wantPublic: true,
		},
		{
			name:      "reading by numeric id is staff only",
			method:    http.MethodGet,
			pattern:   "/v1/reservations/{id}",
			wantRoles: []string{"admin", "staff"},
		},
		{
			name:      "listing reservations is staff only",
			method:    http.MethodGet,
			pattern:   "/v1/reservations/",
			wantRoles: []string{"admin", "staff"},
		},
		{
			name:      "status change is staff only",
			method:    http.MethodPut,
			pattern:   "/v1/reservations/{id}/status",
			wantRoles: []string{"admin", "staff"},
		},
		{
			name:      "live feed is staff only",
			method:    http.MethodGet,
			pattern:   "/v1/restaurants/{id}/live",
			wantRoles: []string{"admin", "staff"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint, ok := policy.Lookup(tt.method, tt.pattern)
			require.True(t, ok)

			assert.Equal(t, tt.wantPublic, endpoint.Public)
			assert.Equal(t, tt.wantRoles, endpoint.Roles)
		})
	}
}

func TestPolicy_Lookup(t *testing.T) {
	policy := permissions.New(false,
		permissions.Endpoint{Method: "get", Path: "/v1/restaurants/", Public: true},
		permissions.Endpoint{Method: http.MethodDelete, Path: "/v1/restaurants/{id}", Roles: []string{"admin"}},
	)

	_, ok := policy.Lookup(http.MethodGet, "/v1/restaurants")
	assert.True(t, ok, "method is upper-cased and trailing slash ignored")

	_, ok = policy.Lookup(http.MethodPost, "/v1/restaurants")
	assert.False(t, ok)

	_, ok = policy.Lookup(http.MethodDelete, "/v1/restaurants/{id}/")
	assert.True(t, ok)

	assert.Equal(t, 2, policy.Len())
}

func TestEndpoint_Allows(t *testing.T) {
	staffOnly := permissions.Endpoint{Roles: []string{"admin", "staff"}}

	assert.True(t, staffOnly.Allows("staff"))
	assert.True(t, staffOnly.Allows("admin"))
	assert.False(t, staffOnly.Allows("customer"))
	assert.False(t, staffOnly.Allows(""))

	assert.True(t, permissions.Endpoint{}.Allows("customer"))
}

func TestParse(t *testing.T) {
	policy, err := permissions.Parse([]byte(`{
		"bypass": true,
		"endpoints": [
			{"method": "GET", "path": "/v1/reservations/{id}", "public": true},
			{"method": "TRACE", "path": "/v1/reservations", "public": true}
		]
	}`))
	require.NoError(t, err)

	assert.True(t, policy.Bypass)
	assert.Equal(t, 1, policy.Len())

	_, err = permissions.Parse([]byte(`{"endpoints": [`))
	assert.Error(t, err)
}
