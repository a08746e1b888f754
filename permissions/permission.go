// Package permissions holds the embedded route policy: which endpoints are
// public and which staff roles may call the rest.
package permissions

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var policyData []byte

type Endpoint struct {
	Method string   `json:"method"`
	Path   string   `json:"path"`
	Public bool     `json:"public"`
	Roles  []string `json:"roles"`
}

// Allows reports whether role may call the endpoint. An endpoint without
// roles accepts any authenticated caller.
func (e Endpoint) Allows(role string) bool {
	return len(e.Roles) == 0 || slices.Contains(e.Roles, role)
}

type Policy struct {
	// Bypass turns role checks off entirely, tokens are still verified.
	Bypass bool

	endpoints map[string]Endpoint
}

type policyFile struct {
	Bypass    bool       `json:"bypass"`
	Endpoints []Endpoint `json:"endpoints"`
}

func New(bypass bool, endpoints ...Endpoint) *Policy {
	policy := &Policy{
		Bypass:    bypass,
		endpoints: make(map[string]Endpoint, len(endpoints)),
	}

	for _, endpoint := range endpoints {
		endpoint.Method = strings.ToUpper(endpoint.Method)
		policy.endpoints[key(endpoint.Method, endpoint.Path)] = endpoint
	}

	return policy
}

// Lookup takes a chi route pattern; "/v1/restaurants/" and "/v1/restaurants"
// resolve to the same endpoint.
func (p *Policy) Lookup(method, pattern string) (Endpoint, bool) {
	endpoint, ok := p.endpoints[key(method, pattern)]

	return endpoint, ok
}

func (p *Policy) Len() int {
	return len(p.endpoints)
}

func key(method, path string) string {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	return method + " " + path
}

var knownMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
}

// Parse decodes a policy document and drops entries with an unknown method.
func Parse(data []byte) (*Policy, error) {
	var file policyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err //nolint:wrapcheck
	}

	endpoints := make([]Endpoint, 0, len(file.Endpoints))

	for _, endpoint := range file.Endpoints {
		if !slices.Contains(knownMethods, strings.ToUpper(endpoint.Method)) {
			log.Warn().Str("method", endpoint.Method).Str("path", endpoint.Path).Msg("Ignoring permission with unknown method")

			continue
		}

		endpoints = append(endpoints, endpoint)
	}

	return New(file.Bypass, endpoints...), nil
}

func Get() *Policy {
	policy, err := Parse(policyData)
	if err != nil {
		log.Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", policy.Len()).Msg("Successfully loaded embedded permissions")

	return policy
}
