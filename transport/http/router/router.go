package router

import (
	"net/http"
	"restobook/internal/handlers/live"
	"restobook/internal/handlers/reservation"
	"restobook/internal/handlers/restaurant"
	"restobook/permissions"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const apiPrefix = "/v1"

type DomainHandlers struct {
	Restaurant  restaurant.Handler
	Reservation reservation.Handler
	Live        live.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	Policy         *permissions.Policy
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route(apiPrefix, func(routerGroup chi.Router) {
		r.DomainHandlers.Restaurant.Router(routerGroup)
		r.DomainHandlers.Reservation.Router(routerGroup)
		r.DomainHandlers.Live.Router(routerGroup)
	})

	for _, route := range r.Unguarded(router) {
		log.Warn().Str("route", route).Msg("Route has no permission entry, any verified role may call it")
	}
}

// Unguarded lists "METHOD pattern" for every API route missing from the policy.
func (r *Router) Unguarded(routes chi.Routes) []string {
	var missing []string

	walk := func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, apiPrefix) {
			return nil
		}

		if r.Policy != nil {
			if _, ok := r.Policy.Lookup(method, route); ok {
				return nil
			}
		}

		missing = append(missing, method+" "+route)

		return nil
	}

	if err := chi.Walk(routes, walk); err != nil {
		log.Error().Err(err).Msg("Failed to walk routes")
	}

	slices.Sort(missing)

	return missing
}

func New(domainHandlers DomainHandlers, policy *permissions.Policy) Router {
	return Router{
		DomainHandlers: domainHandlers,
		Policy:         policy,
	}
}
