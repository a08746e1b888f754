package live

import (
	"net/http"
	"slices"

	"restobook/config"
	"restobook/infras/otel"
	restaurantService "restobook/internal/domains/restaurant/service"
	"restobook/shared"
	"restobook/shared/constant"
	"restobook/shared/realtime"
	"restobook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	readBufferSize  = 1024
	writeBufferSize = 1024
)

// Handler upgrades staff dashboards to a websocket feed of reservation
// events for one restaurant.
type Handler struct {
	hub        realtime.Hub
	restaurant restaurantService.Restaurant
	otel       otel.Otel
	upgrader   websocket.Upgrader
}

func New(cfg *config.Config, hub realtime.Hub, restaurant restaurantService.Restaurant, otel otel.Otel) Handler {
	origins := cfg.Realtime.AllowedOrigins

	return Handler{
		hub:        hub,
		restaurant: restaurant,
		otel:       otel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(origins) == 0 {
					return true
				}

				return slices.Contains(origins, constant.Asterix) || slices.Contains(origins, origin)
			},
		},
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/restaurants/{id}/live", handler.Subscribe)
}

// Subscribe streams reservation events of a restaurant.
// @Summary Live reservation feed
// @Description Upgrades to a websocket. Every reservation created, status change or deletion for the restaurant is pushed as a JSON event envelope.
// @Tags Restaurant
// @Param id path int true "Restaurant ID"
// @Param access_token query string false "Bearer token for clients that cannot set headers"
// @Success 101
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/restaurants/{id}/live [get]
// @Security BearerAuth
func (handler *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Subscribe")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	if _, err := handler.restaurant.Get(ctx, id); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	conn, err := handler.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		log.Error().Err(err).Int64("restaurant_id", id).Msg("failed to upgrade websocket")

		return
	}

	topic := realtime.RestaurantTopic(id)
	handler.hub.Attach(conn, topic)

	log.Info().
		Str("topic", topic).
		Int("subscribers", handler.hub.Subscribers(topic)).
		Str("actor", shared.ActorFromContext(ctx)).
		Msg("live feed attached")
}
