package restaurant

import (
	"net/http"

	"restobook/infras/otel"
	"restobook/internal/domains/restaurant/model"
	"restobook/internal/domains/restaurant/model/dto"
	"restobook/internal/domains/restaurant/service"
	"restobook/shared"
	"restobook/shared/constant"
	gDto "restobook/shared/dto"
	"restobook/shared/failure"
	"restobook/shared/validator"
	"restobook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	queryParamCuisine = "cuisine"
	queryParamName    = "name"
	queryParamDate    = "date"
)

type Handler struct {
	service service.Restaurant
	otel    otel.Otel
}

func New(service service.Restaurant, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/restaurants", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRestaurant)
		routerGroup.Get("/", handler.GetRestaurants)
		routerGroup.Get("/search", handler.SearchRestaurants)
		routerGroup.Get("/{id}", handler.GetRestaurantByID)
		routerGroup.Put("/{id}", handler.UpdateRestaurant)
		routerGroup.Delete("/{id}", handler.DeleteRestaurant)
		routerGroup.Post("/{id}/image", handler.UploadImage)
		routerGroup.Get("/{id}/availability", handler.GetAvailability)
	})
}

// CreateRestaurant registers a restaurant.
// @Summary Create a restaurant
// @Description Create a restaurant with its operating hours and table count.
// @Tags Restaurant
// @Accept json
// @Produce json
// @Param request body dto.CreateRestaurantRequest true "Create Restaurant Request"
// @Success 201 {object} response.Data[dto.RestaurantResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants [post]
// @Security BearerAuth
func (handler *Handler) CreateRestaurant(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRestaurant")
	defer scope.End()

	req := dto.CreateRestaurantRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create restaurant")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Restaurant created by " + shared.ActorFromContext(ctx))

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetRestaurants lists restaurants.
// @Summary List restaurants
// @Description List restaurants with paging and optional cuisine or name filters.
// @Tags Restaurant
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param cuisine query string false "Cuisine, case-insensitive exact match"
// @Param name query string false "Name contains"
// @Success 200 {object} response.Data[dto.GetRestaurantsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants [get]
func (handler *Handler) GetRestaurants(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRestaurants")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	cuisine := r.URL.Query().Get(queryParamCuisine)
	name := r.URL.Query().Get(queryParamName)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if cuisine != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldCuisine,
			Operator: gDto.FilterOperatorIEq,
			Value:    cuisine,
			Table:    model.TableName,
		})
	}

	if name != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldName,
			Operator: gDto.FilterOperatorLike,
			Value:    name,
			Table:    model.TableName,
		})
	}

	restaurants, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get restaurants")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, restaurants)
}

// SearchRestaurants finds restaurants serving a cuisine.
// @Summary Search restaurants by cuisine
// @Tags Restaurant
// @Produce json
// @Param cuisine query string true "Cuisine, case-insensitive"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetRestaurantsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/search [get]
func (handler *Handler) SearchRestaurants(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SearchRestaurants")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	restaurants, err := handler.service.SearchByCuisine(ctx, queryParams, r.URL.Query().Get(queryParamCuisine))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to search restaurants")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, restaurants)
}

// GetRestaurantByID returns one restaurant.
// @Summary Get a restaurant
// @Tags Restaurant
// @Produce json
// @Param id path int true "Restaurant ID"
// @Success 200 {object} response.Data[dto.RestaurantResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{id} [get]
func (handler *Handler) GetRestaurantByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRestaurantByID")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	restaurant, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Int64("id", id).Msg("failed to get restaurant")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, restaurant)
}

// UpdateRestaurant replaces the editable fields of a restaurant.
// @Summary Update a restaurant
// @Tags Restaurant
// @Accept json
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param request body dto.UpdateRestaurantRequest true "Update Restaurant Request"
// @Success 200 {object} response.Data[dto.RestaurantResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{id} [put]
// @Security BearerAuth
func (handler *Handler) UpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRestaurant")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	req := dto.UpdateRestaurantRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Update(ctx, req, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update restaurant")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Restaurant updated by " + shared.ActorFromContext(ctx))

	response.WithJSON(w, http.StatusOK, res)
}

// DeleteRestaurant removes a restaurant together with its reservations.
// @Summary Delete a restaurant
// @Tags Restaurant
// @Param id path int true "Restaurant ID"
// @Success 204
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteRestaurant")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete restaurant")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Restaurant deleted by " + shared.ActorFromContext(ctx))

	response.WithNoContent(w)
}

// UploadImage stores the restaurant's cover image.
// @Summary Upload a restaurant image
// @Tags Restaurant
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param image formData file true "PNG, JPEG or WEBP image, up to 2 MB"
// @Success 200 {object} response.Data[dto.RestaurantResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{id}/image [post]
// @Security BearerAuth
func (handler *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadImage")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(w, failure.BadRequest(err))

		return
	}

	file, fileHeader, err := r.FormFile(constant.FormImage)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get image from form")

		response.WithError(w, failure.BadRequest(err))

		return
	}
	defer file.Close()

	req := dto.UploadImageRequest{
		Image:     fileHeader,
		ImageFile: file,
	}

	if err := validator.ValidateStruct(&req); err != nil {
		response.WithError(w, err)

		return
	}

	res, err := handler.service.UploadImage(ctx, req, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upload restaurant image")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Restaurant image uploaded by " + shared.ActorFromContext(ctx))

	response.WithJSON(w, http.StatusOK, res)
}

// GetAvailability reports remaining capacity for a day.
// @Summary Restaurant availability
// @Description Total tables, seats held by active reservations and what remains on the given date.
// @Tags Restaurant
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.AvailabilityResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/restaurants/{id}/availability [get]
func (handler *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailability")
	defer scope.End()

	id, err := shared.ParseID(chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.WithError(w, err)

		return
	}

	availability, err := handler.service.Availability(ctx, id, r.URL.Query().Get(queryParamDate))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get availability")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, availability)
}
