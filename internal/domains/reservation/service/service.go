package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strconv"

	"restobook/config"
	"restobook/infras/otel"
	"restobook/infras/postgres"
	"restobook/internal/domains/reservation/model"
	"restobook/internal/domains/reservation/model/dto"
	"restobook/internal/domains/reservation/repository"
	restaurantModel "restobook/internal/domains/restaurant/model"
	restaurantRepo "restobook/internal/domains/restaurant/repository"
	"restobook/shared"
	"restobook/shared/background"
	"restobook/shared/cache"
	"restobook/shared/constant"
	gDto "restobook/shared/dto"
	"restobook/shared/event"
	"restobook/shared/failure"
	"restobook/shared/realtime"
	"restobook/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetReservation    = model.CacheKeyPrefix + "get"
	cacheGetAllReservation = model.CacheKeyPrefix + "get_all"
	cacheCountReservation  = model.CacheKeyPrefix + "count"
)

const (
	errOutsideHours      = "reservation time is outside restaurant operating hours"
	errNoTables          = "no tables available for the requested party size"
	errInvalidTransition = "invalid status transition"
	errEmptyUpdate       = "update request cannot be empty"
	errUnknownReference  = "reservation not found"
)

type Reservation interface {
	Create(ctx context.Context, req dto.CreateReservationRequest) (dto.ReservationResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetReservationsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id int64) (dto.ReservationResponse, error)
	// GetByReference is the customer-facing lookup. Unknown and malformed
	// references both answer 404.
	GetByReference(ctx context.Context, reference string) (dto.ReservationResponse, error)
	Update(ctx context.Context, req dto.UpdateReservationRequest, id int64) (dto.ReservationResponse, error)
	UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, id int64) (dto.ReservationResponse, error)
	Delete(ctx context.Context, id int64) error
}

type serviceImpl struct {
	repo           repository.Reservation
	restaurantRepo restaurantRepo.Restaurant
	transactor     postgres.Transactor
	cfg            *config.Config
	cache          cache.RedisCache
	otel           otel.Otel
	publisher      event.Publisher
	tasks          *background.Group
}

func New(
	repo repository.Reservation,
	restaurantRepo restaurantRepo.Restaurant,
	transactor postgres.Transactor,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	publisher event.Publisher,
	tasks *background.Group,
) Reservation {
	return &serviceImpl{
		repo:           repo,
		restaurantRepo: restaurantRepo,
		transactor:     transactor,
		cfg:            cfg,
		cache:          cache,
		otel:           otel,
		publisher:      publisher,
		tasks:          tasks,
	}
}

func notFound(id int64) error {
	return failure.NotFoundByID("reservation", id) // nolint:wrapcheck
}

// Create books a table. The restaurant row stays locked until the insert
// commits, so concurrent bookings for one restaurant are serialized.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reservation, err := req.ToModel(shared.ActorFromContext(ctx))
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		return s.book(ctx, &reservation)
	})
	if err != nil {
		log.Error().Err(err).Int64("restaurant_id", reservation.RestaurantID).Msg("failed to create reservation")

		return res, err
	}

	res.FromModel(reservation)

	s.tasks.Go(ctx, "reservation.invalidate", func(c context.Context) {
		shared.InvalidateCaches(c, s.cache, cacheGetAllReservation)
		shared.InvalidateCaches(c, s.cache, cacheCountReservation)
	})

	s.publish(ctx, event.ReservationCreated, reservation, constant.Empty)

	return res, nil
}

func (s *serviceImpl) book(ctx context.Context, reservation *model.Reservation) error {
	restaurantID := reservation.RestaurantID

	restaurant, err := s.restaurantRepo.GetForUpdate(ctx, shared.FilterByID(restaurantID, restaurantModel.FieldID, restaurantModel.TableName))
	if err != nil {
		return fmt.Errorf("failed to lock restaurant: %w", err)
	}

	if !restaurant.Exists() {
		return failure.NotFoundByID("restaurant", restaurantID) // nolint:wrapcheck
	}

	open, err := model.WithinOperatingHours(restaurant.OpeningTime, restaurant.ClosingTime, reservation.ReservationTime)
	if err != nil {
		return fmt.Errorf("failed to check operating hours: %w", err)
	}

	if !open {
		return failure.BadRequestFromString(errOutsideHours) // nolint:wrapcheck
	}

	reserved, err := s.repo.ReservedSeats(ctx, restaurantID, reservation.ReservationDate.Format(constant.DateOnlyFormat))
	if err != nil {
		return fmt.Errorf("failed to sum reserved seats: %w", err)
	}

	if !model.HasCapacity(restaurant.TotalTables, reserved, reservation.PartySize) {
		return failure.Conflict(errNoTables) // nolint:wrapcheck
	}

	reservation.ID, err = s.repo.Insert(ctx, *reservation)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllReservation, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for reservations")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservations")

		return res, fmt.Errorf("failed to get reservations: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	s.tasks.Go(ctx, "reservation.cache", func(c context.Context) {
		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservations to cache")
		}
	})

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountReservation, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	s.tasks.Go(ctx, "reservation.cache", func(c context.Context) {
		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservation count to cache")
		}
	})

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetReservation, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for reservation")

		return res, nil
	}

	reservation, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(reservation)

	s.tasks.Go(ctx, "reservation.cache", func(c context.Context) {
		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservation to cache")
		}
	})

	return res, nil
}

func (s *serviceImpl) GetByReference(ctx context.Context, reference string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByReference")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	parsed, err := uuid.Parse(reference)
	if err != nil {
		return res, failure.NotFound(errUnknownReference) // nolint:wrapcheck
	}

	reservation, err := s.repo.Get(ctx, gDto.FilterGroup{Filters: []any{
		gDto.Filter{
			Field:    model.FieldReference,
			Value:    parsed.String(),
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		},
	}})
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation by reference")

		return res, fmt.Errorf("failed to get reservation: %w", err)
	}

	if !reservation.Exists() {
		return res, failure.NotFound(errUnknownReference) // nolint:wrapcheck
	}

	res.FromModel(reservation)

	return res, nil
}

func (s *serviceImpl) find(ctx context.Context, id int64) (model.Reservation, error) {
	reservation, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to get reservation")

		return reservation, fmt.Errorf("failed to get reservation: %w", err)
	}

	if !reservation.Exists() {
		return reservation, notFound(id)
	}

	return reservation, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateReservationRequest, id int64) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.Empty() {
		return res, failure.BadRequestFromString(errEmptyUpdate) // nolint:wrapcheck
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check reservation existence")

		return res, fmt.Errorf("failed to check reservation existence: %w", err)
	}

	if !exist {
		return res, notFound(id)
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, shared.ActorFromContext(ctx)), filter); err != nil {
		log.Error().Err(err).Msg("failed to update reservation")

		return res, fmt.Errorf("failed to update reservation: %w", err)
	}

	s.invalidate(ctx, id)

	updated, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(updated)

	return res, nil
}

// UpdateStatus moves a reservation along its lifecycle. The row is locked
// while the transition is checked, so concurrent changes apply one after
// the other. Repeating the current status succeeds without writing.
func (s *serviceImpl) UpdateStatus(ctx context.Context, req dto.UpdateStatusRequest, id int64) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UpdateStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	target, err := model.ParseStatus(req.Status)
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	var (
		reservation model.Reservation
		previous    model.Status
	)

	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		reservation, previous, err = s.transition(ctx, id, target)

		return err
	})
	if err != nil {
		return res, err
	}

	if previous != target {
		s.invalidate(ctx, id)
		s.publish(ctx, event.ReservationStatusChanged, reservation, previous)
	}

	res.FromModel(reservation)

	return res, nil
}

func (s *serviceImpl) transition(ctx context.Context, id int64, target model.Status) (model.Reservation, model.Status, error) {
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	reservation, err := s.repo.GetForUpdate(ctx, filter)
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to lock reservation")

		return reservation, "", fmt.Errorf("failed to lock reservation: %w", err)
	}

	if !reservation.Exists() {
		return reservation, "", notFound(id)
	}

	previous := reservation.Status
	if previous == target {
		return reservation, previous, nil
	}

	if !model.CanTransition(previous, target) {
		return reservation, previous, failure.Conflict(errInvalidTransition) // nolint:wrapcheck
	}

	reservation.Status = target
	reservation.ModifiedAt = timezone.Now()
	reservation.ModifiedBy = shared.ActorFromContext(ctx)

	fields := map[string]any{
		model.FieldStatus:        target,
		constant.FieldModifiedAt: reservation.ModifiedAt,
		constant.FieldModifiedBy: reservation.ModifiedBy,
	}

	if err = s.repo.Update(ctx, fields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update reservation status")

		return reservation, previous, fmt.Errorf("failed to update reservation status: %w", err)
	}

	return reservation, previous, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reservation, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete reservation")

		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	s.invalidate(ctx, id)
	s.publish(ctx, event.ReservationDeleted, reservation, constant.Empty)

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id int64) {
	s.tasks.Go(ctx, "reservation.invalidate", func(c context.Context) {
		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetReservation, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete reservation cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllReservation)
		shared.InvalidateCaches(c, s.cache, cacheCountReservation)
	})
}

// publish never fails the caller; broker errors are only logged.
func (s *serviceImpl) publish(ctx context.Context, eventType event.Type, reservation model.Reservation, previous model.Status) {
	s.tasks.Go(ctx, "reservation.publish", func(c context.Context) {
		envelope, err := event.New(
			eventType,
			strconv.FormatInt(reservation.ID, 10),
			realtime.RestaurantTopic(reservation.RestaurantID),
			model.NewEvent(reservation, previous),
		)
		if err != nil {
			log.Error().Err(err).Msg("failed to build reservation event")

			return
		}

		if err := s.publisher.Publish(c, envelope); err != nil {
			log.Error().Err(err).Str("type", string(eventType)).Int64("reservation_id", reservation.ID).Msg("failed to publish reservation event")
		}
	})
}
