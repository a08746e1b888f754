package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"restobook/config"
	"restobook/infras/otel"
	"restobook/infras/s3"
	reservationModel "restobook/internal/domains/reservation/model"
	reservationRepo "restobook/internal/domains/reservation/repository"
	"restobook/internal/domains/restaurant/model"
	"restobook/internal/domains/restaurant/model/dto"
	"restobook/internal/domains/restaurant/repository"
	"restobook/shared"
	"restobook/shared/background"
	"restobook/shared/cache"
	"restobook/shared/constant"
	gDto "restobook/shared/dto"
	"restobook/shared/failure"
	"restobook/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetRestaurant    = "restaurant:get"
	cacheGetAllRestaurant = "restaurant:get_all"
	cacheCountRestaurant  = "restaurant:count"
)

const (
	errInvalidHours = "opening_time must be before closing_time"
	errEmptyCuisine = "cuisine is required"
)

type Restaurant interface {
	Create(ctx context.Context, req dto.CreateRestaurantRequest) (dto.RestaurantResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRestaurantsResponse, error)
	SearchByCuisine(ctx context.Context, req gDto.QueryParams, cuisine string) (dto.GetRestaurantsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id int64) (dto.RestaurantResponse, error)
	Update(ctx context.Context, req dto.UpdateRestaurantRequest, id int64) (dto.RestaurantResponse, error)
	Delete(ctx context.Context, id int64) error
	UploadImage(ctx context.Context, req dto.UploadImageRequest, id int64) (dto.RestaurantResponse, error)
	Availability(ctx context.Context, id int64, date string) (dto.AvailabilityResponse, error)
}

type serviceImpl struct {
	repo            repository.Restaurant
	reservationRepo reservationRepo.Reservation
	cfg             *config.Config
	cache           cache.RedisCache
	otel            otel.Otel
	s3              s3.S3
	tasks           *background.Group
}

func New(repo repository.Restaurant, reservationRepo reservationRepo.Reservation, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3, tasks *background.Group) Restaurant {
	return &serviceImpl{
		repo:            repo,
		reservationRepo: reservationRepo,
		cfg:             cfg,
		cache:           cache,
		otel:            otel,
		s3:              s3,
		tasks:           tasks,
	}
}

func notFound(id int64) error {
	return failure.NotFoundByID("restaurant", id) // nolint:wrapcheck
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRestaurantRequest) (res dto.RestaurantResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = req.Normalize(); err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	if !model.ValidHours(req.OpeningTime, req.ClosingTime) {
		return res, failure.BadRequestFromString(errInvalidHours) // nolint:wrapcheck
	}

	restaurant := req.ToModel(shared.ActorFromContext(ctx))

	restaurant.ID, err = s.repo.Insert(ctx, restaurant)
	if err != nil {
		log.Error().Err(err).Msg("failed to create restaurant")

		return res, fmt.Errorf("failed to create restaurant: %w", err)
	}

	res.FromModel(restaurant)

	s.tasks.Go(ctx, "restaurant.invalidate", func(c context.Context) {
		shared.InvalidateCaches(c, s.cache, cacheGetAllRestaurant)
		shared.InvalidateCaches(c, s.cache, cacheCountRestaurant)
	})

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRestaurantsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRestaurant, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for restaurants")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get restaurants")

		return res, fmt.Errorf("failed to get restaurants: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	s.tasks.Go(ctx, "restaurant.cache", func(c context.Context) {
		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save restaurants to cache")
		}
	})

	return res, nil
}

func (s *serviceImpl) SearchByCuisine(ctx context.Context, req gDto.QueryParams, cuisine string) (res dto.GetRestaurantsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SearchByCuisine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cuisine = strings.TrimSpace(cuisine)
	if cuisine == constant.Empty {
		return res, failure.BadRequestFromString(errEmptyCuisine) // nolint:wrapcheck
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldCuisine,
				Value:    cuisine,
				Operator: gDto.FilterOperatorIEq,
				Table:    model.TableName,
			},
		},
	}

	return s.GetAll(ctx, req, filter)
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountRestaurant, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count restaurants")

		return res, fmt.Errorf("failed to count restaurants: %w", err)
	}

	s.tasks.Go(ctx, "restaurant.cache", func(c context.Context) {
		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save restaurant count to cache")
		}
	})

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id int64) (res dto.RestaurantResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetRestaurant, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for restaurant")

		return res, nil
	}

	restaurant, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(restaurant)

	s.tasks.Go(ctx, "restaurant.cache", func(c context.Context) {
		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save restaurant to cache")
		}
	})

	return res, nil
}

func (s *serviceImpl) find(ctx context.Context, id int64) (model.Restaurant, error) {
	restaurant, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("failed to get restaurant")

		return restaurant, fmt.Errorf("failed to get restaurant: %w", err)
	}

	if !restaurant.Exists() {
		return restaurant, notFound(id)
	}

	return restaurant, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRestaurantRequest, id int64) (res dto.RestaurantResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = req.Normalize(); err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	if !model.ValidHours(req.OpeningTime, req.ClosingTime) {
		return res, failure.BadRequestFromString(errInvalidHours) // nolint:wrapcheck
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check restaurant existence")

		return res, fmt.Errorf("failed to check restaurant existence: %w", err)
	}

	if !exist {
		return res, notFound(id)
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, shared.ActorFromContext(ctx)), filter); err != nil {
		log.Error().Err(err).Msg("failed to update restaurant")

		return res, fmt.Errorf("failed to update restaurant: %w", err)
	}

	s.invalidate(ctx, id)

	updated, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(updated)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id int64) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	restaurant, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete restaurant")

		return fmt.Errorf("failed to delete restaurant: %w", err)
	}

	s.invalidate(ctx, id)

	s.tasks.Go(ctx, "restaurant.cleanup", func(c context.Context) {
		// reservations were removed by the cascade
		shared.InvalidateCaches(c, s.cache, reservationModel.CacheKeyPrefix)

		s.deleteImage(c, restaurant.Image)
	})

	return nil
}

func (s *serviceImpl) UploadImage(ctx context.Context, req dto.UploadImageRequest, id int64) (res dto.RestaurantResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UploadImage")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	restaurant, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	objectKey := path.Join(model.EntityName, fmt.Sprint(id), uuid.NewString()+path.Ext(req.Image.Filename))

	url, err := s.s3.Upload(ctx, s3.Object{
		Key:         objectKey,
		ContentType: req.Image.Header.Get(constant.RequestHeaderContentType),
		Body:        req.ImageFile,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to upload restaurant image")

		return res, fmt.Errorf("failed to upload image: %w", err)
	}

	fields := map[string]any{
		model.FieldImage:         url,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: shared.ActorFromContext(ctx),
	}

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to store restaurant image")

		if delErr := s.s3.Delete(context.WithoutCancel(ctx), objectKey); delErr != nil {
			log.Error().Err(delErr).Str("objectKey", objectKey).Msg("failed to remove orphaned image")
		}

		return res, fmt.Errorf("failed to update restaurant image: %w", err)
	}

	s.invalidate(ctx, id)

	go s.deleteImage(context.WithoutCancel(ctx), restaurant.Image)

	restaurant.Image = url
	res.FromModel(restaurant)

	return res, nil
}

func (s *serviceImpl) deleteImage(ctx context.Context, url string) {
	if url == constant.Empty {
		return
	}

	objectKey := s.s3.ObjectKeyFromURL(url)
	if objectKey == constant.Empty {
		log.Warn().Str("url", url).Msg("image is not stored in the configured bucket")

		return
	}

	if err := s.s3.Delete(ctx, objectKey); err != nil {
		log.Error().Err(err).Str("objectKey", objectKey).Msg("failed to delete previous restaurant image")
	}
}

func (s *serviceImpl) Availability(ctx context.Context, id int64, date string) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Availability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = time.Parse(constant.DateOnlyFormat, date); err != nil {
		return res, failure.BadRequestFromString("date must be a date in YYYY-MM-DD format") // nolint:wrapcheck
	}

	restaurant, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	reserved, err := s.reservationRepo.ReservedSeats(ctx, id, date)
	if err != nil {
		log.Error().Err(err).Msg("failed to sum reserved seats")

		return res, fmt.Errorf("failed to compute availability: %w", err)
	}

	res.FromModel(restaurant, date, reserved)

	return res, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id int64) {
	s.tasks.Go(ctx, "restaurant.invalidate", func(c context.Context) {
		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRestaurant, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete restaurant cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllRestaurant)
		shared.InvalidateCaches(c, s.cache, cacheCountRestaurant)
	})
}
