package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"restobook/infras/otel"
	"restobook/infras/postgres"
	"restobook/internal/domains/reservation/model"
	"restobook/shared/constant"
	gDto "restobook/shared/dto"
	gRepo "restobook/shared/repository"
)

type Reservation interface {
	Insert(ctx context.Context, model model.Reservation) (int64, error)
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Reservation, error)
	// GetForUpdate must run inside postgres.Transactor.WithinTx to hold the lock.
	GetForUpdate(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Reservation, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Reservation, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	// ReservedSeats sums party sizes of every non-cancelled reservation of a
	// restaurant on date (YYYY-MM-DD).
	ReservedSeats(ctx context.Context, restaurantID int64, date string) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Reservation]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Reservation {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

func (r *repositoryImpl) ReservedSeats(ctx context.Context, restaurantID int64, date string) (int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.ReservedSeats", constant.OtelRepositoryScopeName, model.EntityName))
	defer scope.End()

	return r.Sum(ctx, model.FieldPartySize, ActiveOnDate(restaurantID, date)) //nolint:wrapcheck
}

// ActiveOnDate matches reservations that still hold tables on date.
func ActiveOnDate(restaurantID int64, date string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldRestaurantID,
				Value:    restaurantID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldReservationDate,
				Value:    date,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Value:    string(model.StatusCancelled),
				Operator: gDto.FilterOperatorNotEq,
				Table:    model.TableName,
			},
		},
	}
}
