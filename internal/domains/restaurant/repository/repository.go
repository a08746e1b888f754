package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"restobook/infras/otel"
	"restobook/infras/postgres"
	"restobook/internal/domains/restaurant/model"
	gDto "restobook/shared/dto"
	gRepo "restobook/shared/repository"
)

type Restaurant interface {
	Insert(ctx context.Context, model model.Restaurant) (int64, error)
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Restaurant, error)
	// GetForUpdate must run inside postgres.Transactor.WithinTx to hold the lock.
	GetForUpdate(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Restaurant, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Restaurant, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Restaurant]
}

func New(db *postgres.Connection, otel otel.Otel) Restaurant {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Restaurant](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
