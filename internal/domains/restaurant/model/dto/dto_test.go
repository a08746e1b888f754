package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"restobook/internal/domains/restaurant/model"
	"restobook/internal/domains/restaurant/model/dto"
	"restobook/shared/validator"
)

func TestCreateRestaurantRequest_Normalize(t *testing.T) {
	req := dto.CreateRestaurantRequest{OpeningTime: "09:30:00", ClosingTime: "21:00"}

	assert.NoError(t, req.Normalize())
	assert.Equal(t, "09:30", req.OpeningTime)
	assert.Equal(t, "21:00", req.ClosingTime)

	bad := dto.CreateRestaurantRequest{OpeningTime: "9h", ClosingTime: "21:00"}
	assert.Error(t, bad.Normalize())

	partial := dto.CreateRestaurantRequest{OpeningTime: "09:00", ClosingTime: "22:00:30"}
	assert.Error(t, partial.Normalize())
}

func TestCreateRestaurantRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.CreateRestaurantRequest
		wantErr string
	}{
		{
			name: "valid",
			req: dto.CreateRestaurantRequest{
				Name: "Sakura", Address: "1 Main St", Cuisine: "Japanese",
				OpeningTime: "12:00", ClosingTime: "22:00", TotalTables: 8,
			},
		},
		{
			name: "missing name",
			req: dto.CreateRestaurantRequest{
				Address: "1 Main St", Cuisine: "Japanese",
				OpeningTime: "12:00", ClosingTime: "22:00", TotalTables: 8,
			},
			wantErr: "name is required",
		},
		{
			name: "bad opening time",
			req: dto.CreateRestaurantRequest{
				Name: "Sakura", Address: "1 Main St", Cuisine: "Japanese",
				OpeningTime: "noon", ClosingTime: "22:00", TotalTables: 8,
			},
			wantErr: "opening_time must be a time of day in HH:MM format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCreateRestaurantRequest_ToModel(t *testing.T) {
	req := dto.CreateRestaurantRequest{
		Name: "Sakura", Address: "1 Main St", Cuisine: "Japanese",
		OpeningTime: "12:00", ClosingTime: "22:00", TotalTables: 8,
	}

	m := req.ToModel("admin-1")

	assert.Zero(t, m.ID)
	assert.Equal(t, "Sakura", m.Name)
	assert.Equal(t, 8, m.TotalTables)
	assert.Equal(t, "admin-1", m.CreatedBy)
	assert.Equal(t, m.CreatedAt, m.ModifiedAt)
}

func TestGetRestaurantsResponse_FromModels(t *testing.T) {
	var res dto.GetRestaurantsResponse

	res.FromModels([]model.Restaurant{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}, 21, 10)

	assert.Equal(t, 21, res.TotalData)
	assert.Equal(t, 3, res.TotalPage)
	assert.Len(t, res.Restaurants, 2)
	assert.Equal(t, "B", res.Restaurants[1].Name)
}

func TestAvailabilityResponse_FromModel(t *testing.T) {
	restaurant := model.Restaurant{ID: 4, OpeningTime: "10:00", ClosingTime: "20:00", TotalTables: 12}

	var res dto.AvailabilityResponse

	res.FromModel(restaurant, "2026-05-01", 5)
	assert.Equal(t, 7, res.Remaining)
	assert.Equal(t, "2026-05-01", res.Date)

	res.FromModel(restaurant, "2026-05-01", 15)
	assert.Equal(t, 0, res.Remaining)
}
