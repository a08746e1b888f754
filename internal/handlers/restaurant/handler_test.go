package restaurant_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"restobook/infras/otel/mocks"
	"restobook/internal/domains/restaurant/model"
	"restobook/internal/domains/restaurant/model/dto"
	serviceMocks "restobook/internal/domains/restaurant/service/mocks"
	"restobook/internal/handlers/restaurant"
	gDto "restobook/shared/dto"
	"restobook/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T) (*chi.Mux, *serviceMocks.MockRestaurant) {
	t.Helper()

	ctrl := gomock.NewController(t)
	service := serviceMocks.NewMockRestaurant(ctrl)

	handler := restaurant.New(service, mocks.NewOtel())

	mux := chi.NewRouter()
	handler.Router(mux)

	return mux, service
}

func serve(router http.Handler, method, target, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestHandler_CreateRestaurant(t *testing.T) {
	valid := `{"name":"Sate Khas","address":"Jl. Sabang 1","cuisine":"Indonesian","opening_time":"10:00","closing_time":"22:00","total_tables":12}`

	tests := []struct {
		name       string
		body       string
		setupMock  func(service *serviceMocks.MockRestaurant)
		wantStatus int
	}{
		{
			name: "created",
			body: valid,
			setupMock: func(service *serviceMocks.MockRestaurant) {
				service.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(dto.RestaurantResponse{ID: 1, Name: "Sate Khas"}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "bad clock",
			body:       strings.Replace(valid, `"22:00"`, `"10pm"`, 1),
			setupMock:  func(_ *serviceMocks.MockRestaurant) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no tables",
			body:       strings.Replace(valid, `"total_tables":12`, `"total_tables":0`, 1),
			setupMock:  func(_ *serviceMocks.MockRestaurant) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "closing before opening",
			body: valid,
			setupMock: func(service *serviceMocks.MockRestaurant) {
				service.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(dto.RestaurantResponse{}, failure.BadRequestFromString("opening_time must be before closing_time"))
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service := newRouter(t)
			tt.setupMock(service)

			rec := serve(router, http.MethodPost, "/restaurants/", "application/json", strings.NewReader(tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_GetRestaurants(t *testing.T) {
	router, service := newRouter(t)

	service.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRestaurantsResponse, error) {
			require.Len(t, filter.Filters, 2)

			cuisine, ok := filter.Filters[0].(gDto.Filter)
			require.True(t, ok)
			assert.Equal(t, model.FieldCuisine, cuisine.Field)
			assert.Equal(t, gDto.FilterOperatorIEq, cuisine.Operator)

			name, ok := filter.Filters[1].(gDto.Filter)
			require.True(t, ok)
			assert.Equal(t, model.FieldName, name.Field)
			assert.Equal(t, gDto.FilterOperatorLike, name.Operator)

			return dto.GetRestaurantsResponse{TotalPage: 1}, nil
		})

	rec := serve(router, http.MethodGet, "/restaurants/?cuisine=italian&name=trat", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_SearchRestaurants(t *testing.T) {
	router, service := newRouter(t)

	service.EXPECT().SearchByCuisine(gomock.Any(), gomock.Any(), "Japanese").
		Return(dto.GetRestaurantsResponse{TotalData: 2, TotalPage: 1}, nil)

	rec := serve(router, http.MethodGet, "/restaurants/search?cuisine=Japanese", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data dto.GetRestaurantsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.TotalData)
}

func TestHandler_GetAvailability(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setupMock  func(service *serviceMocks.MockRestaurant)
		wantStatus int
	}{
		{
			name:   "remaining tables",
			target: "/restaurants/4/availability?date=2026-11-02",
			setupMock: func(service *serviceMocks.MockRestaurant) {
				service.EXPECT().Availability(gomock.Any(), int64(4), "2026-11-02").
					Return(dto.AvailabilityResponse{RestaurantID: 4, TotalTables: 10, Reserved: 6, Remaining: 4}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "missing date",
			target: "/restaurants/4/availability",
			setupMock: func(service *serviceMocks.MockRestaurant) {
				service.EXPECT().Availability(gomock.Any(), int64(4), "").
					Return(dto.AvailabilityResponse{}, failure.BadRequestFromString("date must be in YYYY-MM-DD format"))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad id",
			target:     "/restaurants/x/availability?date=2026-11-02",
			setupMock:  func(_ *serviceMocks.MockRestaurant) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service := newRouter(t)
			tt.setupMock(service)

			rec := serve(router, http.MethodGet, tt.target, "", nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func imageForm(t *testing.T, field, contentType string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="front.png"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)

	_, err = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestHandler_UploadImage(t *testing.T) {
	t.Run("stored", func(t *testing.T) {
		router, service := newRouter(t)

		service.EXPECT().UploadImage(gomock.Any(), gomock.Any(), int64(2)).
			DoAndReturn(func(_ context.Context, req dto.UploadImageRequest, _ int64) (dto.RestaurantResponse, error) {
				assert.Equal(t, "front.png", req.Image.Filename)

				return dto.RestaurantResponse{ID: 2, Image: "https://cdn.example.com/restaurants/front.png"}, nil
			})

		body, contentType := imageForm(t, "image", "image/png")
		rec := serve(router, http.MethodPost, "/restaurants/2/image", contentType, body)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong field", func(t *testing.T) {
		router, _ := newRouter(t)

		body, contentType := imageForm(t, "file", "image/png")
		rec := serve(router, http.MethodPost, "/restaurants/2/image", contentType, body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not an image", func(t *testing.T) {
		router, _ := newRouter(t)

		body, contentType := imageForm(t, "image", "application/pdf")
		rec := serve(router, http.MethodPost, "/restaurants/2/image", contentType, body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_DeleteRestaurant(t *testing.T) {
	router, service := newRouter(t)

	service.EXPECT().Delete(gomock.Any(), int64(3)).Return(failure.NotFound("restaurant not found with id: 3"))

	rec := serve(router, http.MethodDelete, "/restaurants/3", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
