package reservation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"restobook/infras/otel/mocks"
	"restobook/internal/domains/reservation/model"
	"restobook/internal/domains/reservation/model/dto"
	serviceMocks "restobook/internal/domains/reservation/service/mocks"
	"restobook/internal/handlers/reservation"
	gDto "restobook/shared/dto"
	"restobook/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const validBody = `{
	"restaurant_id": 3,
	"customer_name": "Ada Lovelace",
	"customer_email": "ada@example.com",
	"reservation_date": "2026-11-02",
	"reservation_time": "19:30",
	"party_size": 4
}`

func newRouter(t *testing.T) (*chi.Mux, *serviceMocks.MockReservation) {
	t.Helper()

	ctrl := gomock.NewController(t)
	service := serviceMocks.NewMockReservation(ctrl)

	handler := reservation.New(service, mocks.NewOtel())

	mux := chi.NewRouter()
	handler.Router(mux)

	return mux, service
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestHandler_CreateReservation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(service *serviceMocks.MockReservation)
		wantStatus int
		wantError  string
	}{
		{
			name: "created",
			body: validBody,
			setupMock: func(service *serviceMocks.MockReservation) {
				service.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req dto.CreateReservationRequest) (dto.ReservationResponse, error) {
						assert.Equal(t, int64(3), req.RestaurantID)
						assert.Equal(t, 4, req.PartySize)

						return dto.ReservationResponse{ID: 11, RestaurantID: 3, Status: string(model.StatusPending)}, nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed json",
			body:       `{"restaurant_id":`,
			setupMock:  func(_ *serviceMocks.MockReservation) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid email",
			body:       strings.Replace(validBody, "ada@example.com", "ada", 1),
			setupMock:  func(_ *serviceMocks.MockReservation) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero party size",
			body:       strings.Replace(validBody, `"party_size": 4`, `"party_size": 0`, 1),
			setupMock:  func(_ *serviceMocks.MockReservation) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "fully booked",
			body: validBody,
			setupMock: func(service *serviceMocks.MockReservation) {
				service.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(dto.ReservationResponse{}, failure.Conflict("no tables available for the requested party size"))
			},
			wantStatus: http.StatusConflict,
			wantError:  "no tables available for the requested party size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service := newRouter(t)
			tt.setupMock(service)

			rec := serve(router, http.MethodPost, "/reservations/", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantError != "" {
				var body struct {
					Error string `json:"error"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantError, body.Error)
			}
		})
	}
}

func TestHandler_GetReservations(t *testing.T) {
	t.Run("query becomes filters", func(t *testing.T) {
		router, service := newRouter(t)

		service.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetReservationsResponse, error) {
				assert.Equal(t, 2, params.Page)
				require.Len(t, filter.Filters, 4)

				fields := map[string]any{}
				for _, f := range filter.Filters {
					item, ok := f.(gDto.Filter)
					require.True(t, ok)

					fields[item.Field] = item.Value
				}

				assert.Equal(t, int64(3), fields[model.FieldRestaurantID])
				assert.Equal(t, "2026-11-02", fields[model.FieldReservationDate])
				assert.Equal(t, string(model.StatusConfirmed), fields[model.FieldStatus])
				assert.Equal(t, "ada@example.com", fields[model.FieldCustomerEmail])

				return dto.GetReservationsResponse{TotalPage: 1}, nil
			})

		rec := serve(router, http.MethodGet,
			"/reservations/?page=2&restaurant_id=3&reservation_date=2026-11-02&status=confirmed&customer_email=ada@example.com", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	badQueries := map[string]string{
		"unknown status":         "/reservations/?status=LOST",
		"malformed date":         "/reservations/?reservation_date=02-11-2026",
		"non numeric restaurant": "/reservations/?restaurant_id=abc",
	}

	for name, target := range badQueries {
		t.Run(name, func(t *testing.T) {
			router, _ := newRouter(t)

			rec := serve(router, http.MethodGet, target, "")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_GetReservationByID(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setupMock  func(service *serviceMocks.MockReservation)
		wantStatus int
	}{
		{
			name:   "found",
			target: "/reservations/7",
			setupMock: func(service *serviceMocks.MockReservation) {
				service.EXPECT().Get(gomock.Any(), int64(7)).Return(dto.ReservationResponse{ID: 7}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "missing",
			target: "/reservations/8",
			setupMock: func(service *serviceMocks.MockReservation) {
				service.EXPECT().Get(gomock.Any(), int64(8)).
					Return(dto.ReservationResponse{}, failure.NotFound("reservation not found with id: 8"))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "bad id",
			target:     "/reservations/-1",
			setupMock:  func(_ *serviceMocks.MockReservation) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service := newRouter(t)
			tt.setupMock(service)

			rec := serve(router, http.MethodGet, tt.target, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_GetReservationByReference(t *testing.T) {
	const reference = "3f1c2b9e-8a41-4d7e-9a3b-5c2d1e0f7a61"

	tests := []struct {
		name       string
		reference  string
		found      bool
		wantStatus int
	}{
		{name: "found", reference: reference, found: true, wantStatus: http.StatusOK},
		{name: "unknown", reference: "not-a-reference", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service := newRouter(t)

			if tt.found {
				service.EXPECT().GetByReference(gomock.Any(), tt.reference).
					Return(dto.ReservationResponse{ID: 7, Reference: tt.reference}, nil)
			} else {
				service.EXPECT().GetByReference(gomock.Any(), tt.reference).
					Return(dto.ReservationResponse{}, failure.NotFound("reservation not found"))
			}

			rec := serve(router, http.MethodGet, "/reservations/lookup/"+tt.reference, "")

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.found {
				assert.Contains(t, rec.Body.String(), `"reference":"`+reference+`"`)
			}
		})
	}
}

func TestHandler_UpdateReservationStatus(t *testing.T) {
	for _, body := range []string{`"CONFIRMED"`, `{"status":"CONFIRMED"}`} {
		t.Run(body, func(t *testing.T) {
			router, service := newRouter(t)

			service.EXPECT().UpdateStatus(gomock.Any(), dto.UpdateStatusRequest{Status: "CONFIRMED"}, int64(5)).
				Return(dto.ReservationResponse{ID: 5, Status: "CONFIRMED"}, nil)

			rec := serve(router, http.MethodPut, "/reservations/5/status", body)

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}

	t.Run("missing status", func(t *testing.T) {
		router, _ := newRouter(t)

		rec := serve(router, http.MethodPut, "/reservations/5/status", `{"state":"CONFIRMED"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("terminal status", func(t *testing.T) {
		router, service := newRouter(t)

		service.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), int64(5)).
			Return(dto.ReservationResponse{}, failure.Conflict("invalid status transition"))

		rec := serve(router, http.MethodPut, "/reservations/5/status", `"PENDING"`)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestHandler_DeleteReservation(t *testing.T) {
	router, service := newRouter(t)

	service.EXPECT().Delete(gomock.Any(), int64(5)).Return(nil)

	rec := serve(router, http.MethodDelete, "/reservations/5", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
