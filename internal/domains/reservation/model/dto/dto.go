package dto

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"restobook/internal/domains/reservation/model"
	"restobook/shared"
	"restobook/shared/clock"
	"restobook/shared/constant"
	gDto "restobook/shared/dto"
	gModel "restobook/shared/model"

	"github.com/google/uuid"
)

var errMissingStatus = errors.New("status is required")

type CreateReservationRequest struct {
	RestaurantID    int64  `json:"restaurant_id"    validate:"required,gt=0"`
	CustomerName    string `json:"customer_name"    validate:"required,max=100"`
	CustomerEmail   string `json:"customer_email"   validate:"required,email,max=100"`
	CustomerPhone   string `json:"customer_phone"   validate:"omitempty,max=20"`
	ReservationDate string `json:"reservation_date" validate:"required,date"`
	ReservationTime string `json:"reservation_time" validate:"required,clock"`
	PartySize       int    `json:"party_size"       validate:"required,min=1"`
	SpecialRequests string `json:"special_requests" validate:"omitempty,max=500"`
}

// ToModel builds a PENDING reservation with a fresh public reference. The
// time of day is stored as HH:MM.
func (c *CreateReservationRequest) ToModel(user string) (model.Reservation, error) {
	date, err := time.Parse(constant.DateOnlyFormat, c.ReservationDate)
	if err != nil {
		return model.Reservation{}, err
	}

	at, err := clock.Normalize(c.ReservationTime)
	if err != nil {
		return model.Reservation{}, err
	}

	return model.Reservation{
		Reference:       uuid.NewString(),
		RestaurantID:    c.RestaurantID,
		CustomerName:    c.CustomerName,
		CustomerEmail:   c.CustomerEmail,
		CustomerPhone:   c.CustomerPhone,
		ReservationDate: date,
		ReservationTime: at,
		PartySize:       c.PartySize,
		Status:          model.StatusPending,
		SpecialRequests: c.SpecialRequests,
		Metadata:        gModel.NewMetadata(user),
	}, nil
}

// UpdateReservationRequest patches contact details only. Date, time and party
// size changes go through a new reservation. Phone and special requests are
// pointers so that "" clears them while an absent field leaves them alone.
type UpdateReservationRequest struct {
	CustomerName    string  `db:"customer_name"    json:"customer_name"    validate:"omitempty,max=100"`
	CustomerEmail   string  `db:"customer_email"   json:"customer_email"   validate:"omitempty,email,max=100"`
	CustomerPhone   *string `db:"customer_phone"   json:"customer_phone"   validate:"omitempty,max=20"`
	SpecialRequests *string `db:"special_requests" json:"special_requests" validate:"omitempty,max=500"`
}

func (u UpdateReservationRequest) Empty() bool {
	return u == UpdateReservationRequest{}
}

// UpdateStatusRequest accepts {"status":"CONFIRMED"} as well as a bare
// JSON string such as "CONFIRMED".
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (u *UpdateStatusRequest) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		u.Status = bare

		return nil
	}

	var body struct {
		Status *string `json:"status"`
	}

	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}

	if body.Status == nil {
		return errMissingStatus
	}

	u.Status = *body.Status

	return nil
}

type ReservationResponse struct {
	ID              int64  `json:"id"`
	Reference       string `json:"reference"`
	RestaurantID    int64  `json:"restaurant_id"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
	ReservationDate string `json:"reservation_date"`
	ReservationTime string `json:"reservation_time"`
	PartySize       int    `json:"party_size"`
	Status          string `json:"status"`
	SpecialRequests string `json:"special_requests,omitempty"`
	gDto.Metadata
}

func (r *ReservationResponse) FromModel(model model.Reservation) {
	r.ID = model.ID
	r.Reference = model.Reference
	r.RestaurantID = model.RestaurantID
	r.CustomerName = model.CustomerName
	r.CustomerEmail = model.CustomerEmail
	r.CustomerPhone = model.CustomerPhone
	r.ReservationDate = model.ReservationDate.Format(constant.DateOnlyFormat)
	r.ReservationTime = trimSeconds(model.ReservationTime)
	r.PartySize = model.PartySize
	r.Status = string(model.Status)
	r.SpecialRequests = model.SpecialRequests
	r.Metadata.FromModel(model.Metadata)
}

func trimSeconds(value string) string {
	if normalized, err := clock.Normalize(strings.TrimSpace(value)); err == nil {
		return normalized
	}

	return value
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromModels(models []model.Reservation, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod)
	}
}
