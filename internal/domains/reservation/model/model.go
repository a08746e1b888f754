package model

import (
	"restobook/shared/model"
	"time"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	// CacheKeyPrefix namespaces every cached reservation read.
	CacheKeyPrefix = "reservation:"

	FieldID              = "id"
	FieldReference       = "reference"
	FieldRestaurantID    = "restaurant_id"
	FieldCustomerName    = "customer_name"
	FieldCustomerEmail   = "customer_email"
	FieldCustomerPhone   = "customer_phone"
	FieldReservationDate = "reservation_date"
	FieldReservationTime = "reservation_time"
	FieldPartySize       = "party_size"
	FieldStatus          = "status"
	FieldSpecialRequests = "special_requests"
)

type Reservation struct {
	ID              int64     `db:"id"               generated:"true"`
	Reference       string    `db:"reference"`
	RestaurantID    int64     `db:"restaurant_id"`
	CustomerName    string    `db:"customer_name"`
	CustomerEmail   string    `db:"customer_email"`
	CustomerPhone   string    `db:"customer_phone"`
	ReservationDate time.Time `db:"reservation_date"`
	ReservationTime string    `db:"reservation_time"`
	PartySize       int       `db:"party_size"`
	Status          Status    `db:"status"`
	SpecialRequests string    `db:"special_requests"`
	model.Metadata
}

func (r Reservation) Exists() bool {
	return r.ID != 0
}
