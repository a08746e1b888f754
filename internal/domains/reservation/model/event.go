package model

import "restobook/shared/constant"

// Event is the payload of every reservation event.
type Event struct {
	ReservationID   int64  `json:"reservation_id"`
	Reference       string `json:"reference"`
	RestaurantID    int64  `json:"restaurant_id"`
	Status          Status `json:"status"`
	PreviousStatus  Status `json:"previous_status,omitempty"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	ReservationDate string `json:"reservation_date"`
	ReservationTime string `json:"reservation_time"`
	PartySize       int    `json:"party_size"`
}

func NewEvent(reservation Reservation, previous Status) Event {
	return Event{
		ReservationID:   reservation.ID,
		Reference:       reservation.Reference,
		RestaurantID:    reservation.RestaurantID,
		Status:          reservation.Status,
		PreviousStatus:  previous,
		CustomerName:    reservation.CustomerName,
		CustomerEmail:   reservation.CustomerEmail,
		ReservationDate: reservation.ReservationDate.Format(constant.DateOnlyFormat),
		ReservationTime: reservation.ReservationTime,
		PartySize:       reservation.PartySize,
	}
}
