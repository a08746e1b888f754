package model

import (
	"restobook/shared/clock"
	"restobook/shared/model"
)

const (
	TableName  = "restaurants"
	EntityName = "restaurant"

	FieldID          = "id"
	FieldName        = "name"
	FieldAddress     = "address"
	FieldCuisine     = "cuisine"
	FieldOpeningTime = "opening_time"
	FieldClosingTime = "closing_time"
	FieldTotalTables = "total_tables"
	FieldImage       = "image"
)

type Restaurant struct {
	ID          int64  `db:"id"           generated:"true"`
	Name        string `db:"name"`
	Address     string `db:"address"`
	Cuisine     string `db:"cuisine"`
	OpeningTime string `db:"opening_time"`
	ClosingTime string `db:"closing_time"`
	TotalTables int    `db:"total_tables"`
	Image       string `db:"image"`
	model.Metadata
}

func (r Restaurant) Exists() bool {
	return r.ID != 0
}

// ValidHours reports whether the restaurant opens strictly before it closes.
// Malformed times are never valid.
func ValidHours(opening, closing string) bool {
	open, err := clock.Parse(opening)
	if err != nil {
		return false
	}

	closeAt, err := clock.Parse(closing)
	if err != nil {
		return false
	}

	return open < closeAt
}
