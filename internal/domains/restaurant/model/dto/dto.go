package dto

import (
	"mime/multipart"

	"restobook/internal/domains/restaurant/model"
	"restobook/shared"
	"restobook/shared/clock"
	gDto "restobook/shared/dto"
	gModel "restobook/shared/model"
)

type CreateRestaurantRequest struct {
	Name        string `json:"name"         validate:"required,max=100"`
	Address     string `json:"address"      validate:"required,max=255"`
	Cuisine     string `json:"cuisine"      validate:"required,max=50"`
	OpeningTime string `json:"opening_time" validate:"required,clock"`
	ClosingTime string `json:"closing_time" validate:"required,clock"`
	TotalTables int    `json:"total_tables" validate:"required,min=1"`
}

// Normalize trims optional seconds off the operating hours.
func (c *CreateRestaurantRequest) Normalize() error {
	return normalizeHours(&c.OpeningTime, &c.ClosingTime)
}

func (c *CreateRestaurantRequest) ToModel(user string) model.Restaurant {
	return model.Restaurant{
		Name:        c.Name,
		Address:     c.Address,
		Cuisine:     c.Cuisine,
		OpeningTime: c.OpeningTime,
		ClosingTime: c.ClosingTime,
		TotalTables: c.TotalTables,
		Metadata:    gModel.NewMetadata(user),
	}
}

// UpdateRestaurantRequest replaces every editable field, so all are required.
type UpdateRestaurantRequest struct {
	Name        string `db:"name"         json:"name"         validate:"required,max=100"`
	Address     string `db:"address"      json:"address"      validate:"required,max=255"`
	Cuisine     string `db:"cuisine"      json:"cuisine"      validate:"required,max=50"`
	OpeningTime string `db:"opening_time" json:"opening_time" validate:"required,clock"`
	ClosingTime string `db:"closing_time" json:"closing_time" validate:"required,clock"`
	TotalTables int    `db:"total_tables" json:"total_tables" validate:"required,min=1"`
}

func (u *UpdateRestaurantRequest) Normalize() error {
	return normalizeHours(&u.OpeningTime, &u.ClosingTime)
}

func normalizeHours(opening, closing *string) error {
	for _, value := range []*string{opening, closing} {
		normalized, err := clock.Normalize(*value)
		if err != nil {
			return err
		}

		*value = normalized
	}

	return nil
}

type UploadImageRequest struct {
	Image     *multipart.FileHeader `json:"image" validate:"required,mimetypes=image/png image/jpg image/jpeg image/webp,maxfilesize=2"`
	ImageFile multipart.File        `json:"-"`
}

type RestaurantResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Cuisine     string `json:"cuisine"`
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
	TotalTables int    `json:"total_tables"`
	Image       string `json:"image,omitempty"`
	gDto.Metadata
}

func (r *RestaurantResponse) FromModel(model model.Restaurant) {
	r.ID = model.ID
	r.Name = model.Name
	r.Address = model.Address
	r.Cuisine = model.Cuisine
	r.OpeningTime = model.OpeningTime
	r.ClosingTime = model.ClosingTime
	r.TotalTables = model.TotalTables
	r.Image = model.Image
	r.Metadata.FromModel(model.Metadata)
}

type GetRestaurantsResponse struct {
	Restaurants []RestaurantResponse `json:"restaurants"`
	TotalPage   int                  `json:"total_page"`
	TotalData   int                  `json:"total_data"`
}

func (r *GetRestaurantsResponse) FromModels(models []model.Restaurant, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Restaurants = make([]RestaurantResponse, len(models))
	for i, mod := range models {
		r.Restaurants[i].FromModel(mod)
	}
}

type AvailabilityResponse struct {
	RestaurantID int64  `json:"restaurant_id"`
	Date         string `json:"date"`
	OpeningTime  string `json:"opening_time"`
	ClosingTime  string `json:"closing_time"`
	TotalTables  int    `json:"total_tables"`
	Reserved     int    `json:"reserved"`
	Remaining    int    `json:"remaining"`
}

func (a *AvailabilityResponse) FromModel(model model.Restaurant, date string, reserved int) {
	a.RestaurantID = model.ID
	a.Date = date
	a.OpeningTime = model.OpeningTime
	a.ClosingTime = model.ClosingTime
	a.TotalTables = model.TotalTables
	a.Reserved = reserved
	a.Remaining = max(model.TotalTables-reserved, 0)
}
