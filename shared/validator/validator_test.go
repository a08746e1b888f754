package validator_test

import (
	"strings"
	"testing"

	"restobook/shared/validator"

	"github.com/stretchr/testify/assert"
)

type bookingForm struct {
	CustomerName  string `json:"customer_name"  validate:"required,max=255"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	PartySize     int    `json:"party_size"     validate:"gte=1,lte=50"`
	Date          string `json:"date"           validate:"required,date"`
	Time          string `json:"time"           validate:"required,clock"`
	Status        string `json:"status"         validate:"omitempty,oneof=PENDING CONFIRMED"`
}

func validForm() bookingForm {
	return bookingForm{
		CustomerName:  "Ana Lima",
		CustomerEmail: "ana@example.com",
		PartySize:     4,
		Date:          "2026-12-24",
		Time:          "19:30",
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *bookingForm)
		wantErr string
	}{
		{
			name:   "valid form",
			mutate: func(_ *bookingForm) {},
		},
		{
			name:    "missing name",
			mutate:  func(f *bookingForm) { f.CustomerName = "" },
			wantErr: "customer_name is required",
		},
		{
			name:    "invalid email",
			mutate:  func(f *bookingForm) { f.CustomerEmail = "not-an-email" },
			wantErr: "customer_email must be a valid email address",
		},
		{
			name:    "party too small",
			mutate:  func(f *bookingForm) { f.PartySize = 0 },
			wantErr: "party_size must be greater than or equal to 1",
		},
		{
			name:    "party too large",
			mutate:  func(f *bookingForm) { f.PartySize = 51 },
			wantErr: "party_size must be less than or equal to 50",
		},
		{
			name:    "bad date",
			mutate:  func(f *bookingForm) { f.Date = "24/12/2026" },
			wantErr: "date must be a date in YYYY-MM-DD format",
		},
		{
			name:    "bad clock",
			mutate:  func(f *bookingForm) { f.Time = "7pm" },
			wantErr: "time must be a time of day in HH:MM format",
		},
		{
			name:   "clock with seconds",
			mutate: func(f *bookingForm) { f.Time = "19:30:00" },
		},
		{
			name:    "name too long",
			mutate:  func(f *bookingForm) { f.CustomerName = strings.Repeat("a", 256) },
			wantErr: "customer_name must be at most 255 characters",
		},
		{
			name:    "unknown status",
			mutate:  func(f *bookingForm) { f.Status = "LOST" },
			wantErr: "status must be one of PENDING CONFIRMED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			err := validator.ValidateStruct(&form)

			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			assert.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestValidateVar(t *testing.T) {
	tests := []struct {
		name    string
		field   any
		tag     string
		wantErr bool
	}{
		{name: "clock ok", field: "08:00", tag: "clock"},
		{name: "clock out of range", field: "25:00", tag: "clock", wantErr: true},
		{name: "date ok", field: "2026-02-28", tag: "date"},
		{name: "date impossible", field: "2026-02-30", tag: "date", wantErr: true},
		{name: "number in range", field: 10, tag: "gte=1,lte=100"},
		{name: "number out of range", field: 150, tag: "gte=1,lte=100", wantErr: true},
		{name: "empty required", field: "", tag: "required", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVar(tt.field, tt.tag)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "valid body",
			body: `{"customer_name":"Ana","customer_email":"ana@example.com","party_size":2,"date":"2026-12-24","time":"20:00"}`,
		},
		{
			name:    "invalid field",
			body:    `{"customer_name":"Ana","customer_email":"ana@example.com","party_size":2,"date":"2026-12-24","time":"late"}`,
			wantErr: true,
		},
		{
			name:    "malformed body",
			body:    `{"customer_name":`,
			wantErr: true,
		},
		{
			name:    "empty object",
			body:    `{}`,
			wantErr: true,
		},
		{
			name:    "no body",
			body:    ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var form bookingForm

			err := validator.Validate(strings.NewReader(tt.body), &form)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
