package models

import (
	"time"

	"github.com/google/uuid"
)

// GeoData carries the map lookup result captured at registration time.
type GeoData struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	PlaceID          *string `json:"place_id,omitempty"`
	FormattedAddress *string `json:"formatted_address,omitempty"`
}

// Business is owned by an employer profile. Rows are never physically
// removed by the application; delete sets is_active=false.
type Business struct {
	ID             uuid.UUID `json:"id" db:"id"`
	EmployerID     uuid.UUID `json:"employer_id" db:"employer_id"`
	Name           string    `json:"name" db:"name"`
	Type           string    `json:"type" db:"type"`
	Email          *string   `json:"email" db:"email"`
	Phone          *string   `json:"phone" db:"phone"`
	AddressStreet  string    `json:"address_street" db:"address_street"`
	AddressCity    string    `json:"address_city" db:"address_city"`
	AddressCounty  string    `json:"address_county" db:"address_county"`
	AddressState   string    `json:"address_state" db:"address_state"`
	AddressZipcode string    `json:"address_zipcode" db:"address_zipcode"`
	GeoData        *GeoData  `json:"geo_data" db:"geo_data"`
	LogoKey        *string   `json:"-" db:"logo_key"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
