package domain

import "encoding/json"

// Page is the paginated envelope returned by list endpoints.
type Page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// CatalogQuery filters catalog listings.
type CatalogQuery struct {
	Search string
	City   string
	Page   int
}

// Car is a rentable vehicle listed by a car-rental company.
type Car struct {
	ID          int64   `json:"id"`
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	Year        int     `json:"year,omitempty"`
	PricePerDay float64 `json:"price_per_day"`
	CompanyID   int64   `json:"company_id,omitempty"`
	raw         json.RawMessage
}

func (c *Car) UnmarshalJSON(data []byte) error {
	type plain Car
	return unmarshalKeepRaw(data, (*plain)(c), &c.raw)
}

func (c Car) MarshalJSON() ([]byte, error) {
	type plain Car
	return marshalRaw(c.raw, plain(c))
}

// ReservationKind names what a reservation books.
type ReservationKind string

const (
	ReservationHotel      ReservationKind = "hotel"
	ReservationRestaurant ReservationKind = "restaurant"
	ReservationCar        ReservationKind = "car"
)

// Reservation is a booking made by a consumer.
type Reservation struct {
	ID        int64           `json:"id"`
	Code      string          `json:"code,omitempty"`
	Kind      ReservationKind `json:"type"`
	ItemID    int64           `json:"item_id"`
	Status    string          `json:"status"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date,omitempty"`
	Total     float64         `json:"total,omitempty"`
	raw       json.RawMessage
}

func (r *Reservation) UnmarshalJSON(data []byte) error {
	type plain Reservation
	return unmarshalKeepRaw(data, (*plain)(r), &r.raw)
}

func (r Reservation) MarshalJSON() ([]byte, error) {
	type plain Reservation
	return marshalRaw(r.raw, plain(r))
}

// ReservationInput is the consumer's booking form.
type ReservationInput struct {
	Kind      ReservationKind `json:"type" validate:"required,oneof=hotel restaurant car"`
	ItemID    int64           `json:"item_id" validate:"required,gt=0"`
	StartDate string          `json:"start_date" validate:"required"`
	EndDate   string          `json:"end_date,omitempty"`
	Guests    int             `json:"guests,omitempty" validate:"omitempty,gte=1"`
	Notes     string          `json:"notes,omitempty" validate:"omitempty,max=500"`
}
