package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spec-kit/booking-portal/internal/domain"
)

func catalogQuery(q domain.CatalogQuery) url.Values {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.City != "" {
		values.Set("city", q.City)
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	return values
}

func listPage[T any](ctx context.Context, c *Client, path string, query url.Values) (domain.Page[T], error) {
	raw, err := c.call(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return domain.Page[T]{}, err
	}
	return decodePage[T](raw)
}

func getOne[T any](ctx context.Context, c *Client, path string, key string) (T, error) {
	raw, err := c.call(ctx, Request{Method: http.MethodGet, Path: path})
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeAt[T](raw, key)
}

// ListHotels lists hotels: GET /hotels.
func (c *Client) ListHotels(ctx context.Context, q domain.CatalogQuery) (domain.Page[domain.Hotel], error) {
	return listPage[domain.Hotel](ctx, c, "/hotels", catalogQuery(q))
}

// GetHotel fetches one hotel: GET /hotels/{id}.
func (c *Client) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	return getOne[domain.Hotel](ctx, c, "/hotels/"+strconv.FormatInt(id, 10), "hotel")
}

// ListRestaurants lists restaurants: GET /restaurants.
func (c *Client) ListRestaurants(ctx context.Context, q domain.CatalogQuery) (domain.Page[domain.Restaurant], error) {
	return listPage[domain.Restaurant](ctx, c, "/restaurants", catalogQuery(q))
}

// GetRestaurant fetches one restaurant: GET /restaurants/{id}.
func (c *Client) GetRestaurant(ctx context.Context, id int64) (domain.Restaurant, error) {
	return getOne[domain.Restaurant](ctx, c, "/restaurants/"+strconv.FormatInt(id, 10), "restaurant")
}

// ListCars lists rentable cars: GET /cars.
func (c *Client) ListCars(ctx context.Context, q domain.CatalogQuery) (domain.Page[domain.Car], error) {
	return listPage[domain.Car](ctx, c, "/cars", catalogQuery(q))
}

// GetCar fetches one car: GET /cars/{id}.
func (c *Client) GetCar(ctx context.Context, id int64) (domain.Car, error) {
	return getOne[domain.Car](ctx, c, "/cars/"+strconv.FormatInt(id, 10), "car")
}

// ListReservations lists the signed-in consumer's reservations: GET /reservations.
func (c *Client) ListReservations(ctx context.Context, page int) (domain.Page[domain.Reservation], error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	return listPage[domain.Reservation](ctx, c, "/reservations", query)
}

// CreateReservation books an item: POST /reservations.
func (c *Client) CreateReservation(ctx context.Context, in domain.ReservationInput) (domain.Reservation, error) {
	raw, err := c.call(ctx, Request{Method: http.MethodPost, Path: "/reservations", Body: in})
	if err != nil {
		return domain.Reservation{}, err
	}
	return decodeAt[domain.Reservation](raw, "reservation")
}

// CancelReservation cancels a reservation: POST /reservations/{id}/cancel.
func (c *Client) CancelReservation(ctx context.Context, id int64) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/reservations/" + strconv.FormatInt(id, 10) + "/cancel"}, nil)
}

// OwnerReservations lists reservations for the owner's business: GET /{prefix}/reservations.
func (c *Client) OwnerReservations(ctx context.Context, t domain.BusinessType, token string, page int) (domain.Page[domain.Reservation], error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	raw, err := c.call(ctx, Request{Method: http.MethodGet, Path: "/" + t.RoutePrefix() + "/reservations", Query: query, Token: token})
	if err != nil {
		return domain.Page[domain.Reservation]{}, err
	}
	return decodePage[domain.Reservation](raw)
}

// UpdateOwnerReservationStatus accepts or rejects a reservation: PATCH /{prefix}/reservations/{id}/status.
func (c *Client) UpdateOwnerReservationStatus(ctx context.Context, t domain.BusinessType, token string, id int64, status string) (domain.Reservation, error) {
	path := "/" + t.RoutePrefix() + "/reservations/" + strconv.FormatInt(id, 10) + "/status"
	raw, err := c.call(ctx, Request{Method: http.MethodPatch, Path: path, Body: map[string]string{"status": status}, Token: token})
	if err != nil {
		return domain.Reservation{}, err
	}
	return decodeAt[domain.Reservation](raw, "reservation")
}
