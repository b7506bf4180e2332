package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the public hotel, restaurant and car listings.
type CatalogHandler struct{}

// NewCatalogHandler constructs handler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Hotels handles GET /hotels.
func (h *CatalogHandler) Hotels(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	page, err := root.Client.ListHotels(c.UserContext(), catalogQuery(c))
	if err != nil {
		return rejected(c, root.Consumer, err)
	}
	return ok(c, page)
}

// Hotel handles GET /hotels/:id.
func (h *CatalogHandler) Hotel(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	hotel, err := root.Client.GetHotel(c.UserContext(), id)
	if err != nil {
		return rejected(c, root.Consumer, err)
	}
	return ok(c, hotel)
}

// Restaurants handles GET /restaurants.
func (h *CatalogHandler) Restaurants(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	page, err := root.Client.ListRestaurants(c.UserContext(), catalogQuery(c))
	if err != nil {
		return rejected(c, root.Consumer, err)
	}
	return ok(c, page)
}

// Restaurant handles GET /restaurants/:id.
func (h *CatalogHandler) Restaurant(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	restaurant, err := root.Client.GetRestaurant(c.UserContext(), id)
	if err != nil {
		return rejected(c, root.Consumer, err)
	}
	return ok(c, restaurant)
}

// Cars handles GET /cars.
func (h *CatalogHandler) Cars(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	page, err := root.Client.ListCars(c.UserContext(), catalogQuery(c))
	if err != nil {
		return err
	}
	return ok(c, page)
}

// Car handles GET /cars/:id.
func (h *CatalogHandler) Car(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	car, err := root.Client.GetCar(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, car)
}
