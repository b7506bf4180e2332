package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/booking-portal/internal/api/dto"
	"github.com/spec-kit/booking-portal/internal/domain"
)

// ConsumerHandler serves the end-user pages.
type ConsumerHandler struct{}

// NewConsumerHandler constructs handler.
func NewConsumerHandler() *ConsumerHandler {
	return &ConsumerHandler{}
}

// LoginPage handles GET /login.
func (h *ConsumerHandler) LoginPage(c *fiber.Ctx) error {
	return ok(c, dto.LoginPageResponse{Page: "login", Action: "/login"})
}

// Login handles POST /login.
func (h *ConsumerHandler) Login(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return dto.WithForm(err, req)
	}
	user, err := root.Consumer.Login(c.UserContext(), req.Credentials())
	if err != nil {
		return dto.WithForm(err, req)
	}
	return ok(c, dto.ConsumerSessionResponse{User: &user})
}

// Register handles POST /register.
func (h *ConsumerHandler) Register(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	var req domain.RegisterInput
	if err := bind(c, &req); err != nil {
		return dto.WithForm(err, req)
	}
	user, err := root.Consumer.Register(c.UserContext(), req)
	if err != nil {
		return dto.WithForm(err, req)
	}
	return respond(c, http.StatusCreated, dto.ConsumerSessionResponse{User: &user})
}

// Logout handles POST /logout.
func (h *ConsumerHandler) Logout(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	if err := root.Consumer.Logout(c.UserContext()); err != nil {
		return err
	}
	return ok(c, dto.LogoutResponse{SignedOut: true})
}

// Account handles GET /account. The identity is re-synced opportunistically.
func (h *ConsumerHandler) Account(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	root.Consumer.RefreshUser(c.UserContext())
	return ok(c, dto.AccountResponse{User: root.Consumer.Identity()})
}

// Reservations handles GET /reservations.
func (h *ConsumerHandler) Reservations(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	page, err := root.Client.ListReservations(c.UserContext(), pageParam(c))
	if err != nil {
		return rejected(c, root.Consumer, err)
	}
	return ok(c, page)
}

// CreateReservation handles POST /reservations.
func (h *ConsumerHandler) CreateReservation(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	var req domain.ReservationInput
	if err := bind(c, &req); err != nil {
		return dto.WithForm(err, req)
	}
	reservation, err := root.Client.CreateReservation(c.UserContext(), req)
	if err != nil {
		return dto.WithForm(rejected(c, root.Consumer, err), req)
	}
	return respond(c, http.StatusCreated, dto.MessageResponse{Message: "reservation created", Data: reservation})
}

// CancelReservation handles POST /reservations/:id/cancel.
func (h *ConsumerHandler) CancelReservation(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := requireConfirmation(c, "cancel_reservation"); err != nil {
		return err
	}
	if err := root.Client.CancelReservation(c.UserContext(), id); err != nil {
		return rejected(c, root.Consumer, err)
	}
	return ok(c, dto.MessageResponse{Message: "reservation cancelled"})
}
