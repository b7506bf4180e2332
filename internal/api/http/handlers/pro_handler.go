package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/booking-portal/internal/api/dto"
	"github.com/spec-kit/booking-portal/internal/domain"
	apperrors "github.com/spec-kit/booking-portal/pkg/util/errorutil"
)

// ProHandler serves the business-owner portal.
type ProHandler struct{}

// NewProHandler constructs handler.
func NewProHandler() *ProHandler {
	return &ProHandler{}
}

// LoginPage handles GET /pro/login.
func (h *ProHandler) LoginPage(c *fiber.Ctx) error {
	return ok(c, dto.LoginPageResponse{Page: "pro_login", Action: "/pro/login", BusinessTypes: domain.BusinessTypes()})
}

// Login handles POST /pro/login.
func (h *ProHandler) Login(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	var req dto.ProLoginRequest
	if err := bind(c, &req); err != nil {
		return dto.WithForm(err, req)
	}
	businessType, err := domain.ParseBusinessType(req.Type)
	if err != nil {
		return dto.WithForm(apperrors.NewValidationError("invalid business type", map[string]any{"type": err.Error()}), req)
	}
	sess, err := root.Business.Login(c.UserContext(), req.Credentials(), businessType)
	if err != nil {
		return dto.WithForm(err, req)
	}
	return ok(c, dto.NewBusinessSessionResponse(sess))
}

// Register handles POST /pro/register.
func (h *ProHandler) Register(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	var req domain.BusinessRegisterInput
	if err := bind(c, &req); err != nil {
		return dto.WithForm(err, req)
	}
	sess, err := root.Business.Register(c.UserContext(), req)
	if err != nil {
		return dto.WithForm(err, req)
	}
	return respond(c, http.StatusCreated, dto.NewBusinessSessionResponse(sess))
}

// Logout handles POST /pro/logout.
func (h *ProHandler) Logout(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	if err := root.Business.Logout(c.UserContext()); err != nil {
		return err
	}
	return ok(c, dto.LogoutResponse{SignedOut: true})
}

// Dashboard handles GET /pro/dashboard. An owner without a business yet is
// flagged with needs_business so the page routes to the creation flow.
func (h *ProHandler) Dashboard(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	if !domain.HasBusiness(root.Business.Session()) {
		root.Business.RefreshBusiness(c.UserContext())
	}
	view := dto.ProDashboardResponse{BusinessSessionResponse: dto.NewBusinessSessionResponse(root.Business.Session())}
	if view.BusinessSessionResponse == nil {
		return ok(c, view)
	}
	if !view.NeedsBusiness {
		token, err := sessionToken(c, root.Business.Token)
		if err != nil {
			return err
		}
		reservations, err := root.Client.OwnerReservations(c.UserContext(), view.Type, token, 1)
		if err != nil {
			return rejected(c, root.Business, err)
		}
		view.Reservations = &reservations
	}
	return ok(c, view)
}

// Business handles GET /pro/business.
func (h *ProHandler) Business(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	root.Business.RefreshBusiness(c.UserContext())
	return ok(c, dto.NewBusinessSessionResponse(root.Business.Session()))
}

// Reservations handles GET /pro/reservations.
func (h *ProHandler) Reservations(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	businessType, token, err := h.scope(c, root.Business.Type, root.Business.Token)
	if err != nil {
		return err
	}
	page, err := root.Client.OwnerReservations(c.UserContext(), businessType, token, pageParam(c))
	if err != nil {
		return rejected(c, root.Business, err)
	}
	return ok(c, page)
}

// UpdateReservationStatus handles POST /pro/reservations/:id/status.
func (h *ProHandler) UpdateReservationStatus(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ReservationStatusRequest
	if err := bind(c, &req); err != nil {
		return dto.WithForm(err, req)
	}
	businessType, token, err := h.scope(c, root.Business.Type, root.Business.Token)
	if err != nil {
		return err
	}
	reservation, err := root.Client.UpdateOwnerReservationStatus(c.UserContext(), businessType, token, id, req.Status)
	if err != nil {
		return dto.WithForm(rejected(c, root.Business, err), req)
	}
	return ok(c, dto.MessageResponse{Message: "reservation updated", Data: reservation})
}

func (h *ProHandler) scope(c *fiber.Ctx, active func() (domain.BusinessType, bool), read tokenReader) (domain.BusinessType, string, error) {
	token, err := sessionToken(c, read)
	if err != nil {
		return "", "", err
	}
	businessType, signedIn := active()
	if !signedIn {
		return "", "", errSessionExpired()
	}
	return businessType, token, nil
}
