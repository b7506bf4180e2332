package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/booking-portal/internal/api/dto"
	"github.com/spec-kit/booking-portal/internal/domain"
)

// AdminHandler serves the admin console.
type AdminHandler struct{}

// NewAdminHandler constructs handler.
func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// LoginPage handles GET /admin/login.
func (h *AdminHandler) LoginPage(c *fiber.Ctx) error {
	return ok(c, dto.LoginPageResponse{Page: "admin_login", Action: "/admin/login"})
}

// Login handles POST /admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return dto.WithForm(err, req)
	}
	admin, err := root.Admin.Login(c.UserContext(), req.Credentials())
	if err != nil {
		return dto.WithForm(err, req)
	}
	return ok(c, dto.AdminSessionResponse{Admin: &admin})
}

// Logout handles POST /admin/logout.
func (h *AdminHandler) Logout(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	if err := root.Admin.Logout(c.UserContext()); err != nil {
		return err
	}
	return ok(c, dto.LogoutResponse{SignedOut: true})
}

// Dashboard handles GET /admin/dashboard. Statistics and recent activity are
// fetched concurrently and both awaited.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	token, err := sessionToken(c, root.Admin.Token)
	if err != nil {
		return err
	}

	view := dto.AdminDashboardResponse{Admin: root.Admin.Identity()}
	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		stats, err := root.Client.DashboardStats(ctx, token)
		view.Stats = stats
		return err
	})
	g.Go(func() error {
		activity, err := root.Client.RecentActivity(ctx, token)
		view.Activity = activity
		return err
	})
	if err := g.Wait(); err != nil {
		return rejected(c, root.Admin, err)
	}
	if view.Activity == nil {
		view.Activity = []domain.Activity{}
	}
	return ok(c, view)
}

// Admins handles GET /admin/admins.
func (h *AdminHandler) Admins(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	token, err := sessionToken(c, root.Admin.Token)
	if err != nil {
		return err
	}
	admins, err := root.Client.ListAdmins(c.UserContext(), token)
	if err != nil {
		return rejected(c, root.Admin, err)
	}
	return ok(c, admins)
}

// CreateAdmin handles POST /admin/admins. On failure the submitted draft is
// echoed back so the creation form keeps its fields.
func (h *AdminHandler) CreateAdmin(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	var req domain.AdminInput
	if err := bind(c, &req); err != nil {
		return dto.WithForm(err, req)
	}
	token, err := sessionToken(c, root.Admin.Token)
	if err != nil {
		return dto.WithForm(err, req)
	}
	admin, err := root.Client.CreateAdmin(c.UserContext(), token, req)
	if err != nil {
		return dto.WithForm(rejected(c, root.Admin, err), req)
	}
	return respond(c, http.StatusCreated, dto.MessageResponse{Message: "admin created", Data: admin})
}

// DeleteAdmin handles DELETE /admin/admins/:id.
func (h *AdminHandler) DeleteAdmin(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := requireConfirmation(c, "delete_admin"); err != nil {
		return err
	}
	token, err := sessionToken(c, root.Admin.Token)
	if err != nil {
		return err
	}
	if err := root.Client.DeleteAdmin(c.UserContext(), token, id); err != nil {
		return rejected(c, root.Admin, err)
	}
	return ok(c, dto.MessageResponse{Message: "admin deleted"})
}

// Settings handles GET /admin/settings.
func (h *AdminHandler) Settings(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	token, err := sessionToken(c, root.Admin.Token)
	if err != nil {
		return err
	}
	settings, err := root.Client.GetSettings(c.UserContext(), token)
	if err != nil {
		return rejected(c, root.Admin, err)
	}
	return ok(c, settings)
}

// UpdateSettings handles PUT /admin/settings.
func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	var req dto.SettingsRequest
	if err := bind(c, &req); err != nil {
		return dto.WithForm(err, req)
	}
	token, err := sessionToken(c, root.Admin.Token)
	if err != nil {
		return err
	}
	settings, err := root.Client.UpdateSettings(c.UserContext(), token, req.Settings)
	if err != nil {
		return dto.WithForm(rejected(c, root.Admin, err), req)
	}
	return ok(c, dto.MessageResponse{Message: "settings saved", Data: settings})
}

// Wallets handles GET /admin/wallets.
func (h *AdminHandler) Wallets(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	token, err := sessionToken(c, root.Admin.Token)
	if err != nil {
		return err
	}
	page, err := root.Client.ListWallets(c.UserContext(), token, pageParam(c))
	if err != nil {
		return rejected(c, root.Admin, err)
	}
	return ok(c, page)
}

// Withdrawals handles GET /admin/withdrawals.
func (h *AdminHandler) Withdrawals(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	token, err := sessionToken(c, root.Admin.Token)
	if err != nil {
		return err
	}
	status := domain.WithdrawalStatus(c.Query("status"))
	page, err := root.Client.ListWithdrawals(c.UserContext(), token, status, pageParam(c))
	if err != nil {
		return rejected(c, root.Admin, err)
	}
	return ok(c, page)
}

// CompleteWithdrawal handles POST /admin/withdrawals/:id/complete.
func (h *AdminHandler) CompleteWithdrawal(c *fiber.Ctx) error {
	root, err := rootOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := requireConfirmation(c, "complete_withdrawal"); err != nil {
		return err
	}
	token, err := sessionToken(c, root.Admin.Token)
	if err != nil {
		return err
	}
	withdrawal, err := root.Client.CompleteWithdrawal(c.UserContext(), token, id)
	if err != nil {
		return rejected(c, root.Admin, err)
	}
	return ok(c, dto.MessageResponse{Message: "withdrawal completed", Data: withdrawal})
}
