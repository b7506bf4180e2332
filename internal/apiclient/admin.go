package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spec-kit/booking-portal/internal/domain"
)

// Admin console endpoints. Every call carries the admin token explicitly.

// ListAdmins lists console operators: GET /admin/admins.
func (c *Client) ListAdmins(ctx context.Context, token string) ([]domain.Admin, error) {
	raw, err := c.call(ctx, Request{Method: http.MethodGet, Path: "/admin/admins", Token: token})
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Admin](pick(raw, "admins"))
}

// CreateAdmin creates a console operator: POST /admin/admins.
func (c *Client) CreateAdmin(ctx context.Context, token string, in domain.AdminInput) (domain.Admin, error) {
	raw, err := c.call(ctx, Request{Method: http.MethodPost, Path: "/admin/admins", Body: in, Token: token})
	if err != nil {
		return domain.Admin{}, err
	}
	return decodeAt[domain.Admin](raw, "admin")
}

// DeleteAdmin removes a console operator: DELETE /admin/admins/{id}.
func (c *Client) DeleteAdmin(ctx context.Context, token string, id int64) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: "/admin/admins/" + strconv.FormatInt(id, 10), Token: token}, nil)
}

// GetSettings reads platform settings: GET /admin/settings.
func (c *Client) GetSettings(ctx context.Context, token string) (domain.Settings, error) {
	raw, err := c.call(ctx, Request{Method: http.MethodGet, Path: "/admin/settings", Token: token})
	if err != nil {
		return nil, err
	}
	return decodeAt[domain.Settings](raw, "settings")
}

// UpdateSettings writes platform settings: PUT /admin/settings.
func (c *Client) UpdateSettings(ctx context.Context, token string, settings domain.Settings) (domain.Settings, error) {
	raw, err := c.call(ctx, Request{Method: http.MethodPut, Path: "/admin/settings", Body: settings, Token: token})
	if err != nil {
		return nil, err
	}
	return decodeAt[domain.Settings](raw, "settings")
}

// ListWallets lists owner wallets: GET /admin/wallets.
func (c *Client) ListWallets(ctx context.Context, token string, page int) (domain.Page[domain.Wallet], error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	raw, err := c.call(ctx, Request{Method: http.MethodGet, Path: "/admin/wallets", Query: query, Token: token})
	if err != nil {
		return domain.Page[domain.Wallet]{}, err
	}
	return decodePage[domain.Wallet](raw)
}

// ListWithdrawals lists payout requests, optionally by status: GET /admin/withdrawals.
func (c *Client) ListWithdrawals(ctx context.Context, token string, status domain.WithdrawalStatus, page int) (domain.Page[domain.Withdrawal], error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", string(status))
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	raw, err := c.call(ctx, Request{Method: http.MethodGet, Path: "/admin/withdrawals", Query: query, Token: token})
	if err != nil {
		return domain.Page[domain.Withdrawal]{}, err
	}
	return decodePage[domain.Withdrawal](raw)
}

// CompleteWithdrawal marks a payout as paid: POST /admin/withdrawals/{id}/complete.
func (c *Client) CompleteWithdrawal(ctx context.Context, token string, id int64) (domain.Withdrawal, error) {
	path := "/admin/withdrawals/" + strconv.FormatInt(id, 10) + "/complete"
	raw, err := c.call(ctx, Request{Method: http.MethodPost, Path: path, Token: token})
	if err != nil {
		return domain.Withdrawal{}, err
	}
	return decodeAt[domain.Withdrawal](raw, "withdrawal")
}

// DashboardStats reads headline counters: GET /admin/dashboard/stats.
func (c *Client) DashboardStats(ctx context.Context, token string) (domain.DashboardStats, error) {
	raw, err := c.call(ctx, Request{Method: http.MethodGet, Path: "/admin/dashboard/stats", Token: token})
	if err != nil {
		return domain.DashboardStats{}, err
	}
	return decodeAt[domain.DashboardStats](raw, "stats")
}

// RecentActivity reads the activity feed: GET /admin/dashboard/activity.
func (c *Client) RecentActivity(ctx context.Context, token string) ([]domain.Activity, error) {
	raw, err := c.call(ctx, Request{Method: http.MethodGet, Path: "/admin/dashboard/activity", Token: token})
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Activity](pick(raw, "activity", "activities"))
}
