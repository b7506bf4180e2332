package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/spec-kit/booking-portal/internal/domain"
	apperrors "github.com/spec-kit/booking-portal/pkg/util/errorutil"
)

// Login authenticates a consumer: POST /login.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.User, string, error) {
	return c.userAuth(ctx, "/login", creds)
}

// Register creates a consumer account: POST /register.
func (c *Client) Register(ctx context.Context, in domain.RegisterInput) (domain.User, string, error) {
	return c.userAuth(ctx, "/register", in)
}

func (c *Client) userAuth(ctx context.Context, path string, body any) (domain.User, string, error) {
	raw, err := c.call(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return domain.User{}, "", err
	}
	token, err := authToken(raw)
	if err != nil {
		return domain.User{}, "", err
	}
	user, err := decodeAt[domain.User](raw, "user")
	return user, token, err
}

// Logout invalidates the consumer's server-side session: POST /logout.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/logout", Token: token}, nil)
}

// CurrentUser fetches the consumer identity: GET /user.
func (c *Client) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	raw, err := c.call(ctx, Request{Method: http.MethodGet, Path: "/user", Token: token})
	if err != nil {
		return domain.User{}, err
	}
	return decodeAt[domain.User](raw, "user")
}

// ProLogin authenticates a business owner of type t: POST /pro/login.
func (c *Client) ProLogin(ctx context.Context, creds domain.Credentials, t domain.BusinessType) (domain.BusinessSession, string, error) {
	body := struct {
		domain.Credentials
		Type domain.BusinessType `json:"type"`
	}{Credentials: creds, Type: t}
	return c.ownerAuth(ctx, "/pro/login", t, body)
}

// ProRegister creates a business-owner account: POST /pro/register.
func (c *Client) ProRegister(ctx context.Context, in domain.BusinessRegisterInput) (domain.BusinessSession, string, error) {
	return c.ownerAuth(ctx, "/pro/register", in.Type, in)
}

func (c *Client) ownerAuth(ctx context.Context, path string, t domain.BusinessType, body any) (domain.BusinessSession, string, error) {
	raw, err := c.call(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return nil, "", err
	}
	token, err := authToken(raw)
	if err != nil {
		return nil, "", err
	}
	sess, err := decodeOwner(raw, t)
	if err != nil {
		return nil, "", err
	}
	if !domain.HasBusiness(sess) {
		if nested := member(raw, t.BusinessKey()); nested != nil {
			if sess, err = domain.WithBusiness(sess, nested); err != nil {
				return nil, "", apperrors.NewInternalError(err)
			}
		}
	}
	return sess, token, nil
}

// OwnerMe fetches the owner identity: GET /{prefix}/me.
func (c *Client) OwnerMe(ctx context.Context, t domain.BusinessType, token string) (domain.BusinessSession, error) {
	raw, err := c.call(ctx, Request{Method: http.MethodGet, Path: "/" + t.RoutePrefix() + "/me", Token: token})
	if err != nil {
		return nil, err
	}
	return decodeOwner(raw, t)
}

// OwnerBusiness fetches the owner's business object: GET /{prefix}/{businessKey}.
// A missing business is reported as NOT_FOUND.
func (c *Client) OwnerBusiness(ctx context.Context, t domain.BusinessType, token string) (json.RawMessage, error) {
	path := "/" + t.RoutePrefix() + "/" + t.BusinessKey()
	raw, err := c.call(ctx, Request{Method: http.MethodGet, Path: path, Token: token})
	if err != nil {
		return nil, err
	}
	business := pick(raw, t.BusinessKey())
	if nullMember(raw, t.BusinessKey()) || isNull(business) || string(business) == "{}" || string(business) == "[]" {
		return nil, apperrors.NewNotFound(t.BusinessKey(), nil)
	}
	return business, nil
}

// OwnerLogout invalidates the owner's server-side session: POST /{prefix}/logout.
func (c *Client) OwnerLogout(ctx context.Context, t domain.BusinessType, token string) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/" + t.RoutePrefix() + "/logout", Token: token}, nil)
}

func decodeOwner(raw json.RawMessage, t domain.BusinessType) (domain.BusinessSession, error) {
	sess, err := domain.DecodeOwnerRecord(t, pick(raw, t.IdentityKey(), "owner"))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return sess, nil
}

// AdminLogin authenticates a console operator: POST /admin/login.
func (c *Client) AdminLogin(ctx context.Context, creds domain.Credentials) (domain.Admin, string, error) {
	raw, err := c.call(ctx, Request{Method: http.MethodPost, Path: "/admin/login", Body: creds})
	if err != nil {
		return domain.Admin{}, "", err
	}
	token, err := authToken(raw)
	if err != nil {
		return domain.Admin{}, "", err
	}
	admin, err := decodeAt[domain.Admin](raw, "admin", "user")
	return admin, token, err
}

// AdminMe fetches the operator identity: GET /admin/me.
func (c *Client) AdminMe(ctx context.Context, token string) (domain.Admin, error) {
	raw, err := c.call(ctx, Request{Method: http.MethodGet, Path: "/admin/me", Token: token})
	if err != nil {
		return domain.Admin{}, err
	}
	return decodeAt[domain.Admin](raw, "admin", "user")
}

// AdminLogout invalidates the operator session: POST /admin/logout.
func (c *Client) AdminLogout(ctx context.Context, token string) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/admin/logout", Token: token}, nil)
}
