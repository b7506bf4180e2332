package dto

import (
	"github.com/spec-kit/booking-portal/internal/domain"
)

// LoginRequest payload for consumer and admin login forms.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Credentials converts the form into API credentials.
func (r LoginRequest) Credentials() domain.Credentials {
	return domain.Credentials{Email: r.Email, Password: r.Password}
}

// ProLoginRequest payload for the unified business login form.
type ProLoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	Type     string `json:"type" form:"type" validate:"required,business_type"`
}

// Credentials converts the form into API credentials.
func (r ProLoginRequest) Credentials() domain.Credentials {
	return domain.Credentials{Email: r.Email, Password: r.Password}
}

// LoginPageResponse describes a login page.
type LoginPageResponse struct {
	Page          string                `json:"page"`
	Action        string                `json:"action"`
	BusinessTypes []domain.BusinessType `json:"business_types,omitempty"`
}

// ConsumerSessionResponse is the consumer session view.
type ConsumerSessionResponse struct {
	User *domain.User `json:"user"`
}

// AdminSessionResponse is the admin session view.
type AdminSessionResponse struct {
	Admin *domain.Admin `json:"admin"`
}

// BusinessSessionResponse is the business session view. Business is nil until
// the owner has created it, in which case NeedsBusiness is set.
type BusinessSessionResponse struct {
	Type          domain.BusinessType `json:"type"`
	Owner         domain.Owner        `json:"owner"`
	BusinessKey   string              `json:"business_key"`
	Business      any                 `json:"business"`
	NeedsBusiness bool                `json:"needs_business"`
}

// NewBusinessSessionResponse renders a session; nil yields nil.
func NewBusinessSessionResponse(sess domain.BusinessSession) *BusinessSessionResponse {
	if sess == nil {
		return nil
	}
	resp := &BusinessSessionResponse{
		Type:        sess.Type(),
		Owner:       sess.Identity(),
		BusinessKey: sess.Type().BusinessKey(),
	}
	switch s := sess.(type) {
	case domain.HotelSession:
		if s.Hotel != nil {
			resp.Business = s.Hotel
		}
	case domain.RestaurantSession:
		if s.Restaurant != nil {
			resp.Business = s.Restaurant
		}
	case domain.CarRentalSession:
		if s.Company != nil {
			resp.Business = s.Company
		}
	}
	resp.NeedsBusiness = resp.Business == nil
	return resp
}

// LogoutResponse acknowledges a logout.
type LogoutResponse struct {
	SignedOut bool `json:"signed_out"`
}
