package dto

import (
	"github.com/spec-kit/booking-portal/internal/domain"
)

// ConfirmRequest carries the explicit confirmation destructive actions need.
type ConfirmRequest struct {
	Confirm bool `json:"confirm" form:"confirm" query:"confirm"`
}

// ReservationStatusRequest changes a reservation from the business portal.
type ReservationStatusRequest struct {
	Status string `json:"status" form:"status" validate:"required,oneof=confirmed rejected completed cancelled"`
}

// SettingsRequest replaces platform settings.
type SettingsRequest struct {
	Settings domain.Settings `json:"settings" validate:"required"`
}

// ProDashboardResponse is the business home page.
type ProDashboardResponse struct {
	*BusinessSessionResponse
	Reservations *domain.Page[domain.Reservation] `json:"reservations,omitempty"`
}

// AdminDashboardResponse is the console home page.
type AdminDashboardResponse struct {
	Admin    *domain.Admin         `json:"admin"`
	Stats    domain.DashboardStats `json:"stats"`
	Activity []domain.Activity     `json:"activity"`
}

// AccountResponse is the consumer account page.
type AccountResponse struct {
	User *domain.User `json:"user"`
}

// MessageResponse is the positive feedback of a mutation.
type MessageResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
