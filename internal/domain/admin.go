package domain

import (
	"encoding/json"
	"time"
)

// AdminRole enumerates console operator roles.
type AdminRole string

const (
	AdminRoleSuper AdminRole = "super_admin"
	AdminRoleAdmin AdminRole = "admin"
)

// Admin is the identity of a signed-in console operator.
type Admin struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      AdminRole `json:"role,omitempty"`
	CreatedAt string    `json:"created_at,omitempty"`
	raw       json.RawMessage
}

func (a *Admin) UnmarshalJSON(data []byte) error {
	type plain Admin
	return unmarshalKeepRaw(data, (*plain)(a), &a.raw)
}

func (a Admin) MarshalJSON() ([]byte, error) {
	type plain Admin
	return marshalRaw(a.raw, plain(a))
}

// AdminInput creates a new console operator.
type AdminInput struct {
	Name     string    `json:"name" validate:"required,max=120"`
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required,min=8"`
	Role     AdminRole `json:"role,omitempty" validate:"omitempty,oneof=super_admin admin"`
}

// Settings are platform settings edited from the console; values are opaque.
type Settings map[string]any

// Wallet is a business owner's balance held by the platform.
type Wallet struct {
	ID        int64   `json:"id"`
	OwnerName string  `json:"owner_name"`
	OwnerType string  `json:"owner_type"`
	Balance   float64 `json:"balance"`
	Currency  string  `json:"currency,omitempty"`
}

// WithdrawalStatus tracks a payout request.
type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalCompleted WithdrawalStatus = "completed"
	WithdrawalRejected  WithdrawalStatus = "rejected"
)

// Withdrawal is a payout request against a wallet.
type Withdrawal struct {
	ID          int64            `json:"id"`
	WalletID    int64            `json:"wallet_id"`
	Amount      float64          `json:"amount"`
	Status      WithdrawalStatus `json:"status"`
	RequestedAt *time.Time       `json:"requested_at,omitempty"`
}

// DashboardStats are the console headline counters.
type DashboardStats struct {
	Users        int64   `json:"users"`
	Hotels       int64   `json:"hotels"`
	Restaurants  int64   `json:"restaurants"`
	Companies    int64   `json:"companies"`
	Reservations int64   `json:"reservations"`
	Revenue      float64 `json:"revenue"`
}

// Activity is one entry of the console's recent-activity feed.
type Activity struct {
	ID          int64      `json:"id"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}
