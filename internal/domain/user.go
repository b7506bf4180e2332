package domain

import "encoding/json"

// User is the identity of a signed-in consumer. Fields the portal does not
// model are kept so the persisted record matches what the API sent.
type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	raw       json.RawMessage
}

func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	return unmarshalKeepRaw(data, (*plain)(u), &u.raw)
}

func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return marshalRaw(u.raw, plain(u))
}

// RegisterInput is the consumer registration profile.
type RegisterInput struct {
	Name                 string `json:"name" validate:"required,max=120"`
	Email                string `json:"email" validate:"required,email"`
	Phone                string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// BusinessRegisterInput is the business-owner registration profile.
type BusinessRegisterInput struct {
	Type                 BusinessType `json:"type" validate:"required,business_type"`
	Name                 string       `json:"name" validate:"required,max=120"`
	Email                string       `json:"email" validate:"required,email"`
	Phone                string       `json:"phone,omitempty" validate:"omitempty,max=32"`
	Password             string       `json:"password" validate:"required,min=8"`
	PasswordConfirmation string       `json:"password_confirmation" validate:"required,eqfield=Password"`
}
