package dto

import (
	"errors"
	"testing"

	"github.com/spec-kit/booking-portal/internal/domain"
	apperrors "github.com/spec-kit/booking-portal/pkg/util/errorutil"
)

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := Validate(ProLoginRequest{Email: "not-an-email", Type: "boat"})
	de := apperrors.ToDomainError(err)
	if de == nil || de.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"email", "password", "type"} {
		if _, ok := de.Details[field]; !ok {
			t.Errorf("expected details for %s, got %v", field, de.Details)
		}
	}
	if de.Details["type"] != "The type field must be one of: hotel, restaurant, car_rental." {
		t.Errorf("unexpected type message %q", de.Details["type"])
	}
}

func TestValidateAcceptsValidRegistration(t *testing.T) {
	in := domain.BusinessRegisterInput{
		Type:                 domain.BusinessCarRental,
		Name:                 "Atlas",
		Email:                "a@example.com",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	}
	if err := Validate(in); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	in.PasswordConfirmation = "other"
	de := apperrors.ToDomainError(Validate(in))
	if de == nil || de.Details["password_confirmation"] != "The password_confirmation field must match password." {
		t.Errorf("unexpected confirmation error %+v", de)
	}
}

func TestWithFormEchoesDraftWithoutPasswords(t *testing.T) {
	conflict := apperrors.NewConflict("The email has already been taken.", map[string]any{"email": "taken"})
	draft := domain.AdminInput{Name: "Sam", Email: "dup@example.com", Password: "secret123", Role: domain.AdminRoleAdmin}

	err := WithForm(conflict, draft)

	de := apperrors.ToDomainError(err)
	if de.Code != apperrors.CodeConflict || de.Message != "The email has already been taken." {
		t.Fatalf("expected conflict preserved, got %+v", de)
	}
	form, ok := de.Details["form"].(map[string]any)
	if !ok {
		t.Fatalf("expected form draft, got %v", de.Details)
	}
	if form["email"] != "dup@example.com" || form["name"] != "Sam" {
		t.Errorf("expected draft fields echoed, got %v", form)
	}
	if _, leaked := form["password"]; leaked {
		t.Error("password must not be echoed")
	}
	if de.Details["email"] != "taken" {
		t.Errorf("expected API details kept, got %v", de.Details)
	}
	if original := apperrors.ToDomainError(conflict); original.Details["form"] != nil {
		t.Error("original error must not be modified")
	}
}

func TestWithFormKeepsInternalErrors(t *testing.T) {
	internal := apperrors.NewInternalError(errors.New("disk full"))
	if got := WithForm(internal, LoginRequest{Email: "a@example.com"}); got != internal {
		t.Errorf("expected internal error returned as-is, got %v", got)
	}
}

func TestNewBusinessSessionResponse(t *testing.T) {
	if NewBusinessSessionResponse(nil) != nil {
		t.Error("expected nil view for nil session")
	}

	resp := NewBusinessSessionResponse(domain.CarRentalSession{Owner: domain.Owner{ID: 3}})
	if !resp.NeedsBusiness || resp.Business != nil || resp.BusinessKey != "company" {
		t.Errorf("expected needs_business for owner without company, got %+v", resp)
	}

	resp = NewBusinessSessionResponse(domain.HotelSession{Owner: domain.Owner{ID: 1}, Hotel: &domain.Hotel{ID: 5}})
	if resp.NeedsBusiness || resp.Type != domain.BusinessHotel {
		t.Errorf("unexpected hotel view %+v", resp)
	}
}
