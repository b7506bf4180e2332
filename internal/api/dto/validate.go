package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/booking-portal/internal/domain"
	apperrors "github.com/spec-kit/booking-portal/pkg/util/errorutil"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("business_type", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseBusinessType(fl.Field().String())
		return err == nil
	})
	return v
}

var messages = map[string]string{
	"required":      "The %s field is required.",
	"email":         "The %s field must be a valid email address.",
	"min":           "The %s field must be at least %s characters.",
	"max":           "The %s field must not be greater than %s characters.",
	"gt":            "The %s field must be greater than %s.",
	"gte":           "The %s field must be at least %s.",
	"oneof":         "The %s field must be one of: %s.",
	"eqfield":       "The %s field must match %s.",
	"business_type": "The %s field must be one of: hotel, restaurant, car_rental.",
}

func message(fe validator.FieldError) string {
	msg, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
	switch strings.Count(msg, "%s") {
	case 2:
		return fmt.Sprintf(msg, fe.Field(), strings.ToLower(fe.Param()))
	default:
		return fmt.Sprintf(msg, fe.Field())
	}
}

// Validate checks s against its validate tags. Failures are reported as
// VALIDATION_FAILED with one message per JSON field name.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewInternalError(err)
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := details[fe.Field()]; !seen {
			details[fe.Field()] = message(fe)
		}
	}
	return apperrors.NewValidationError("The given data was invalid.", details)
}
