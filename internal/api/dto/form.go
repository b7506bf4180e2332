package dto

import (
	"encoding/json"
	"strings"

	apperrors "github.com/spec-kit/booking-portal/pkg/util/errorutil"
)

// WithForm attaches the submitted draft to err under details.form so the page
// can show the error without clearing the form. Password fields are dropped.
func WithForm(err error, draft any) error {
	if err == nil {
		return nil
	}
	de := apperrors.ToDomainError(err)
	if de.HTTPStatus >= 500 && de.Code == apperrors.CodeInternal {
		return err
	}
	details := make(map[string]any, len(de.Details)+1)
	for k, v := range de.Details {
		details[k] = v
	}
	details["form"] = redact(draft)
	return &apperrors.DomainError{
		Code:       de.Code,
		Message:    de.Message,
		HTTPStatus: de.HTTPStatus,
		Details:    details,
		Err:        de.Err,
	}
}

func redact(draft any) map[string]any {
	raw, err := json.Marshal(draft)
	if err != nil {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	for k := range fields {
		if strings.Contains(k, "password") {
			delete(fields, k)
		}
	}
	return fields
}
