package apiclient

import (
	"encoding/json"
	"fmt"

	"github.com/spec-kit/booking-portal/internal/domain"
	apperrors "github.com/spec-kit/booking-portal/pkg/util/errorutil"
)

// pick returns the first non-null member of raw named by keys, looking one
// level into a "data" envelope. When none is present raw itself is returned,
// so bare objects decode as-is.
func pick(raw json.RawMessage, keys ...string) json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return raw
	}
	for _, key := range keys {
		if v, ok := fields[key]; ok && !isNull(v) {
			return v
		}
	}
	if data, ok := fields["data"]; ok && !isNull(data) {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(data, &inner); err == nil {
			for _, key := range keys {
				if v, ok := inner[key]; ok && !isNull(v) {
					return v
				}
			}
			return data
		}
	}
	return raw
}

// member returns raw[key] or nil.
func member(raw json.RawMessage, key string) json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	if v := fields[key]; !isNull(v) {
		return v
	}
	return nil
}

// nullMember reports whether raw explicitly carries key with a null value.
func nullMember(raw json.RawMessage, key string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}
	v, ok := fields[key]
	return ok && isNull(v)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func decodeAt[T any](raw json.RawMessage, keys ...string) (T, error) {
	var out T
	if err := json.Unmarshal(pick(raw, keys...), &out); err != nil {
		return out, apperrors.NewInternalError(fmt.Errorf("decode %T: %w", out, err))
	}
	return out, nil
}

// decodeList accepts a bare array or an object wrapping it under "data".
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	var list []T
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	if data := member(raw, "data"); data != nil {
		if err := json.Unmarshal(data, &list); err == nil {
			return list, nil
		}
	}
	return nil, apperrors.NewInternalError(fmt.Errorf("decode list of %T", list))
}

// decodePage accepts a paginated envelope or a bare array.
func decodePage[T any](raw json.RawMessage) (domain.Page[T], error) {
	var page domain.Page[T]
	var list []T
	if err := json.Unmarshal(raw, &list); err == nil {
		return domain.Page[T]{Data: list, CurrentPage: 1, LastPage: 1, PerPage: len(list), Total: len(list)}, nil
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return page, apperrors.NewInternalError(fmt.Errorf("decode page: %w", err))
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return page, nil
}

// authToken extracts the bearer token from an auth response.
func authToken(raw json.RawMessage) (string, error) {
	var body struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
		Data        *struct {
			Token       string `json:"token"`
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", apperrors.NewInternalError(fmt.Errorf("decode auth response: %w", err))
	}
	for _, token := range []string{body.Token, body.AccessToken} {
		if token != "" {
			return token, nil
		}
	}
	if body.Data != nil {
		if body.Data.Token != "" {
			return body.Data.Token, nil
		}
		if body.Data.AccessToken != "" {
			return body.Data.AccessToken, nil
		}
	}
	return "", apperrors.NewInternalError(fmt.Errorf("auth response carries no token"))
}
