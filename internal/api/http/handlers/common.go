package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/booking-portal/internal/api/dto"
	"github.com/spec-kit/booking-portal/internal/auth"
	"github.com/spec-kit/booking-portal/internal/domain"
	"github.com/spec-kit/booking-portal/internal/session"
	apperrors "github.com/spec-kit/booking-portal/pkg/util/errorutil"
)

func rootOf(c *fiber.Ctx) (*session.Root, error) {
	root, ok := auth.RootFromContext(c)
	if !ok {
		return nil, apperrors.NewInternalError(nil)
	}
	return root, nil
}

// bind parses the body into out and validates it.
func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(out)
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{name: c.Params(name)})
	}
	return id, nil
}

func pageParam(c *fiber.Ctx) int {
	page := c.QueryInt("page", 1)
	if page < 1 {
		return 1
	}
	return page
}

func catalogQuery(c *fiber.Ctx) domain.CatalogQuery {
	return domain.CatalogQuery{
		Search: c.Query("search"),
		City:   c.Query("city"),
		Page:   pageParam(c),
	}
}

// requireConfirmation rejects a destructive action unless the request
// carries confirm=true in the query or the body.
func requireConfirmation(c *fiber.Ctx, action string) error {
	var req dto.ConfirmRequest
	if err := c.QueryParser(&req); err == nil && req.Confirm {
		return nil
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err == nil && req.Confirm {
			return nil
		}
	}
	return apperrors.NewConfirmationRequired(action)
}

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"data": data})
}

func ok(c *fiber.Ctx, data any) error {
	return respond(c, http.StatusOK, data)
}

type tokenReader func(context.Context) (string, error)

// sessionToken reads a store's bearer token for an explicit per-call header.
func sessionToken(c *fiber.Ctx, read tokenReader) (string, error) {
	token, err := read(c.UserContext())
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", errSessionExpired()
	}
	return token, nil
}

type expirer interface {
	Expire(ctx context.Context, reason string)
}

// rejected ends the session that owns the token when the API answered 401.
// Any other failure, 403 included, leaves it in place.
func rejected(c *fiber.Ctx, owner expirer, err error) error {
	if err != nil && apperrors.IsUnauthenticated(err) {
		owner.Expire(c.UserContext(), err.Error())
	}
	return err
}

func errSessionExpired() error {
	return apperrors.NewUnauthenticated("session expired")
}
