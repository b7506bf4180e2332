package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/booking-portal/internal/apiclient"
	"github.com/spec-kit/booking-portal/internal/config"
	"github.com/spec-kit/booking-portal/internal/session"
	apperrors "github.com/spec-kit/booking-portal/pkg/util/errorutil"
)

const (
	deviceKey = "device_id"
	rootKey   = "session_root"
)

// DeviceMiddleware identifies the browser device by its signed cookie and
// attaches the device's session root.
type DeviceMiddleware struct {
	tokens   *TokenManager
	registry *session.Registry
	cfg      config.DeviceConfig
}

// NewDeviceMiddleware constructs middleware.
func NewDeviceMiddleware(tokens *TokenManager, registry *session.Registry, cfg config.DeviceConfig) *DeviceMiddleware {
	return &DeviceMiddleware{tokens: tokens, registry: registry, cfg: cfg}
}

// Handle resolves or issues the device cookie.
func (m *DeviceMiddleware) Handle(c *fiber.Ctx) error {
	var deviceID string
	renew := true
	if raw := c.Cookies(m.cfg.CookieName); raw != "" {
		if claims, err := m.tokens.ParseToken(raw); err == nil {
			deviceID = claims.DeviceID
			renew = m.tokens.NeedsRenewal(claims, time.Now())
		}
	}
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	if renew {
		if err := m.issue(c, deviceID); err != nil {
			return err
		}
	}

	c.Locals(deviceKey, deviceID)
	c.Locals(rootKey, m.registry.Get(deviceID))
	return c.Next()
}

func (m *DeviceMiddleware) issue(c *fiber.Ctx, deviceID string) error {
	token, expiresAt, err := m.tokens.GenerateToken(deviceID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     m.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// RootFromContext retrieves the device's session root.
func RootFromContext(c *fiber.Ctx) (*session.Root, bool) {
	root, ok := c.Locals(rootKey).(*session.Root)
	return root, ok && root != nil
}

// DeviceIDFromContext retrieves the device identifier.
func DeviceIDFromContext(c *fiber.Ctx) string {
	id, _ := c.Locals(deviceKey).(string)
	return id
}

// Locale propagates the active locale to outbound API calls. The lang query
// parameter wins over the Accept-Language header.
func Locale() fiber.Handler {
	return func(c *fiber.Ctx) error {
		locale := strings.TrimSpace(c.Query("lang"))
		if locale == "" {
			locale = primaryLanguage(c.Get(fiber.HeaderAcceptLanguage))
		}
		if locale != "" {
			c.SetUserContext(apiclient.WithLocale(c.UserContext(), locale))
		}
		return c.Next()
	}
}

// primaryLanguage returns the first tag of an Accept-Language header.
func primaryLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	tag, _, _ := strings.Cut(first, ";")
	tag = strings.TrimSpace(tag)
	if tag == "*" {
		return ""
	}
	return tag
}
