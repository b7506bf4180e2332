package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/booking-portal/internal/config"
	"github.com/spec-kit/booking-portal/internal/domain"
	"github.com/spec-kit/booking-portal/internal/session"
	apperrors "github.com/spec-kit/booking-portal/pkg/util/errorutil"
)

// gate exposes what a guard needs from a session store.
type gate struct {
	ready    <-chan struct{}
	signedIn func() bool
}

// Guard protects pages of one actor class. While the session is loading it
// never redirects; once loaded, a missing identity redirects to login.
type Guard struct {
	wait   time.Duration
	routes map[domain.ActorClass]string
}

// NewGuard builds guards from portal configuration.
func NewGuard(cfg config.PortalConfig) *Guard {
	return &Guard{
		wait: cfg.LoadingWait(),
		routes: map[domain.ActorClass]string{
			domain.ActorConsumer: cfg.ConsumerLoginRoute,
			domain.ActorBusiness: cfg.ProLoginRoute,
			domain.ActorAdmin:    cfg.AdminLoginRoute,
		},
	}
}

// RequireConsumer ensures a consumer is signed in.
func (g *Guard) RequireConsumer() fiber.Handler {
	return g.require(domain.ActorConsumer, func(r *session.Root) gate {
		return gate{ready: r.Consumer.Ready(), signedIn: func() bool { return r.Consumer.Identity() != nil }}
	})
}

// RequireBusiness ensures a business owner is signed in.
func (g *Guard) RequireBusiness() fiber.Handler {
	return g.require(domain.ActorBusiness, func(r *session.Root) gate {
		return gate{ready: r.Business.Ready(), signedIn: func() bool { return r.Business.Session() != nil }}
	})
}

// RequireAdmin ensures an admin is signed in.
func (g *Guard) RequireAdmin() fiber.Handler {
	return g.require(domain.ActorAdmin, func(r *session.Root) gate {
		return gate{ready: r.Admin.Ready(), signedIn: func() bool { return r.Admin.Identity() != nil }}
	})
}

func (g *Guard) require(actor domain.ActorClass, pick func(*session.Root) gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		root, ok := RootFromContext(c)
		if !ok {
			return apperrors.NewInternalError(nil)
		}
		gt := pick(root)
		if !waitReady(c.UserContext(), gt.ready, g.wait) {
			return c.Status(http.StatusAccepted).JSON(fiber.Map{"status": "loading"})
		}
		if !gt.signedIn() {
			return c.Redirect(g.routes[actor], http.StatusFound)
		}
		return c.Next()
	}
}

func waitReady(ctx context.Context, ready <-chan struct{}, wait time.Duration) bool {
	select {
	case <-ready:
		return true
	default:
	}
	if wait <= 0 {
		return false
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ready:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}
