package apiclient

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/booking-portal/internal/storage"
)

type localeKey struct{}

// WithLocale attaches the active locale used for Accept-Language.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, strings.TrimSpace(locale))
}

// LocaleFrom returns the locale attached to ctx, if any.
func LocaleFrom(ctx context.Context) string {
	locale, _ := ctx.Value(localeKey{}).(string)
	return locale
}

// TokenSource supplies the automatic bearer token.
type TokenSource interface {
	Token(ctx context.Context) string
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) string

func (f TokenSourceFunc) Token(ctx context.Context) string { return f(ctx) }

type noToken struct{}

func (noToken) Token(context.Context) string { return "" }

// StoredToken reads the token persisted under key. Read failures yield no token.
func StoredToken(store storage.Store, key string) TokenSource {
	return TokenSourceFunc(func(ctx context.Context) string {
		token, ok, err := store.Get(ctx, key)
		if err != nil || !ok {
			return ""
		}
		return token
	})
}

// TokenExpired reports whether token is a JWT whose exp claim is in the past.
// Opaque tokens are never considered expired; only the API can judge them.
func TokenExpired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(time.Now())
}
