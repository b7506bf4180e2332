package session

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/booking-portal/internal/apiclient"
	"github.com/spec-kit/booking-portal/internal/domain"
	"github.com/spec-kit/booking-portal/internal/events"
	apperrors "github.com/spec-kit/booking-portal/pkg/util/errorutil"
)

// accountAPI binds an account store to its endpoints.
type accountAPI[T any] struct {
	login  func(context.Context, domain.Credentials) (T, string, error)
	me     func(ctx context.Context, token string) (T, error)
	logout func(ctx context.Context, token string) error
	id     func(T) (int64, string)
}

// AccountStore is a token + cached identity session for a single actor class.
// The consumer and admin sessions share it.
type AccountStore[T any] struct {
	base
	api      accountAPI[T]
	identity *T
}

func newAccountStore[T any](actor domain.ActorClass, keys domain.StorageKeys, api accountAPI[T], deps Deps) *AccountStore[T] {
	return &AccountStore[T]{base: newBase(actor, keys, deps.withDefaults()), api: api}
}

// Identity returns a copy of the signed-in identity, nil when signed out.
func (s *AccountStore[T]) Identity() *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	v := *s.identity
	return &v
}

// Login authenticates and replaces any previous session. Failures propagate.
func (s *AccountStore[T]) Login(ctx context.Context, creds domain.Credentials) (T, error) {
	return s.signIn(ctx, "login", func(ctx context.Context) (T, string, error) {
		return s.api.login(ctx, creds)
	})
}

func (s *AccountStore[T]) signIn(ctx context.Context, method string, call func(context.Context) (T, string, error)) (T, error) {
	var zero T
	identity, token, err := call(ctx)
	if err != nil {
		return zero, err
	}
	if err := s.commit(ctx, token, identity); err != nil {
		return zero, err
	}
	id, email := s.api.id(identity)
	s.publish(ctx, events.EventSignedIn, "", events.SignedInPayload{IdentityID: id, Email: email, Method: method})
	return identity, nil
}

func (s *AccountStore[T]) commit(ctx context.Context, token string, identity T) error {
	record, err := json.Marshal(identity)
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("encode identity: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if err := s.persistLocked(ctx, map[string]string{
		s.keys.Identity: string(record),
		s.keys.Token:    token,
	}); err != nil {
		s.identity = nil
		return err
	}
	s.identity = &identity
	return nil
}

// Logout invalidates the server session best-effort and always clears the
// local session. Only a local storage failure is returned.
func (s *AccountStore[T]) Logout(ctx context.Context) error {
	s.begin()
	acknowledged := false
	if token, err := s.Token(ctx); err == nil && token != "" {
		if err := s.api.logout(ctx, token); err != nil {
			s.logger.Debug("server logout failed", zap.Error(err))
		} else {
			acknowledged = true
		}
	}

	s.mu.Lock()
	s.identity = nil
	err := s.clearLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.EventSignedOut, "", events.SignedOutPayload{ServerAcknowledged: acknowledged})
	return err
}

// RefreshUser re-fetches the identity. Failures are swallowed.
func (s *AccountStore[T]) RefreshUser(ctx context.Context) {
	gen := s.snapshot()
	token, err := s.Token(ctx)
	if err != nil || token == "" {
		return
	}
	identity, err := s.api.me(ctx, token)
	if err != nil {
		if apperrors.IsUnauthenticated(err) {
			s.expire(ctx, gen, err.Error())
			return
		}
		s.logger.Debug("identity refresh failed", zap.Error(err))
		return
	}
	if s.apply(ctx, gen, identity) {
		s.publish(ctx, events.EventRefreshed, "", events.RefreshedPayload{Scope: "identity"})
	}
}

// apply stores a background result unless a newer change superseded it.
func (s *AccountStore[T]) apply(ctx context.Context, gen uint64, identity T) bool {
	record, err := json.Marshal(identity)
	if err != nil {
		s.logger.Warn("encode identity", zap.Error(err))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.Debug("discarding stale identity")
		return false
	}
	if err := s.store.Set(ctx, s.keys.Identity, string(record)); err != nil {
		s.logger.Warn("persist identity", zap.Error(err))
	}
	s.identity = &identity
	return true
}

// Init restores the persisted session. Without a stored token no request is
// made. Loading reports true until Init returns; it runs at most once.
func (s *AccountStore[T]) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		defer s.markReady()
		s.init(ctx)
	})
}

func (s *AccountStore[T]) init(ctx context.Context) {
	gen, relevant := s.startup()
	if !relevant {
		return
	}
	token, err := s.Token(ctx)
	if err != nil {
		s.logger.Warn("restore session", zap.Error(err))
		return
	}
	if token == "" {
		return
	}
	if apiclient.TokenExpired(token) {
		s.expire(ctx, gen, "token expired")
		return
	}

	identity, err := s.api.me(ctx, token)
	if err == nil {
		s.apply(ctx, gen, identity)
		return
	}
	if keepOnInitFailure(err) {
		s.logger.Warn("identity check unavailable, using cached identity", zap.Error(err))
		s.restoreCached(ctx, gen)
		return
	}
	s.expire(ctx, gen, err.Error())
}

func (s *AccountStore[T]) restoreCached(ctx context.Context, gen uint64) {
	record, ok, err := s.store.Get(ctx, s.keys.Identity)
	if err != nil || !ok {
		return
	}
	var identity T
	if err := json.Unmarshal([]byte(record), &identity); err != nil {
		s.logger.Warn("decode cached identity", zap.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.identity = &identity
	}
}

// Expire ends the session after the API rejected its token. It no-ops when
// the device is already signed out.
func (s *AccountStore[T]) Expire(ctx context.Context, reason string) {
	if token, err := s.Token(ctx); err == nil && token == "" && s.Identity() == nil {
		return
	}
	s.expire(ctx, s.snapshot(), reason)
}

func (s *AccountStore[T]) expire(ctx context.Context, gen uint64, reason string) {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}
	s.identity = nil
	err := s.clearLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("clear expired session", zap.Error(err))
	}
	s.publish(ctx, events.EventSessionExpired, "", events.SessionExpiredPayload{Reason: reason})
}

// ConsumerStore is the end-user session.
type ConsumerStore struct {
	*AccountStore[domain.User]
	client *apiclient.Client
}

// NewConsumerStore builds the consumer session over auth_token/auth_user.
func NewConsumerStore(deps Deps) *ConsumerStore {
	c := deps.Client
	api := accountAPI[domain.User]{
		login:  c.Login,
		me:     c.CurrentUser,
		logout: c.Logout,
		id:     func(u domain.User) (int64, string) { return u.ID, u.Email },
	}
	return &ConsumerStore{
		AccountStore: newAccountStore(domain.ActorConsumer, domain.ConsumerKeys, api, deps),
		client:       c,
	}
}

// Register creates an account and signs it in. Failures propagate.
func (s *ConsumerStore) Register(ctx context.Context, in domain.RegisterInput) (domain.User, error) {
	return s.signIn(ctx, "register", func(ctx context.Context) (domain.User, string, error) {
		return s.client.Register(ctx, in)
	})
}

// AdminStore is the console operator session. It has no registration.
type AdminStore = AccountStore[domain.Admin]

// NewAdminStore builds the admin session over admin_token/admin_user.
func NewAdminStore(deps Deps) *AdminStore {
	c := deps.Client
	api := accountAPI[domain.Admin]{
		login:  c.AdminLogin,
		me:     c.AdminMe,
		logout: c.AdminLogout,
		id:     func(a domain.Admin) (int64, string) { return a.ID, a.Email },
	}
	return newAccountStore(domain.ActorAdmin, domain.AdminKeys, api, deps)
}
