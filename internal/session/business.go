package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/booking-portal/internal/apiclient"
	"github.com/spec-kit/booking-portal/internal/domain"
	"github.com/spec-kit/booking-portal/internal/events"
	apperrors "github.com/spec-kit/booking-portal/pkg/util/errorutil"
)

// BusinessStore is the business-owner session. It holds at most one
// domain.BusinessSession; the per-type accessors are projections of it.
type BusinessStore struct {
	base
	client  *apiclient.Client
	session domain.BusinessSession
}

// NewBusinessStore builds the business session over pro_token/pro_owner/pro_type.
func NewBusinessStore(deps Deps) *BusinessStore {
	deps = deps.withDefaults()
	return &BusinessStore{
		base:   newBase(domain.ActorBusiness, domain.BusinessKeys, deps),
		client: deps.Client,
	}
}

// Session returns the active session, nil when signed out.
func (s *BusinessStore) Session() domain.BusinessSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Identity returns the owner of the active session.
func (s *BusinessStore) Identity() *domain.Owner {
	sess := s.Session()
	if sess == nil {
		return nil
	}
	owner := sess.Identity()
	return &owner
}

// Type returns the active business type.
func (s *BusinessStore) Type() (domain.BusinessType, bool) {
	sess := s.Session()
	if sess == nil {
		return "", false
	}
	return sess.Type(), true
}

// HotelOwner is non-nil only while a hotel session is active.
func (s *BusinessStore) HotelOwner() *domain.Owner {
	if hs, ok := s.Session().(domain.HotelSession); ok {
		return &hs.Owner
	}
	return nil
}

// RestaurantOwner is non-nil only while a restaurant session is active.
func (s *BusinessStore) RestaurantOwner() *domain.Owner {
	if rs, ok := s.Session().(domain.RestaurantSession); ok {
		return &rs.Owner
	}
	return nil
}

// CompanyOwner is non-nil only while a car-rental session is active.
func (s *BusinessStore) CompanyOwner() *domain.Owner {
	if cs, ok := s.Session().(domain.CarRentalSession); ok {
		return &cs.Owner
	}
	return nil
}

func (s *BusinessStore) Hotel() *domain.Hotel {
	if hs, ok := s.Session().(domain.HotelSession); ok && hs.Hotel != nil {
		h := *hs.Hotel
		return &h
	}
	return nil
}

func (s *BusinessStore) Restaurant() *domain.Restaurant {
	if rs, ok := s.Session().(domain.RestaurantSession); ok && rs.Restaurant != nil {
		r := *rs.Restaurant
		return &r
	}
	return nil
}

func (s *BusinessStore) Company() *domain.Company {
	if cs, ok := s.Session().(domain.CarRentalSession); ok && cs.Company != nil {
		c := *cs.Company
		return &c
	}
	return nil
}

// Login authenticates an owner of type t through the unified endpoint and
// replaces any previous business session. Failures propagate.
func (s *BusinessStore) Login(ctx context.Context, creds domain.Credentials, t domain.BusinessType) (domain.BusinessSession, error) {
	return s.signIn(ctx, "login", func(ctx context.Context) (domain.BusinessSession, string, error) {
		return s.client.ProLogin(ctx, creds, t)
	})
}

// Register creates an owner account and signs it in. Failures propagate.
func (s *BusinessStore) Register(ctx context.Context, in domain.BusinessRegisterInput) (domain.BusinessSession, error) {
	if _, err := domain.ParseBusinessType(string(in.Type)); err != nil {
		return nil, apperrors.NewValidationError("invalid business type", map[string]any{"type": err.Error()})
	}
	return s.signIn(ctx, "register", func(ctx context.Context) (domain.BusinessSession, string, error) {
		return s.client.ProRegister(ctx, in)
	})
}

func (s *BusinessStore) signIn(ctx context.Context, method string, call func(context.Context) (domain.BusinessSession, string, error)) (domain.BusinessSession, error) {
	sess, token, err := call(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, token, sess); err != nil {
		return nil, err
	}
	owner := sess.Identity()
	s.publish(ctx, events.EventSignedIn, sess.Type(), events.SignedInPayload{IdentityID: owner.ID, Email: owner.Email, Method: method})
	return sess, nil
}

func (s *BusinessStore) commit(ctx context.Context, token string, sess domain.BusinessSession) error {
	record, err := domain.EncodeOwnerRecord(sess)
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("encode owner: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if err := s.persistLocked(ctx, map[string]string{
		s.keys.Identity: string(record),
		s.keys.Type:     string(sess.Type()),
		s.keys.Token:    token,
	}); err != nil {
		s.session = nil
		return err
	}
	s.session = sess
	return nil
}

// storedType reads the persisted type tag. A missing or unrecognised tag
// yields false.
func (s *BusinessStore) storedType(ctx context.Context) (domain.BusinessType, bool) {
	raw, ok, err := s.store.Get(ctx, s.keys.Type)
	if err != nil || !ok {
		return "", false
	}
	t, err := domain.ParseBusinessType(raw)
	if err != nil {
		s.logger.Warn("ignoring stored business type", zap.Error(err))
		return "", false
	}
	return t, true
}

// Logout invalidates the server session best-effort and always clears token,
// owner and type. Only a local storage failure is returned.
func (s *BusinessStore) Logout(ctx context.Context) error {
	s.begin()
	t, hasType := s.Type()
	if !hasType {
		t, hasType = s.storedType(ctx)
	}
	acknowledged := false
	if token, err := s.Token(ctx); err == nil && token != "" && hasType {
		if err := s.client.OwnerLogout(ctx, t, token); err != nil {
			s.logger.Debug("server logout failed", zap.Error(err))
		} else {
			acknowledged = true
		}
	}

	s.mu.Lock()
	s.session = nil
	err := s.clearLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.EventSignedOut, t, events.SignedOutPayload{ServerAcknowledged: acknowledged})
	return err
}

// RefreshBusiness re-fetches only the nested business object and merges it
// into the session, keeping owner fields. It no-ops without an active type
// or token. A business that does not exist yet is not an error.
func (s *BusinessStore) RefreshBusiness(ctx context.Context) {
	gen := s.snapshot()
	t, ok := s.storedType(ctx)
	if !ok {
		return
	}
	token, err := s.Token(ctx)
	if err != nil || token == "" {
		return
	}

	raw, err := s.client.OwnerBusiness(ctx, t, token)
	if err != nil {
		if apperrors.IsUnauthenticated(err) {
			s.expire(ctx, gen, t, err.Error())
			return
		}
		if apperrors.IsNotFound(err) {
			s.logger.Debug("business not created yet", zap.String("business_type", string(t)))
		} else {
			s.logger.Debug("business refresh failed", zap.Error(err))
		}
		return
	}

	applied := s.update(ctx, gen, t, func(current domain.BusinessSession) (domain.BusinessSession, error) {
		return domain.WithBusiness(current, raw)
	})
	if applied {
		s.publish(ctx, events.EventRefreshed, t, events.RefreshedPayload{Scope: t.BusinessKey()})
	}
}

// RefreshOwner re-fetches the owner record. A nested business in the
// response replaces the cached one; otherwise the cached business is kept.
func (s *BusinessStore) RefreshOwner(ctx context.Context) {
	gen := s.snapshot()
	t, ok := s.storedType(ctx)
	if !ok {
		return
	}
	token, err := s.Token(ctx)
	if err != nil || token == "" {
		return
	}

	fresh, err := s.client.OwnerMe(ctx, t, token)
	if err != nil {
		if apperrors.IsUnauthenticated(err) {
			s.expire(ctx, gen, t, err.Error())
			return
		}
		s.logger.Debug("owner refresh failed", zap.Error(err))
		return
	}

	applied := s.update(ctx, gen, t, func(current domain.BusinessSession) (domain.BusinessSession, error) {
		if domain.HasBusiness(fresh) {
			return fresh, nil
		}
		return domain.WithOwner(current, fresh.Identity()), nil
	})
	if applied {
		s.publish(ctx, events.EventRefreshed, t, events.RefreshedPayload{Scope: "owner"})
	}
}

// update merges a background result into the current session of type t
// unless a newer change superseded it.
func (s *BusinessStore) update(ctx context.Context, gen uint64, t domain.BusinessType, merge func(domain.BusinessSession) (domain.BusinessSession, error)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.session == nil || s.session.Type() != t {
		s.logger.Debug("discarding stale business session update")
		return false
	}
	merged, err := merge(s.session)
	if err != nil {
		s.logger.Warn("merge business session", zap.Error(err))
		return false
	}
	record, err := domain.EncodeOwnerRecord(merged)
	if err != nil {
		s.logger.Warn("encode owner", zap.Error(err))
		return false
	}
	if err := s.store.Set(ctx, s.keys.Identity, string(record)); err != nil {
		s.logger.Warn("persist owner", zap.Error(err))
	}
	s.session = merged
	return true
}

// Init restores the persisted session when both token and type are stored.
// Loading reports true until Init returns; it runs at most once.
func (s *BusinessStore) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		defer s.markReady()
		s.init(ctx)
	})
}

func (s *BusinessStore) init(ctx context.Context) {
	gen, relevant := s.startup()
	if !relevant {
		return
	}
	token, err := s.Token(ctx)
	if err != nil {
		s.logger.Warn("restore session", zap.Error(err))
		return
	}
	t, hasType := s.storedType(ctx)
	if token == "" || !hasType {
		return
	}
	if apiclient.TokenExpired(token) {
		s.expire(ctx, gen, t, "token expired")
		return
	}

	sess, err := s.client.OwnerMe(ctx, t, token)
	if err == nil {
		s.restore(ctx, gen, sess, true)
		return
	}
	if keepOnInitFailure(err) {
		s.logger.Warn("owner check unavailable, using cached owner", zap.Error(err))
		s.restoreCached(ctx, gen, t)
		return
	}
	s.expire(ctx, gen, t, err.Error())
}

func (s *BusinessStore) restoreCached(ctx context.Context, gen uint64, t domain.BusinessType) {
	record, ok, err := s.store.Get(ctx, s.keys.Identity)
	if err != nil || !ok {
		return
	}
	sess, err := domain.DecodeOwnerRecord(t, []byte(record))
	if err != nil {
		s.logger.Warn("decode cached owner", zap.Error(err))
		return
	}
	s.restore(ctx, gen, sess, false)
}

func (s *BusinessStore) restore(ctx context.Context, gen uint64, sess domain.BusinessSession, persist bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.Debug("discarding stale owner")
		return
	}
	if persist {
		if record, err := domain.EncodeOwnerRecord(sess); err == nil {
			if err := s.store.Set(ctx, s.keys.Identity, string(record)); err != nil {
				s.logger.Warn("persist owner", zap.Error(err))
			}
		}
	}
	s.session = sess
}

// Expire ends the session after the API rejected its token. It no-ops when
// the device is already signed out.
func (s *BusinessStore) Expire(ctx context.Context, reason string) {
	t, signedIn := s.Type()
	if !signedIn {
		var stored bool
		if t, stored = s.storedType(ctx); !stored {
			if token, err := s.Token(ctx); err == nil && token == "" {
				return
			}
		}
	}
	s.expire(ctx, s.snapshot(), t, reason)
}

func (s *BusinessStore) expire(ctx context.Context, gen uint64, t domain.BusinessType, reason string) {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}
	s.session = nil
	err := s.clearLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("clear expired session", zap.Error(err))
	}
	s.publish(ctx, events.EventSessionExpired, t, events.SessionExpiredPayload{Reason: reason})
}
