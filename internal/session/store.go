package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/booking-portal/internal/apiclient"
	"github.com/spec-kit/booking-portal/internal/domain"
	"github.com/spec-kit/booking-portal/internal/events"
	"github.com/spec-kit/booking-portal/internal/storage"
	apperrors "github.com/spec-kit/booking-portal/pkg/util/errorutil"
)

// Deps are the collaborators shared by the stores of one device.
// Store must already be scoped to the device.
type Deps struct {
	DeviceID string
	Store    storage.Store
	Client   *apiclient.Client
	Events   events.Dispatcher
	Logger   *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Events == nil {
		d.Events = events.Nop()
	}
	return d
}

// base carries what every store has in common: exclusive ownership of a set of
// storage keys, the loading gate and the request generation.
type base struct {
	actor    domain.ActorClass
	keys     domain.StorageKeys
	store    storage.Store
	events   events.Dispatcher
	logger   *zap.Logger
	deviceID string

	mu         sync.Mutex
	generation uint64

	ready     chan struct{}
	readyOnce sync.Once
	initOnce  sync.Once
}

func newBase(actor domain.ActorClass, keys domain.StorageKeys, deps Deps) base {
	return base{
		actor:    actor,
		keys:     keys,
		store:    deps.Store,
		events:   deps.Events,
		logger:   deps.Logger.With(zap.String("actor", string(actor)), zap.String("device_id", deps.DeviceID)),
		deviceID: deps.DeviceID,
		ready:    make(chan struct{}),
	}
}

// Loading reports whether the startup identity check is still in flight.
func (b *base) Loading() bool {
	select {
	case <-b.ready:
		return false
	default:
		return true
	}
}

// Wait blocks until the startup identity check completed or ctx is done.
func (b *base) Wait(ctx context.Context) error {
	select {
	case <-b.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready is closed once the startup identity check completed.
func (b *base) Ready() <-chan struct{} {
	return b.ready
}

func (b *base) markReady() {
	b.readyOnce.Do(func() { close(b.ready) })
}

// Token returns the persisted bearer token, empty when signed out.
func (b *base) Token(ctx context.Context) (string, error) {
	token, ok, err := b.store.Get(ctx, b.keys.Token)
	if err != nil {
		return "", apperrors.NewInternalError(fmt.Errorf("read session token: %w", err))
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// begin starts a user-initiated change and invalidates every background
// result still in flight.
func (b *base) begin() {
	b.mu.Lock()
	b.generation++
	b.mu.Unlock()
}

// snapshot returns the generation a background operation must still observe
// when it applies its result.
func (b *base) snapshot() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}

// startup returns the generation the startup check applies against and
// whether the check is still relevant. Once a user operation has run, the
// session it produced wins and the check is skipped.
func (b *base) startup() (uint64, bool) {
	gen := b.snapshot()
	return gen, gen == 0
}

// persistLocked writes values; the token is written last so that a stored
// token always has its record next to it. On failure every key of the actor
// class is removed. Callers hold b.mu.
func (b *base) persistLocked(ctx context.Context, values map[string]string) error {
	order := make([]string, 0, len(values))
	for key := range values {
		if key != b.keys.Token {
			order = append(order, key)
		}
	}
	sort.Strings(order)
	order = append(order, b.keys.Token)

	for _, key := range order {
		if err := b.store.Set(ctx, key, values[key]); err != nil {
			if clearErr := b.clearLocked(ctx); clearErr != nil {
				b.logger.Warn("clear partial session", zap.Error(clearErr))
			}
			return apperrors.NewInternalError(fmt.Errorf("persist %s: %w", key, err))
		}
	}
	return nil
}

// clearLocked removes every key of the actor class. Callers hold b.mu.
func (b *base) clearLocked(ctx context.Context) error {
	b.generation++
	if err := b.store.Remove(ctx, b.keys.All()...); err != nil {
		return apperrors.NewInternalError(fmt.Errorf("clear session: %w", err))
	}
	return nil
}

// keepOnInitFailure reports whether a failed startup check leaves the stored
// session in place. Only an unreachable API does; every answer from the API
// itself means the token is no longer usable.
func keepOnInitFailure(err error) bool {
	return apperrors.IsTransport(err) || apperrors.HasCode(err, apperrors.CodeUpstream)
}

func (b *base) publish(ctx context.Context, eventType events.EventType, businessType domain.BusinessType, payload interface{}) {
	event := events.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		DeviceID:     b.deviceID,
		Actor:        b.actor,
		BusinessType: businessType,
		Timestamp:    time.Now().UTC(),
		Payload:      payload,
	}
	if err := b.events.Publish(ctx, event); err != nil {
		b.logger.Warn("session event handler failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}
