package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/booking-portal/internal/apiclient"
	"github.com/spec-kit/booking-portal/internal/domain"
	"github.com/spec-kit/booking-portal/internal/events"
	"github.com/spec-kit/booking-portal/internal/storage"
)

// Root groups the three sessions of one browser device. It is created once
// per device and injected into every page that needs a session.
type Root struct {
	DeviceID string
	Consumer *ConsumerStore
	Business *BusinessStore
	Admin    *AdminStore

	// Client carries the consumer token automatically.
	Client *apiclient.Client

	lastSeen  atomic.Int64
	startOnce sync.Once
}

// NewRoot scopes store to the device and builds its three sessions.
func NewRoot(deviceID string, store storage.Store, client *apiclient.Client, dispatcher events.Dispatcher, logger *zap.Logger) *Root {
	scoped := storage.Namespaced(store, storage.DeviceNamespace(deviceID))
	deps := Deps{
		DeviceID: deviceID,
		Store:    scoped,
		Client:   client.WithTokenSource(apiclient.StoredToken(scoped, domain.ConsumerKeys.Token)),
		Events:   dispatcher,
		Logger:   logger,
	}
	r := &Root{
		DeviceID: deviceID,
		Consumer: NewConsumerStore(deps),
		Business: NewBusinessStore(deps),
		Admin:    NewAdminStore(deps),
		Client:   deps.Client,
	}
	r.Touch(time.Now())
	return r
}

// Start runs the three startup checks concurrently in the background.
func (r *Root) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		go r.Consumer.Init(ctx)
		go r.Business.Init(ctx)
		go r.Admin.Init(ctx)
	})
}

// Wait blocks until every store finished loading or ctx is done.
func (r *Root) Wait(ctx context.Context) error {
	if err := r.Consumer.Wait(ctx); err != nil {
		return err
	}
	if err := r.Business.Wait(ctx); err != nil {
		return err
	}
	return r.Admin.Wait(ctx)
}

// Touch records activity on the device.
func (r *Root) Touch(now time.Time) {
	r.lastSeen.Store(now.UnixNano())
}

// LastSeen is the time of the most recent activity.
func (r *Root) LastSeen() time.Time {
	return time.Unix(0, r.lastSeen.Load())
}

// RegistryOptions tunes a Registry.
type RegistryOptions struct {
	// InitTimeout bounds the startup checks of a new root. Zero means no bound.
	InitTimeout time.Duration
}

// Registry maps device IDs to their session roots.
type Registry struct {
	ctx        context.Context
	store      storage.Store
	client     *apiclient.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger
	opts       RegistryOptions
	now        func() time.Time

	mu    sync.Mutex
	roots map[string]*Root
}

// NewRegistry creates an empty registry. Startup checks of new roots run
// under ctx, which should live as long as the process.
func NewRegistry(ctx context.Context, store storage.Store, client *apiclient.Client, dispatcher events.Dispatcher, logger *zap.Logger, opts RegistryOptions) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		ctx:        ctx,
		store:      store,
		client:     client,
		dispatcher: dispatcher,
		logger:     logger,
		opts:       opts,
		now:        time.Now,
		roots:      make(map[string]*Root),
	}
}

// Get returns the root for deviceID, creating and starting it on first use.
func (g *Registry) Get(deviceID string) *Root {
	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()
	if root, ok := g.roots[deviceID]; ok {
		root.Touch(now)
		return root
	}

	root := NewRoot(deviceID, g.store, g.client, g.dispatcher, g.logger)
	root.Touch(now)
	g.roots[deviceID] = root
	g.start(root)
	return root
}

func (g *Registry) start(root *Root) {
	ctx, cancel := g.ctx, context.CancelFunc(func() {})
	if g.opts.InitTimeout > 0 {
		ctx, cancel = context.WithTimeout(g.ctx, g.opts.InitTimeout)
	}
	root.Start(ctx)
	go func() {
		defer cancel()
		_ = root.Wait(ctx)
	}()
}

// Sweep evicts roots idle for longer than idle and returns how many were
// removed. Their persisted sessions stay in storage and are restored on the
// device's next request.
func (g *Registry) Sweep(idle time.Duration) int {
	cutoff := g.now().Add(-idle)
	g.mu.Lock()
	defer g.mu.Unlock()
	removed := 0
	for id, root := range g.roots {
		if root.LastSeen().Before(cutoff) {
			delete(g.roots, id)
			removed++
		}
	}
	if removed > 0 {
		g.logger.Debug("evicted idle devices", zap.Int("count", removed), zap.Int("remaining", len(g.roots)))
	}
	return removed
}

// Len reports the number of live roots.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.roots)
}
