package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/spec-kit/booking-portal/internal/apiclient"
	"github.com/spec-kit/booking-portal/internal/config"
	"github.com/spec-kit/booking-portal/internal/events"
	"github.com/spec-kit/booking-portal/internal/storage"
)

// fakeAPI is a booking API stub keyed by "METHOD /path".
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	hits   map[string]int
	auth   map[string]string
	total  int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *apiclient.Client) {
	t.Helper()
	f := &fakeAPI{
		routes: make(map[string]http.HandlerFunc),
		hits:   make(map[string]int),
		auth:   make(map[string]string),
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	client := apiclient.New(config.APIConfig{
		BaseURL:               srv.URL,
		DefaultLocale:         "en",
		TimeoutSeconds:        5,
		BreakerMaxRequests:    1,
		BreakerIntervalSec:    60,
		BreakerOpenTimeoutSec: 60,
		BreakerFailureRatio:   0.5,
		BreakerMinRequests:    1000,
	}, nil, nil)
	return f, client
}

func (f *fakeAPI) handle(route string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[route] = h
}

func (f *fakeAPI) respond(route string, status int, body string) {
	f.handle(route, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func (f *fakeAPI) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

func (f *fakeAPI) lastAuth(route string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth[route]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.hits[route]++
	f.total++
	f.auth[route] = r.Header.Get("Authorization")
	h, ok := f.routes[route]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"route not stubbed"}`))
		return
	}
	h(w, r)
}

// eventLog records every session event published on a dispatcher.
type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func newEventLog() (*eventLog, events.Dispatcher) {
	log := &eventLog{}
	d := events.NewInMemoryDispatcher()
	for _, et := range events.EventTypes() {
		d.Subscribe(et, func(_ context.Context, e events.Event) error {
			log.mu.Lock()
			defer log.mu.Unlock()
			log.events = append(log.events, e)
			return nil
		})
	}
	return log, d
}

func (l *eventLog) types() []events.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]events.EventType, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestDeps(client *apiclient.Client, dispatcher events.Dispatcher) (Deps, *storage.Memory) {
	mem := storage.NewMemory()
	return Deps{DeviceID: "dev-1", Store: mem, Client: client, Events: dispatcher}, mem
}

func mustGet(t *testing.T, s storage.Store, key string) (string, bool) {
	t.Helper()
	v, ok, err := s.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	return v, ok
}
