// Package storage provides the key-value port that backs device-local session
// state, with memory, SQLite, Redis and Postgres implementations.
package storage

import (
	"context"
	"strings"
)

// Store is a string key-value store. Get reports whether the key exists.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks connectivity when the store supports it.
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

type namespaced struct {
	inner  Store
	prefix string
}

// Namespaced scopes every key of inner under ns, so that several devices can
// share one backend without seeing each other's keys.
func Namespaced(inner Store, ns string) Store {
	return &namespaced{inner: inner, prefix: ns + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Remove(ctx context.Context, keys ...string) error {
	scoped := make([]string, len(keys))
	for i, key := range keys {
		scoped[i] = n.prefix + key
	}
	return n.inner.Remove(ctx, scoped...)
}

func (n *namespaced) Ping(ctx context.Context) error {
	return Ping(ctx, n.inner)
}

// DeviceNamespace returns the namespace used for a device's keys.
func DeviceNamespace(deviceID string) string {
	return "device:" + strings.TrimSpace(deviceID)
}
