package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key to be absent, got ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "token", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "token", "def"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	val, ok, err := s.Get(ctx, "token")
	if err != nil || !ok || val != "def" {
		t.Fatalf("expected overwritten value def, got %q ok=%v err=%v", val, ok, err)
	}

	if err := s.Set(ctx, "user", `{"id":1}`); err != nil {
		t.Fatalf("set user: %v", err)
	}
	if err := s.Remove(ctx, "token", "user", "never-set"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	for _, key := range []string{"token", "user"} {
		if _, ok, _ := s.Get(ctx, key); ok {
			t.Errorf("expected %s removed", key)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewSQLite(context.Background(), db)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	exerciseStore(t, store)
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestNamespacedStoreIsolatesDevices(t *testing.T) {
	ctx := context.Background()
	shared := NewMemory()
	a := Namespaced(shared, DeviceNamespace("a"))
	b := Namespaced(shared, DeviceNamespace("b"))

	exerciseStore(t, a)

	if err := a.Set(ctx, "auth_token", "token-a"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "auth_token"); ok {
		t.Error("device b must not see device a's token")
	}
	if val, ok, _ := shared.Get(ctx, "device:a:auth_token"); !ok || val != "token-a" {
		t.Errorf("expected namespaced key in backend, got %q ok=%v", val, ok)
	}
}

func TestSealedStoreEncryptsValues(t *testing.T) {
	ctx := context.Background()
	key, err := ParseSealKey("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	if err != nil {
		t.Fatalf("parse key: %v", err)
	}
	backend := NewMemory()
	store := Sealed(backend, key)

	exerciseStore(t, store)

	if err := store.Set(ctx, "auth_token", "secret-token"); err != nil {
		t.Fatalf("set: %v", err)
	}
	raw, _, _ := backend.Get(ctx, "auth_token")
	if raw == "" || raw == "secret-token" {
		t.Fatalf("expected ciphertext in backend, got %q", raw)
	}
	val, ok, err := store.Get(ctx, "auth_token")
	if err != nil || !ok || val != "secret-token" {
		t.Errorf("expected round trip, got %q ok=%v err=%v", val, ok, err)
	}

	var other [32]byte
	if _, _, err := Sealed(backend, other).Get(ctx, "auth_token"); !errors.Is(err, ErrUnsealable) {
		t.Errorf("expected ErrUnsealable with wrong key, got %v", err)
	}
}

func TestParseSealKeyRejectsShortKeys(t *testing.T) {
	if _, err := ParseSealKey("abcd"); err == nil {
		t.Error("expected error for short key")
	}
}
