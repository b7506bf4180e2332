package session

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/spec-kit/booking-portal/internal/domain"
	"github.com/spec-kit/booking-portal/internal/storage"
)

func TestRegistryCreatesOneRootPerDevice(t *testing.T) {
	_, client := newFakeAPI(t)
	mem := storage.NewMemory()
	reg := NewRegistry(context.Background(), mem, client, nil, nil, RegistryOptions{InitTimeout: time.Second})

	a := reg.Get("device-a")
	if again := reg.Get("device-a"); again != a {
		t.Error("expected the same root for the same device")
	}
	if b := reg.Get("device-b"); b == a {
		t.Error("expected distinct roots per device")
	}
	if reg.Len() != 2 {
		t.Errorf("expected 2 roots, got %d", reg.Len())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := a.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if a.Consumer.Loading() || a.Business.Loading() || a.Admin.Loading() {
		t.Error("expected every store loaded after Wait")
	}
}

func TestRootScopesStorageToDevice(t *testing.T) {
	api, client := newFakeAPI(t)
	api.respond("POST /login", http.StatusOK, `{"user":`+userJSON+`,"token":"tok-a"}`)
	api.respond("GET /hotels", http.StatusOK, `{"data":[],"current_page":1,"last_page":1,"total":0}`)
	mem := storage.NewMemory()
	ctx := context.Background()

	a := NewRoot("device-a", mem, client, nil, nil)
	b := NewRoot("device-b", mem, client, nil, nil)
	if _, err := a.Consumer.Login(ctx, domain.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}

	if v, _ := mustGet(t, mem, "device:device-a:"+domain.ConsumerKeys.Token); v != "tok-a" {
		t.Errorf("expected namespaced token, got %q", v)
	}
	if token, _ := b.Consumer.Token(ctx); token != "" {
		t.Errorf("expected device-b to stay signed out, got %q", token)
	}

	if _, err := a.Client.ListHotels(ctx, domain.CatalogQuery{}); err != nil {
		t.Fatalf("list hotels: %v", err)
	}
	if got := api.lastAuth("GET /hotels"); got != "Bearer tok-a" {
		t.Errorf("expected device-a consumer token, got %q", got)
	}
	if _, err := b.Client.ListHotels(ctx, domain.CatalogQuery{}); err != nil {
		t.Fatalf("list hotels: %v", err)
	}
	if got := api.lastAuth("GET /hotels"); got != "" {
		t.Errorf("expected no token for device-b, got %q", got)
	}
}

func TestRegistrySweepEvictsIdleRoots(t *testing.T) {
	_, client := newFakeAPI(t)
	reg := NewRegistry(context.Background(), storage.NewMemory(), client, nil, nil, RegistryOptions{})
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return t0 }
	reg.Get("idle")
	reg.Get("active")

	reg.now = func() time.Time { return t0.Add(2 * time.Hour) }
	reg.Get("active")

	if removed := reg.Sweep(time.Hour); removed != 1 {
		t.Errorf("expected 1 eviction, got %d", removed)
	}
	if reg.Len() != 1 {
		t.Errorf("expected 1 remaining root, got %d", reg.Len())
	}
}

func TestEvictedRootRestoresFromStorage(t *testing.T) {
	api, client := newFakeAPI(t)
	api.respond("POST /admin/login", http.StatusOK, `{"admin":{"id":1,"name":"Root","email":"r@example.com"},"token":"adm"}`)
	api.respond("GET /admin/me", http.StatusOK, `{"admin":{"id":1,"name":"Root","email":"r@example.com"}}`)
	mem := storage.NewMemory()
	reg := NewRegistry(context.Background(), mem, client, nil, nil, RegistryOptions{InitTimeout: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	first := reg.Get("dev")
	if err := first.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if _, err := first.Admin.Login(ctx, domain.Credentials{}); err != nil {
		t.Fatalf("admin login: %v", err)
	}
	reg.Sweep(-time.Minute)

	second := reg.Get("dev")
	if second == first {
		t.Fatal("expected a fresh root after eviction")
	}
	if err := second.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if admin := second.Admin.Identity(); admin == nil || admin.Name != "Root" {
		t.Errorf("expected admin session restored, got %+v", admin)
	}
	if api.lastAuth("GET /admin/me") != "Bearer adm" {
		t.Errorf("expected admin token on restore, got %q", api.lastAuth("GET /admin/me"))
	}
}
