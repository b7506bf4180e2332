package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/booking-portal/internal/domain"
	"github.com/spec-kit/booking-portal/internal/events"
	"github.com/spec-kit/booking-portal/internal/storage"
	apperrors "github.com/spec-kit/booking-portal/pkg/util/errorutil"
)

const userJSON = `{"id":4,"name":"Amine","email":"a@example.com"}`

func TestConsumerInitWithoutTokenMakesNoRequest(t *testing.T) {
	api, client := newFakeAPI(t)
	deps, _ := newTestDeps(client, nil)
	store := NewConsumerStore(deps)

	if !store.Loading() {
		t.Fatal("expected store to be loading before init")
	}
	store.Init(context.Background())

	if store.Loading() {
		t.Error("expected loading=false after init")
	}
	if store.Identity() != nil {
		t.Error("expected no identity")
	}
	if api.calls() != 0 {
		t.Errorf("expected no API call, got %d", api.calls())
	}
}

func TestConsumerInitClearsRejectedToken(t *testing.T) {
	api, client := newFakeAPI(t)
	api.respond("GET /user", http.StatusUnauthorized, `{"message":"Unauthenticated."}`)
	log, dispatcher := newEventLog()
	deps, mem := newTestDeps(client, dispatcher)
	ctx := context.Background()
	_ = mem.Set(ctx, domain.ConsumerKeys.Token, "stale-token")
	_ = mem.Set(ctx, domain.ConsumerKeys.Identity, userJSON)

	store := NewConsumerStore(deps)
	store.Init(ctx)

	if store.Loading() || store.Identity() != nil {
		t.Fatalf("expected loading=false user=nil, got loading=%v user=%v", store.Loading(), store.Identity())
	}
	if _, ok := mustGet(t, mem, domain.ConsumerKeys.Token); ok {
		t.Error("expected stored token to be removed")
	}
	if _, ok := mustGet(t, mem, domain.ConsumerKeys.Identity); ok {
		t.Error("expected cached identity to be removed")
	}
	if got := api.lastAuth("GET /user"); got != "Bearer stale-token" {
		t.Errorf("expected stored token on identity check, got %q", got)
	}
	if types := log.types(); len(types) != 1 || types[0] != events.EventSessionExpired {
		t.Errorf("expected one session_expired event, got %v", types)
	}
}

func TestConsumerInitRestoresIdentity(t *testing.T) {
	api, client := newFakeAPI(t)
	api.respond("GET /user", http.StatusOK, `{"id":4,"name":"Amine Updated","email":"a@example.com"}`)
	deps, mem := newTestDeps(client, nil)
	_ = mem.Set(context.Background(), domain.ConsumerKeys.Token, "tok")

	store := NewConsumerStore(deps)
	store.Init(context.Background())

	user := store.Identity()
	if user == nil || user.Name != "Amine Updated" {
		t.Fatalf("expected restored identity, got %+v", user)
	}
	if cached, _ := mustGet(t, mem, domain.ConsumerKeys.Identity); cached == "" {
		t.Error("expected identity to be cached")
	}
}

func TestConsumerInitKeepsSessionWhenAPIUnavailable(t *testing.T) {
	api, client := newFakeAPI(t)
	api.respond("GET /user", http.StatusServiceUnavailable, ``)
	deps, mem := newTestDeps(client, nil)
	ctx := context.Background()
	_ = mem.Set(ctx, domain.ConsumerKeys.Token, "tok")
	_ = mem.Set(ctx, domain.ConsumerKeys.Identity, userJSON)

	store := NewConsumerStore(deps)
	store.Init(ctx)

	if user := store.Identity(); user == nil || user.ID != 4 {
		t.Fatalf("expected cached identity, got %+v", user)
	}
	if token, _ := mustGet(t, mem, domain.ConsumerKeys.Token); token != "tok" {
		t.Errorf("expected token kept, got %q", token)
	}
}

func TestConsumerInitExpiredTokenSkipsRequest(t *testing.T) {
	api, client := newFakeAPI(t)
	deps, mem := newTestDeps(client, nil)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_ = mem.Set(context.Background(), domain.ConsumerKeys.Token, expired)

	store := NewConsumerStore(deps)
	store.Init(context.Background())

	if api.calls() != 0 {
		t.Errorf("expected no request for an expired token, got %d", api.calls())
	}
	if _, ok := mustGet(t, mem, domain.ConsumerKeys.Token); ok {
		t.Error("expected expired token to be removed")
	}
}

func TestConsumerLoginTwiceKeepsOneSession(t *testing.T) {
	api, client := newFakeAPI(t)
	tokens := []string{"tok-1", "tok-2"}
	api.handle("POST /login", func(w http.ResponseWriter, r *http.Request) {
		token := tokens[0]
		tokens = tokens[1:]
		_, _ = w.Write([]byte(`{"user":` + userJSON + `,"token":"` + token + `"}`))
	})
	deps, mem := newTestDeps(client, nil)
	store := NewConsumerStore(deps)
	ctx := context.Background()
	creds := domain.Credentials{Email: "a@example.com", Password: "secret123"}

	for i := 0; i < 2; i++ {
		if _, err := store.Login(ctx, creds); err != nil {
			t.Fatalf("login %d: %v", i, err)
		}
	}

	if token, _ := mustGet(t, mem, domain.ConsumerKeys.Token); token != "tok-2" {
		t.Errorf("expected second token to overwrite the first, got %q", token)
	}
	if mem.Len() != 2 {
		t.Errorf("expected exactly token and identity persisted, got %d keys", mem.Len())
	}
	if store.Identity() == nil {
		t.Error("expected identity after login")
	}
}

func TestConsumerLoginFailurePropagates(t *testing.T) {
	api, client := newFakeAPI(t)
	api.respond("POST /login", http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
	deps, mem := newTestDeps(client, nil)
	store := NewConsumerStore(deps)

	_, err := store.Login(context.Background(), domain.Credentials{Email: "a@example.com", Password: "wrong"})
	if !apperrors.IsUnauthenticated(err) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if mem.Len() != 0 || store.Identity() != nil {
		t.Error("expected no session after failed login")
	}
}

func TestConsumerRegisterSignsIn(t *testing.T) {
	api, client := newFakeAPI(t)
	api.respond("POST /register", http.StatusCreated, `{"data":{"user":`+userJSON+`,"token":"new-tok"}}`)
	log, dispatcher := newEventLog()
	deps, mem := newTestDeps(client, dispatcher)
	store := NewConsumerStore(deps)

	user, err := store.Register(context.Background(), domain.RegisterInput{Name: "Amine", Email: "a@example.com", Password: "secret123", PasswordConfirmation: "secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID != 4 {
		t.Errorf("unexpected user %+v", user)
	}
	if token, _ := mustGet(t, mem, domain.ConsumerKeys.Token); token != "new-tok" {
		t.Errorf("expected token persisted, got %q", token)
	}
	if types := log.types(); len(types) != 1 || types[0] != events.EventSignedIn {
		t.Errorf("expected signed_in event, got %v", types)
	}
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	api, client := newFakeAPI(t)
	api.respond("POST /login", http.StatusOK, `{"user":`+userJSON+`,"token":"tok"}`)
	api.respond("POST /logout", http.StatusInternalServerError, ``)
	api.respond("POST /admin/login", http.StatusOK, `{"admin":{"id":1,"name":"Root","email":"r@example.com"},"token":"adm"}`)
	api.respond("POST /admin/logout", http.StatusInternalServerError, ``)
	deps, mem := newTestDeps(client, nil)
	ctx := context.Background()
	creds := domain.Credentials{Email: "x@example.com", Password: "secret123"}

	consumer := NewConsumerStore(deps)
	admin := NewAdminStore(deps)
	if _, err := consumer.Login(ctx, creds); err != nil {
		t.Fatalf("consumer login: %v", err)
	}
	if _, err := admin.Login(ctx, creds); err != nil {
		t.Fatalf("admin login: %v", err)
	}

	if err := consumer.Logout(ctx); err != nil {
		t.Fatalf("consumer logout: %v", err)
	}
	if err := admin.Logout(ctx); err != nil {
		t.Fatalf("admin logout: %v", err)
	}

	for _, key := range append(domain.ConsumerKeys.All(), domain.AdminKeys.All()...) {
		if _, ok := mustGet(t, mem, key); ok {
			t.Errorf("expected %s to be removed", key)
		}
	}
	if consumer.Identity() != nil || admin.Identity() != nil {
		t.Error("expected identities cleared")
	}
	if api.lastAuth("POST /admin/logout") != "Bearer adm" {
		t.Errorf("expected admin token on admin logout, got %q", api.lastAuth("POST /admin/logout"))
	}
}

func TestLogoutKeepsOtherActorClasses(t *testing.T) {
	api, client := newFakeAPI(t)
	api.respond("POST /login", http.StatusOK, `{"user":`+userJSON+`,"token":"tok"}`)
	api.respond("POST /admin/logout", http.StatusNoContent, ``)
	deps, mem := newTestDeps(client, nil)
	ctx := context.Background()

	consumer := NewConsumerStore(deps)
	admin := NewAdminStore(deps)
	if _, err := consumer.Login(ctx, domain.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := admin.Logout(ctx); err != nil {
		t.Fatalf("admin logout: %v", err)
	}
	if _, ok := mustGet(t, mem, domain.ConsumerKeys.Token); !ok {
		t.Error("admin logout must not touch consumer keys")
	}
	if api.count("POST /admin/logout") != 0 {
		t.Error("expected no server logout without an admin token")
	}
}

func TestRefreshUserSwallowsFailure(t *testing.T) {
	api, client := newFakeAPI(t)
	api.respond("POST /login", http.StatusOK, `{"user":`+userJSON+`,"token":"tok"}`)
	api.respond("GET /user", http.StatusInternalServerError, ``)
	deps, _ := newTestDeps(client, nil)
	store := NewConsumerStore(deps)
	ctx := context.Background()
	if _, err := store.Login(ctx, domain.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}

	store.RefreshUser(ctx)

	if user := store.Identity(); user == nil || user.Name != "Amine" {
		t.Errorf("expected identity untouched, got %+v", user)
	}
}

func TestStaleInitResultIsDiscarded(t *testing.T) {
	api, client := newFakeAPI(t)
	reached := make(chan struct{})
	release := make(chan struct{})
	api.handle("GET /user", func(w http.ResponseWriter, r *http.Request) {
		close(reached)
		<-release
		_, _ = w.Write([]byte(userJSON))
	})
	api.respond("POST /logout", http.StatusNoContent, ``)
	deps, mem := newTestDeps(client, nil)
	ctx := context.Background()
	_ = mem.Set(ctx, domain.ConsumerKeys.Token, "tok")

	store := NewConsumerStore(deps)
	done := make(chan struct{})
	go func() {
		store.Init(ctx)
		close(done)
	}()

	<-reached
	if !store.Loading() {
		t.Error("expected loading while the identity check is in flight")
	}
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	close(release)
	<-done

	if store.Identity() != nil {
		t.Error("stale identity check must not sign the device back in")
	}
	if _, ok := mustGet(t, mem, domain.ConsumerKeys.Identity); ok {
		t.Error("stale identity must not be persisted")
	}
}

func TestWaitHonoursContext(t *testing.T) {
	_, client := newFakeAPI(t)
	deps, _ := newTestDeps(client, nil)
	store := NewAdminStore(deps)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := store.Wait(ctx); err == nil {
		t.Fatal("expected wait to time out before init")
	}

	store.Init(context.Background())
	if err := store.Wait(context.Background()); err != nil {
		t.Fatalf("expected wait to return after init, got %v", err)
	}
}

func TestInitAfterLoginIsSkipped(t *testing.T) {
	api, client := newFakeAPI(t)
	api.respond("POST /login", http.StatusOK, `{"user":`+userJSON+`,"token":"tok"}`)
	api.respond("GET /user", http.StatusUnauthorized, `{"message":"Unauthenticated."}`)
	deps, _ := newTestDeps(client, nil)
	store := NewConsumerStore(deps)
	ctx := context.Background()

	if _, err := store.Login(ctx, domain.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	store.Init(ctx)

	if api.count("GET /user") != 0 {
		t.Error("expected no startup check once the user signed in")
	}
	if store.Loading() || store.Identity() == nil {
		t.Error("expected a loaded store that keeps the fresh session")
	}
}

func TestFailedLoginKeepsStartupCheck(t *testing.T) {
	api, client := newFakeAPI(t)
	api.respond("POST /login", http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
	api.respond("GET /user", http.StatusOK, userJSON)
	deps, mem := newTestDeps(client, nil)
	ctx := context.Background()
	_ = mem.Set(ctx, domain.ConsumerKeys.Token, "valid-tok")
	store := NewConsumerStore(deps)

	if _, err := store.Login(ctx, domain.Credentials{Email: "a@example.com", Password: "wrong"}); err == nil {
		t.Fatal("expected login to fail")
	}
	store.Init(ctx)

	if api.count("GET /user") != 1 {
		t.Fatalf("expected the stored token to be checked, got %d calls", api.count("GET /user"))
	}
	if user := store.Identity(); user == nil || user.ID != 4 {
		t.Errorf("expected restored identity, got %+v", user)
	}
	if token, _ := mustGet(t, mem, domain.ConsumerKeys.Token); token != "valid-tok" {
		t.Errorf("expected stored token kept, got %q", token)
	}
}

func TestRefreshUserExpiresRejectedToken(t *testing.T) {
	api, client := newFakeAPI(t)
	api.respond("POST /login", http.StatusOK, `{"user":`+userJSON+`,"token":"tok"}`)
	api.respond("GET /user", http.StatusUnauthorized, `{"message":"Unauthenticated."}`)
	log, dispatcher := newEventLog()
	deps, mem := newTestDeps(client, dispatcher)
	store := NewConsumerStore(deps)
	ctx := context.Background()
	if _, err := store.Login(ctx, domain.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}

	store.RefreshUser(ctx)

	if store.Identity() != nil {
		t.Error("expected identity cleared")
	}
	if mem.Len() != 0 {
		t.Errorf("expected no stored keys, got %d", mem.Len())
	}
	if types := log.types(); len(types) != 2 || types[1] != events.EventSessionExpired {
		t.Errorf("expected signed_in then session_expired, got %v", types)
	}
}

func TestExpireEndsAdminSession(t *testing.T) {
	api, client := newFakeAPI(t)
	api.respond("POST /admin/login", http.StatusOK, `{"admin":{"id":1,"name":"Root","email":"r@example.com"},"token":"adm"}`)
	log, dispatcher := newEventLog()
	deps, mem := newTestDeps(client, dispatcher)
	_ = mem.Set(context.Background(), domain.ConsumerKeys.Token, "user-tok")
	admin := NewAdminStore(deps)
	ctx := context.Background()
	if _, err := admin.Login(ctx, domain.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}

	admin.Expire(ctx, "token rejected")
	admin.Expire(ctx, "token rejected")

	if admin.Identity() != nil {
		t.Error("expected identity cleared")
	}
	if _, ok := mustGet(t, mem, domain.AdminKeys.Token); ok {
		t.Error("expected admin token removed")
	}
	if token, _ := mustGet(t, mem, domain.ConsumerKeys.Token); token != "user-tok" {
		t.Errorf("expected consumer token untouched, got %q", token)
	}
	expired := 0
	for _, typ := range log.types() {
		if typ == events.EventSessionExpired {
			expired++
		}
	}
	if expired != 1 {
		t.Errorf("expected one session_expired event, got %d", expired)
	}
}

// failingStore rejects writes to one key.
type failingStore struct {
	*storage.Memory
	key string
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if key == f.key {
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestLoginPersistFailureLeavesNoSession(t *testing.T) {
	api, client := newFakeAPI(t)
	api.respond("POST /login", http.StatusOK, `{"user":`+userJSON+`,"token":"tok"}`)
	deps, _ := newTestDeps(client, nil)
	mem := storage.NewMemory()
	deps.Store = &failingStore{Memory: mem, key: domain.ConsumerKeys.Identity}
	store := NewConsumerStore(deps)

	_, err := store.Login(context.Background(), domain.Credentials{})
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if store.Identity() != nil {
		t.Error("expected no identity after a failed write")
	}
	if _, ok := mustGet(t, mem, domain.ConsumerKeys.Token); ok {
		t.Error("expected no token left behind")
	}
}
