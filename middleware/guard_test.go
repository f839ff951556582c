package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/margitantal68/authgate"
	"github.com/margitantal68/authgate/internal/rate"
)

type stubDirectory struct {
	mu         sync.Mutex
	byUsername map[string]authgate.UserRecord
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{byUsername: map[string]authgate.UserRecord{}}
}

func (d *stubDirectory) GetUserByUsername(ctx context.Context, username string) (authgate.UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	record, ok := d.byUsername[username]
	if !ok {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}
	return record, nil
}

func (d *stubDirectory) GetUserByID(ctx context.Context, id string) (authgate.UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, record := range d.byUsername {
		if record.ID == id {
			return record, nil
		}
	}
	return authgate.UserRecord{}, authgate.ErrUserNotFound
}

func (d *stubDirectory) CreateUser(ctx context.Context, input authgate.CreateUserInput) (authgate.UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byUsername[input.Username]; ok {
		return authgate.UserRecord{}, authgate.ErrUsernameTaken
	}
	record := authgate.UserRecord{
		ID:           "id-" + input.Username,
		Username:     input.Username,
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
	}
	d.byUsername[record.Username] = record
	return record, nil
}

func (d *stubDirectory) UpdatePasswordHash(ctx context.Context, id string, newHash string) error {
	return nil
}

func (d *stubDirectory) DeleteUser(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for username, record := range d.byUsername {
		if record.ID == id {
			delete(d.byUsername, username)
			return nil
		}
	}
	return authgate.ErrUserNotFound
}

func (d *stubDirectory) ListUsers(ctx context.Context) ([]authgate.UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	records := make([]authgate.UserRecord, 0, len(d.byUsername))
	for _, record := range d.byUsername {
		records = append(records, record)
	}
	return records, nil
}

func newGuardService(t *testing.T) (*authgate.Service, *stubDirectory) {
	t.Helper()

	cfg := authgate.DefaultConfig()
	cfg.JWT.Secret = []byte("guard-test-secret")
	cfg.JWT.AccessTTL = time.Minute
	cfg.Password = authgate.PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}

	dir := newStubDirectory()
	svc, err := authgate.New().
		WithConfig(cfg).
		WithRateStore(rate.NewMemoryStore()).
		WithUserDirectory(dir).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(svc.Close)

	return svc, dir
}

func loginToken(t *testing.T, svc *authgate.Service, dir *stubDirectory) string {
	t.Helper()

	ctx := context.Background()
	if _, err := svc.Register(ctx, authgate.RegisterRequest{
		Username: "alice", FullName: "Alice A", Email: "a@x.com", Password: "pw123",
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	result, err := svc.Login(ctx, "alice", "pw123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return result.AccessToken
}

func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			http.Error(w, "no principal", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(principal.Username))
	})
}

func TestGuardAllowsValidToken(t *testing.T) {
	svc, dir := newGuardService(t)
	token := loginToken(t, svc, dir)

	handler := Guard(svc)(echoPrincipal())

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "alice" {
		t.Fatalf("expected principal alice, got %q", rec.Body.String())
	}
}

func TestGuardFailuresIndistinguishable(t *testing.T) {
	svc, dir := newGuardService(t)
	token := loginToken(t, svc, dir)

	// A valid token whose subject no longer exists.
	record, err := dir.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	vanishedToken := token
	handler := Guard(svc)(echoPrincipal())

	tamperedToken := token[:len(token)-2] + "xx"

	cases := map[string]func(*http.Request){
		"no header":       func(r *http.Request) {},
		"not bearer":      func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") },
		"empty bearer":    func(r *http.Request) { r.Header.Set("Authorization", "Bearer ") },
		"tampered token":  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tamperedToken) },
		"unknown subject": func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+vanishedToken) },
	}

	var bodies []string
	for name, arrange := range cases {
		if name == "unknown subject" {
			if err := dir.DeleteUser(context.Background(), record.ID); err != nil {
				t.Fatalf("DeleteUser failed: %v", err)
			}
		}

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		arrange(req)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
		if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
			t.Fatalf("%s: expected WWW-Authenticate: Bearer, got %q", name, got)
		}
		bodies = append(bodies, rec.Body.String())
	}

	for _, body := range bodies[1:] {
		if body != bodies[0] {
			t.Fatal("expected identical 401 bodies for every failure cause")
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	svc, _ := newGuardService(t)

	handler := RateLimit(svc, ClientKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 1; i <= 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/limited/", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/limited/", nil)
	req.RemoteAddr = "10.0.0.1:4000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid 429 body: %v", err)
	}
	if body["detail"] != "Rate limit exceeded. Please try again in a minute." {
		t.Fatalf("unexpected 429 detail: %q", body["detail"])
	}

	// A different client key is unaffected.
	other := httptest.NewRequest(http.MethodGet, "/limited/", nil)
	other.RemoteAddr = "10.0.0.2:4000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("other client: expected 200, got %d", rec.Code)
	}
}

func TestClientKey(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote addr", "10.0.0.1:4000", "", "10.0.0.1"},
		{"forwarded single", "10.0.0.1:4000", "203.0.113.7", "203.0.113.7"},
		{"forwarded chain", "10.0.0.1:4000", "203.0.113.7, 10.0.0.1", "203.0.113.7"},
		{"forwarded padded", "10.0.0.1:4000", "  203.0.113.7  ", "203.0.113.7"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tc.remoteAddr
		if tc.forwarded != "" {
			req.Header.Set("X-Forwarded-For", tc.forwarded)
		}
		if got := ClientKey(req); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}
