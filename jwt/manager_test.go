package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewManager(Config{
		Secret: []byte("unit-test-secret"),
		TTL:    30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	return m
}

func TestIssueDecodeRoundTrip(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := m.Issue("alice", now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected three dot-separated segments, got %q", token)
	}

	claims, err := m.Decode(token, now)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected subject alice, got %q", claims.Subject)
	}
	if !claims.ExpiresAt.Time.Equal(now.Add(30 * time.Minute)) {
		t.Fatalf("unexpected expiry: %v", claims.ExpiresAt.Time)
	}
	if !claims.IssuedAt.Time.Equal(now) {
		t.Fatalf("unexpected issued-at: %v", claims.IssuedAt.Time)
	}
}

func TestDecodeExpired(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := m.Issue("alice", now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// exp is inclusive: now >= exp must already fail.
	for _, at := range []time.Time{
		now.Add(30 * time.Minute),
		now.Add(30*time.Minute + time.Second),
		now.Add(24 * time.Hour),
	} {
		if _, err := m.Decode(token, at); !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("Decode at %v: expected ErrTokenExpired, got %v", at, err)
		}
	}

	// Just inside the lifetime still verifies.
	if _, err := m.Decode(token, now.Add(30*time.Minute-time.Second)); err != nil {
		t.Fatalf("Decode inside lifetime failed: %v", err)
	}
}

func TestDecodeTamperedSegments(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := m.Issue("alice", now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(parts))
	}

	flip := func(s string) string {
		mid := len(s) / 2
		c := byte('A')
		if s[mid] == c {
			c = 'B'
		}
		return s[:mid] + string(c) + s[mid+1:]
	}

	cases := map[string]string{
		"payload":   parts[0] + "." + flip(parts[1]) + "." + parts[2],
		"signature": parts[0] + "." + parts[1] + "." + flip(parts[2]),
		"truncated": token[:len(token)-1],
		"garbage":   "not.a.token",
		"empty":     "",
	}
	for name, tampered := range cases {
		if _, err := m.Decode(tampered, now); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("%s: expected ErrTokenInvalid, got %v", name, err)
		}
	}
}

func TestDecodeRejectsForeignKey(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager(Config{Secret: []byte("another-secret"), TTL: 30 * time.Minute})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token, err := other.Issue("alice", now)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := m.Decode(token, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for foreign key, got %v", err)
	}
}

func TestDecodeRejectsNoneAlgorithm(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Hand-built token claiming alg "none": the allow-list must reject it
	// regardless of what the header declares.
	enc := func(s string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(s))
	}
	header := enc(`{"alg":"none","typ":"JWT"}`)
	payload := enc(`{"sub":"alice","iat":1767268800,"exp":1767270600}`)
	token := header + "." + payload + "."

	if _, err := m.Decode(token, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for alg=none, got %v", err)
	}
}

func TestDecodeRequiresExpiry(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// A token without exp must not be accepted even with a valid signature.
	enc := func(s string) string {
		return base64.RawURLEncoding.EncodeToString([]byte(s))
	}
	header := enc(`{"alg":"HS256","typ":"JWT"}`)
	payload := enc(`{"sub":"alice"}`)
	unsigned := header + "." + payload

	// Properly signed with the real key, so only the missing claim can fail.
	mac := hmac.New(sha256.New, []byte("unit-test-secret"))
	mac.Write([]byte(unsigned))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	if _, err := m.Decode(unsigned+"."+sig, now); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for missing exp, got %v", err)
	}
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(Config{Secret: nil, TTL: time.Minute}); err == nil {
		t.Fatal("expected empty secret to be rejected")
	}
	if _, err := NewManager(Config{Secret: []byte("k"), TTL: 0}); err == nil {
		t.Fatal("expected zero TTL to be rejected")
	}
}

func TestIssueEmptySubject(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Issue("", time.Now()); err == nil {
		t.Fatal("expected empty subject to be rejected")
	}
}
