package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mindmap-server/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func TestCredentials(t *testing.T) {
	creds := NewCredentials(bcrypt.MinCost)

	h1, err := creds.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	h2, err := creds.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if h1 == h2 {
		t.Error("Hashes must be salted")
	}
	if !creds.Verify("s3cret", h1) || !creds.Verify("s3cret", h2) {
		t.Error("Both hashes should verify")
	}
	if creds.Verify("wrong", h1) {
		t.Error("Wrong password should not verify")
	}
	if creds.Verify("s3cret", "not-a-bcrypt-hash") || creds.Verify("s3cret", "") {
		t.Error("Malformed hashes should not verify")
	}
}

func TestNewCredentials_OutOfRangeCost(t *testing.T) {
	tests := []struct {
		cost int
		want int
	}{
		{0, bcrypt.DefaultCost},
		{99, bcrypt.DefaultCost},
		{12, 12},
	}
	for _, tt := range tests {
		if got := NewCredentials(tt.cost).cost; got != tt.want {
			t.Errorf("NewCredentials(%d).cost = %d, want %d", tt.cost, got, tt.want)
		}
	}
}

func TestAuthenticated(t *testing.T) {
	if d := Authenticated(nil); d != DenyUnauthenticated || d.Allowed() {
		t.Errorf("Expected unauthenticated for nil actor, got %s", d)
	}
	if d := Authenticated(&Actor{ID: "user-alice"}); d != Allow || !d.Allowed() {
		t.Errorf("Expected allow for an actor, got %s", d)
	}
}

func TestCan(t *testing.T) {
	alice := &Actor{ID: "user-alice"}
	admin := &Actor{ID: "user-admin", IsAdmin: true}

	tests := []struct {
		name    string
		actor   *Actor
		ownerID string
		want    Decision
	}{
		{"no actor", nil, "user-alice", DenyUnauthenticated},
		{"owner", alice, "user-alice", Allow},
		{"other user", alice, "user-bob", DenyForbidden},
		{"orphan row", alice, "", DenyForbidden},
		{"admin on other user", admin, "user-bob", Allow},
		{"admin on orphan", admin, "", Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Can(tt.actor, tt.ownerID); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCanManageAndDeleteUsers(t *testing.T) {
	alice := &Actor{ID: "user-alice"}
	admin := &Actor{ID: "user-admin", IsAdmin: true}
	plain := &models.User{ID: "user-bob"}
	otherAdmin := &models.User{ID: "user-root", IsAdmin: true}

	tests := []struct {
		name string
		got  Decision
		want Decision
	}{
		{"manage without actor", CanManageUsers(nil), DenyUnauthenticated},
		{"manage as user", CanManageUsers(alice), DenyForbidden},
		{"manage as admin", CanManageUsers(admin), Allow},
		{"user deletes user", CanDeleteUser(alice, plain), DenyForbidden},
		{"admin deletes user", CanDeleteUser(admin, plain), Allow},
		{"admin deletes admin", CanDeleteUser(admin, otherAdmin), DenyForbidden},
		{"admin deletes self", CanDeleteUser(admin, &models.User{ID: admin.ID, IsAdmin: true}), DenyForbidden},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, tt.got)
		}
	}
}

func TestDecisionErr(t *testing.T) {
	if err := Allow.Err(); err != nil {
		t.Errorf("Expected nil for Allow, got %v", err)
	}
	if err := DenyUnauthenticated.Err(); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}
	if err := DenyForbidden.Err(); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
	if DenyForbidden.String() != "forbidden" {
		t.Errorf("Unexpected string %q", DenyForbidden.String())
	}
}

func newTestManager(store SessionStore) (*SessionManager, *time.Time) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewSessionManager(store, 31*24*time.Hour, zerolog.Nop())
	m.SetClock(func() time.Time { return now })
	return m, &now
}

// mustResolve resolves token and fails the test on a store error
func mustResolve(t *testing.T, m *SessionManager, token string) (string, bool) {
	t.Helper()
	userID, ok, err := m.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return userID, ok
}

func TestSessionManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m, _ := newTestManager(store)

	token, err := m.Create(ctx, "user-alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(token) != 43 {
		t.Errorf("Expected a 43 character token, got %d", len(token))
	}

	if userID, ok := mustResolve(t, m, token); !ok || userID != "user-alice" {
		t.Errorf("Expected user-alice, got %q (ok=%v)", userID, ok)
	}

	// the raw token is never stored
	if s, _ := store.Get(ctx, token); s != nil {
		t.Error("Raw token must not be a store key")
	}
	if s, _ := store.Get(ctx, HashToken(token)); s == nil {
		t.Error("Hashed token should be stored")
	}

	if err := m.Destroy(ctx, token); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if _, ok := mustResolve(t, m, token); ok {
		t.Error("Destroyed session should not resolve")
	}

	// destroying twice is fine
	if err := m.Destroy(ctx, token); err != nil {
		t.Errorf("Second destroy failed: %v", err)
	}
}

func TestSessionManager_UnknownToken(t *testing.T) {
	m, _ := newTestManager(NewMemoryStore())

	for _, token := range []string{"never-issued", ""} {
		if _, ok := mustResolve(t, m, token); ok {
			t.Errorf("Token %q should not resolve", token)
		}
	}
}

func TestSessionManager_SlidingExpiry(t *testing.T) {
	store := NewMemoryStore()
	m, now := newTestManager(store)

	token, err := m.Create(context.Background(), "user-alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// activity within the TTL slides the window
	for i := 0; i < 2; i++ {
		*now = now.Add(30 * 24 * time.Hour)
		if _, ok := mustResolve(t, m, token); !ok {
			t.Fatalf("Session should still be alive after step %d", i+1)
		}
	}

	// idle past the TTL expires and deletes the session
	*now = now.Add(32 * 24 * time.Hour)
	if _, ok := mustResolve(t, m, token); ok {
		t.Error("Idle session should have expired")
	}
	if store.Len() != 0 {
		t.Errorf("Expired session should be deleted, %d left", store.Len())
	}
}

func TestSessionManager_TouchIsThrottled(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m, now := newTestManager(store)

	token, err := m.Create(ctx, "user-alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	issued := now.UnixMilli()

	*now = now.Add(10 * time.Second)
	mustResolve(t, m, token)
	if s, _ := store.Get(ctx, HashToken(token)); s.LastSeenAt != issued {
		t.Errorf("Touch within a minute should be skipped, lastSeenAt=%d", s.LastSeenAt)
	}

	*now = now.Add(2 * time.Minute)
	mustResolve(t, m, token)
	if s, _ := store.Get(ctx, HashToken(token)); s.LastSeenAt != now.UnixMilli() {
		t.Errorf("Expected lastSeenAt %d, got %d", now.UnixMilli(), s.LastSeenAt)
	}
}

func TestSessionManager_DestroyAllForUserAndSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m, now := newTestManager(store)

	a1, _ := m.Create(ctx, "user-alice")
	_, _ = m.Create(ctx, "user-alice")
	b1, _ := m.Create(ctx, "user-bob")
	if store.Len() != 3 {
		t.Fatalf("Expected 3 sessions, got %d", store.Len())
	}

	if err := m.DestroyAllForUser(ctx, "user-alice"); err != nil {
		t.Fatalf("DestroyAllForUser failed: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 session left, got %d", store.Len())
	}
	if _, ok := mustResolve(t, m, a1); ok {
		t.Error("Alice's session should be gone")
	}

	*now = now.Add(40 * 24 * time.Hour)
	n, err := m.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("SweepExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 swept session, got %d", n)
	}
	if _, ok := mustResolve(t, m, b1); ok {
		t.Error("Swept session should not resolve")
	}
}

func TestCookieSigner(t *testing.T) {
	signer := NewCookieSigner("secret-one")

	value, err := signer.Sign("opaque-token")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	token, err := signer.Verify(value)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if token != "opaque-token" {
		t.Errorf("Expected opaque-token, got %q", token)
	}

	forged, _ := NewCookieSigner("secret-two").Sign("other-token")
	parts := strings.Split(value, ".")
	if len(parts) != 3 {
		t.Fatalf("Expected a three part JWT, got %q", value)
	}
	parts[1] = strings.Split(forged, ".")[1]
	tampered := strings.Join(parts, ".")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, cookieClaims{SessionID: "x"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	empty, err := signer.Sign("")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	rejected := []struct {
		name  string
		value string
	}{
		{"foreign secret", forged},
		{"tampered payload", tampered},
		{"not a jwt", "not-a-jwt"},
		{"empty", ""},
		{"none algorithm", unsigned},
		{"missing sid", empty},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := signer.Verify(tt.value); !errors.Is(err, ErrInvalidCookie) {
				t.Errorf("Expected ErrInvalidCookie, got %v", err)
			}
		})
	}
}
