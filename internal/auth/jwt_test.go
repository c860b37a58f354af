package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-jwt-secret-that-is-32-chars-!"

func newTestTokenService(t *testing.T, expiry time.Duration) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, "HS256", expiry)
	if err != nil {
		t.Fatalf("NewTokenService() error: %v", err)
	}
	return svc
}

func TestNewTokenService(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		if _, err := NewTokenService("", "HS256", time.Hour); err == nil {
			t.Error("expected error for empty secret, got nil")
		}
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		if _, err := NewTokenService(testSecret, "RS256", time.Hour); err == nil {
			t.Error("expected error for RS256, got nil")
		}
	})

	t.Run("zero expiry defaults to 30 minutes", func(t *testing.T) {
		svc, err := NewTokenService(testSecret, "HS256", 0)
		if err != nil {
			t.Fatalf("NewTokenService() error: %v", err)
		}
		if svc.Expiry() != 30*time.Minute {
			t.Errorf("Expiry() = %v, want 30m", svc.Expiry())
		}
	})
}

func TestIssueAndResolve(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	token, err := svc.Issue("admin@acme.com", "Acme Corp")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	claims, err := svc.Resolve(token)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if claims.Email != "admin@acme.com" {
		t.Errorf("Email = %q, want admin@acme.com", claims.Email)
	}
	if claims.OrganizationName != "Acme Corp" {
		t.Errorf("OrganizationName = %q, want Acme Corp", claims.OrganizationName)
	}
}

func TestResolveFailures(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	t.Run("malformed token", func(t *testing.T) {
		if _, err := svc.Resolve("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Resolve() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		other := &TokenService{secret: []byte("a-completely-different-32b-secret"), method: svc.method, expiry: svc.expiry}
		token, err := other.Issue("admin@acme.com", "Acme Corp")
		if err != nil {
			t.Fatalf("Issue() error: %v", err)
		}
		if _, err := svc.Resolve(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Resolve() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := &TokenService{secret: svc.secret, method: svc.method, expiry: -time.Minute}
		token, err := expired.Issue("admin@acme.com", "Acme Corp")
		if err != nil {
			t.Fatalf("Issue() error: %v", err)
		}
		if _, err := svc.Resolve(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Resolve() error = %v, want ErrInvalidToken", err)
		}
	})
}
