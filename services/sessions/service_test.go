package sessions_test

import (
	"context"
	"testing"
	"time"

	"reeltrack/models"
	"reeltrack/services/sessions"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	svc, err := sessions.NewService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	user := models.User{ID: 42, Name: "Alice", Email: "alice@example.com"}
	token, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("issue returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	identity, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify returned error: %v", err)
	}
	if identity.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", identity.UserID)
	}
	if identity.Email != "alice@example.com" {
		t.Fatalf("expected email to round-trip, got %q", identity.Email)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc, err := sessions.NewService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	token, err := svc.Issue(models.User{ID: 1, Email: "a@b.com"})
	if err != nil {
		t.Fatalf("issue returned error: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := svc.Verify(tampered); err == nil {
		t.Fatal("expected tampered token to fail verification")
	}
}

func TestVerifyRejectsTokenFromOtherSecret(t *testing.T) {
	issuer, err := sessions.NewService("secret-one", time.Hour)
	if err != nil {
		t.Fatalf("failed to create issuer: %v", err)
	}
	verifier, err := sessions.NewService("secret-two", time.Hour)
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}

	token, err := issuer.Issue(models.User{ID: 1, Email: "a@b.com"})
	if err != nil {
		t.Fatalf("issue returned error: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected token signed with a different secret to fail")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	short, err := sessions.NewService("test-secret", time.Millisecond)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	token, err := short.Issue(models.User{ID: 7, Email: "c@d.com"})
	if err != nil {
		t.Fatalf("issue returned error: %v", err)
	}

	time.Sleep(1100 * time.Millisecond) // jwt exp has one-second resolution

	if _, err := short.Verify(token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestNewServiceRequiresSecret(t *testing.T) {
	if _, err := sessions.NewService("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	svc, err := sessions.NewService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	token, err := svc.Issue(models.User{ID: 9, Email: "e@f.com"})
	if err != nil {
		t.Fatalf("issue returned error: %v", err)
	}
	identity, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify returned error: %v", err)
	}

	ctx := sessions.ContextWithIdentity(context.Background(), identity)
	got, ok := sessions.IdentityFrom(ctx)
	if !ok {
		t.Fatal("expected identity on context")
	}
	if got.UserID != 9 {
		t.Fatalf("expected user id 9, got %d", got.UserID)
	}
}
