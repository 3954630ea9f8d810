package accounts_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"reeltrack/internal/database"
	"reeltrack/services/accounts"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSignupAndLogin(t *testing.T) {
	svc := accounts.NewService(openTestDB(t))

	user, err := svc.Signup(context.Background(), "Alice", "Alice@Example.com", "hunter22")
	if err != nil {
		t.Fatalf("signup returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected signup to assign an id")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected email to be lowercased, got %q", user.Email)
	}

	got, err := svc.Login(context.Background(), "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected login to return user %d, got %d", user.ID, got.ID)
	}
	if got.PasswordHash == "hunter22" {
		t.Fatal("password must not be stored in plaintext")
	}
}

func TestSignupRejectsMissingFields(t *testing.T) {
	svc := accounts.NewService(openTestDB(t))

	cases := []struct{ name, email, password string }{
		{"", "a@b.com", "pw"},
		{"Alice", "", "pw"},
		{"Alice", "a@b.com", ""},
	}
	for _, c := range cases {
		if _, err := svc.Signup(context.Background(), c.name, c.email, c.password); !errors.Is(err, accounts.ErrFieldsRequired) {
			t.Fatalf("expected ErrFieldsRequired for %+v, got %v", c, err)
		}
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc := accounts.NewService(openTestDB(t))

	if _, err := svc.Signup(context.Background(), "Alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("first signup returned error: %v", err)
	}

	_, err := svc.Signup(context.Background(), "Other Alice", "alice@example.com", "pw2")
	if !errors.Is(err, accounts.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := accounts.NewService(openTestDB(t))

	if _, err := svc.Signup(context.Background(), "Alice", "alice@example.com", "correct"); err != nil {
		t.Fatalf("signup returned error: %v", err)
	}

	_, wrongPassword := svc.Login(context.Background(), "alice@example.com", "wrong")
	_, unknownEmail := svc.Login(context.Background(), "nobody@example.com", "whatever")

	if !errors.Is(wrongPassword, accounts.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, accounts.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatal("wrong-password and unknown-email errors must be identical")
	}
}

func TestGetByID(t *testing.T) {
	svc := accounts.NewService(openTestDB(t))

	user, err := svc.Signup(context.Background(), "Alice", "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("signup returned error: %v", err)
	}

	got, err := svc.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if got.Name != "Alice" {
		t.Fatalf("expected name Alice, got %q", got.Name)
	}

	if _, err := svc.GetByID(context.Background(), 9999); !errors.Is(err, accounts.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
