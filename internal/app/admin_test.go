package app_test

import (
	"errors"
	"testing"

	"cyberhunt/internal/app"
	"cyberhunt/internal/domain"
)

func TestAdminLoginAndVerify(t *testing.T) {
	gate, err := app.NewAdminGate("admin", "Samonilla", "test-secret")
	if err != nil {
		t.Fatalf("gate: %v", err)
	}

	if _, err := gate.Login("admin", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	// Retries are unlimited.
	for i := 0; i < 5; i++ {
		_, _ = gate.Login("admin", "still wrong")
	}

	token, err := gate.Login("admin", "Samonilla")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := gate.Verify(token); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestAdminVerifyRejectsForeignTokens(t *testing.T) {
	gate, _ := app.NewAdminGate("admin", "pw", "one")
	other, _ := app.NewAdminGate("admin", "pw", "two")

	token, err := other.Login("admin", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := gate.Verify(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for foreign key, got %v", err)
	}
	if err := gate.Verify(""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for empty token, got %v", err)
	}
	if err := gate.Verify("not-a-jwt"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for garbage, got %v", err)
	}
}

func TestAdminRandomSecret(t *testing.T) {
	gate, err := app.NewAdminGate("admin", "pw", "")
	if err != nil {
		t.Fatalf("gate: %v", err)
	}
	token, err := gate.Login("admin", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := gate.Verify(token); err != nil {
		t.Fatalf("verify: %v", err)
	}
}
