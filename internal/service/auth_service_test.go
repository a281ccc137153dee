package service

import (
	"testing"
	"time"

	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/internal/repository"
	"github.com/quangdng/memedump/pkg/apperr"
	"github.com/quangdng/memedump/pkg/auth"
)

func newAuthService(t *testing.T) (*AuthService, *auth.JWTManager) {
	t.Helper()
	db := newTestDB(t)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(repository.NewUserRepository(db), jwtManager, nil), jwtManager
}

func TestRegisterAndLogin(t *testing.T) {
	svc, jwtManager := newAuthService(t)

	resp, err := svc.Register(model.RegisterRequest{
		Name:     "Quang",
		Email:    "Quang@Example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a JWT on registration")
	}
	// Emails are stored lowercased
	if resp.User.Email != "quang@example.com" {
		t.Errorf("expected normalized email, got %q", resp.User.Email)
	}

	claims, err := jwtManager.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Error("token subject mismatch")
	}

	// Duplicate registration conflicts
	if _, err := svc.Register(model.RegisterRequest{
		Name:     "Imposter",
		Email:    "quang@example.com",
		Password: "whatever1",
	}); apperr.CodeOf(err) != apperr.CodeConflict {
		t.Errorf("expected CONFLICT on duplicate email, got %v", err)
	}

	// Login with either casing works; wrong password does not
	if _, err := svc.Login(model.LoginRequest{Email: "QUANG@example.com", Password: "hunter22"}); err != nil {
		t.Errorf("login failed: %v", err)
	}
	if _, err := svc.Login(model.LoginRequest{Email: "quang@example.com", Password: "wrong-pass"}); apperr.CodeOf(err) != apperr.CodeUnauthenticated {
		t.Errorf("expected UNAUTHENTICATED for bad password, got %v", err)
	}
}

func TestPairDeviceIsIdempotent(t *testing.T) {
	svc, _ := newAuthService(t)

	first, err := svc.PairDevice(model.DevicePairRequest{DeviceID: "device-abc"})
	if err != nil {
		t.Fatalf("pairing failed: %v", err)
	}
	if first.User.Name != "Anonymous" {
		t.Errorf("expected anonymous default name, got %q", first.User.Name)
	}
	if first.User.Email != "" {
		t.Error("device-only account must not have an email")
	}

	second, err := svc.PairDevice(model.DevicePairRequest{DeviceID: "device-abc", Name: "Ignored"})
	if err != nil {
		t.Fatalf("repeat pairing failed: %v", err)
	}
	if second.User.ID != first.User.ID {
		t.Error("same device must resolve to the same account")
	}
}

func TestAttachEmailUpgradesDeviceAccount(t *testing.T) {
	svc, _ := newAuthService(t)

	paired, err := svc.PairDevice(model.DevicePairRequest{DeviceID: "device-xyz", Name: "Drifter"})
	if err != nil {
		t.Fatalf("pairing failed: %v", err)
	}

	if err := svc.AttachEmail(paired.User.ID, model.AttachEmailRequest{
		Email:    "drifter@example.com",
		Password: "secret99",
	}); err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	// The upgraded account can now log in with its email
	login, err := svc.Login(model.LoginRequest{Email: "drifter@example.com", Password: "secret99"})
	if err != nil {
		t.Fatalf("login after attach failed: %v", err)
	}
	if login.User.ID != paired.User.ID {
		t.Error("attach must not change the account identity")
	}

	// The address is now taken
	other, err := svc.PairDevice(model.DevicePairRequest{DeviceID: "device-other"})
	if err != nil {
		t.Fatalf("pairing failed: %v", err)
	}
	if err := svc.AttachEmail(other.User.ID, model.AttachEmailRequest{
		Email:    "drifter@example.com",
		Password: "secret99",
	}); apperr.CodeOf(err) != apperr.CodeConflict {
		t.Errorf("expected CONFLICT for taken email, got %v", err)
	}

	// Attach is a one-time upgrade; an account with an email keeps it
	if err := svc.AttachEmail(paired.User.ID, model.AttachEmailRequest{
		Email:    "second@example.com",
		Password: "secret99",
	}); apperr.CodeOf(err) != apperr.CodeConflict {
		t.Errorf("expected CONFLICT re-attaching an email, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newAuthService(t)

	resp, err := svc.Register(model.RegisterRequest{
		Name:     "Quang",
		Email:    "quang@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	updated, err := svc.UpdateProfile(resp.User.ID, model.UpdateProfileRequest{Name: "Q. Nguyen"})
	if err != nil {
		t.Fatalf("profile update failed: %v", err)
	}
	if updated.Name != "Q. Nguyen" {
		t.Errorf("expected updated name, got %q", updated.Name)
	}
	// Unset fields stay untouched
	if updated.Email != "quang@example.com" {
		t.Errorf("email must be untouched, got %q", updated.Email)
	}

	updated, err = svc.UpdateProfile(resp.User.ID, model.UpdateProfileRequest{Avatar: "https://cdn.test.local/q.png"})
	if err != nil {
		t.Fatalf("avatar update failed: %v", err)
	}
	if updated.Name != "Q. Nguyen" || updated.Avatar != "https://cdn.test.local/q.png" {
		t.Errorf("unexpected profile after avatar update: %+v", updated)
	}

	if _, err := svc.UpdateProfile(resp.User.ID, model.UpdateProfileRequest{}); apperr.CodeOf(err) != apperr.CodeInvalidArgument {
		t.Errorf("expected INVALID_ARGUMENT for empty update, got %v", err)
	}
}
