package service_test

import (
	"context"
	"errors"
	"testing"

	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/service"
)

func TestSignupDefaultsRole(t *testing.T) {
	f := setup(t)
	u, err := f.accounts.Signup(context.Background(), service.SignupRequest{
		Name: "Ann", Email: "ann@test.com", Password: "testpass123",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if u.Role != model.RoleUser {
		t.Errorf("expected USER, got %s", u.Role)
	}
	if u.PasswordHash == "" || u.PasswordHash == "testpass123" {
		t.Error("password not hashed")
	}
}

func TestSignupAdmin(t *testing.T) {
	f := setup(t)
	u, err := f.accounts.Signup(context.Background(), service.SignupRequest{
		Email: "root@test.com", Password: "testpass123", Role: model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if u.Role != model.RoleAdmin {
		t.Errorf("expected ADMIN, got %s", u.Role)
	}
}

func TestSignupValidation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name string
		req  service.SignupRequest
	}{
		{"empty email", service.SignupRequest{Password: "testpass123"}},
		{"empty password", service.SignupRequest{Email: "a@b.com"}},
		{"unknown role", service.SignupRequest{Email: "a@b.com", Password: "testpass123", Role: "ROOT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.accounts.Signup(context.Background(), tt.req)
			if service.KindOf(err) != service.KindValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSignupDuplicate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	req := service.SignupRequest{Name: "Ann", Email: "ann@test.com", Password: "testpass123"}
	if _, err := f.accounts.Signup(ctx, req); err != nil {
		t.Fatalf("first signup: %v", err)
	}

	_, err := f.accounts.Signup(ctx, req)
	if !errors.Is(err, service.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if service.KindOf(err) != service.KindConflict {
		t.Errorf("expected conflict kind, got %v", service.KindOf(err))
	}
}

func TestSignupAfterImplicitUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := create(t, f, "2024-01-01", "10:00", "11:00")
	f.sched.Book(ctx, a.ID, service.BookRequest{Email: "walkin@test.com", Name: "Walk In"})

	_, err := f.accounts.Signup(ctx, service.SignupRequest{Email: "walkin@test.com", Password: "testpass123"})
	if !errors.Is(err, service.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	// booked-only users have no password and cannot log in
	if _, err := f.accounts.Login(ctx, "walkin@test.com", ""); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.accounts.Signup(ctx, service.SignupRequest{Name: "Ann", Email: "ann@test.com", Password: "testpass123"})

	res, err := f.accounts.Login(ctx, "ann@test.com", "testpass123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token == "" {
		t.Fatal("empty token")
	}
	if res.Email != "ann@test.com" || res.Role != model.RoleUser {
		t.Errorf("unexpected login result %+v", res)
	}

	id, err := f.accounts.Identify(res.Token)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if id.Email != "ann@test.com" || id.Role != model.RoleUser {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestLoginFailuresLookAlike(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.accounts.Signup(ctx, service.SignupRequest{Email: "ann@test.com", Password: "testpass123"})

	_, wrongPw := f.accounts.Login(ctx, "ann@test.com", "wrongpassword")
	_, unknown := f.accounts.Login(ctx, "nobody@nowhere.com", "testpass123")

	if wrongPw == nil || unknown == nil {
		t.Fatal("expected both logins to fail")
	}
	if wrongPw.Error() != unknown.Error() {
		t.Errorf("messages differ: %q vs %q", wrongPw, unknown)
	}
	if service.KindOf(wrongPw) != service.KindUnauthorized || service.KindOf(unknown) != service.KindUnauthorized {
		t.Error("expected unauthorized kind for both")
	}
}

func TestEnsureAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.accounts.EnsureAdmin(ctx, "admin@test.com", "adminpass123", "Admin")
	if err != nil || !created {
		t.Fatalf("first seed: created=%v err=%v", created, err)
	}
	created, err = f.accounts.EnsureAdmin(ctx, "admin@test.com", "adminpass123", "Admin")
	if err != nil || created {
		t.Fatalf("second seed: created=%v err=%v", created, err)
	}

	res, err := f.accounts.Login(ctx, "admin@test.com", "adminpass123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Role != model.RoleAdmin {
		t.Errorf("expected ADMIN, got %s", res.Role)
	}
}

func TestIdentifyRejects(t *testing.T) {
	f := setup(t)
	for _, raw := range []string{"", "not.a.token"} {
		if _, err := f.accounts.Identify(raw); !errors.Is(err, service.ErrBadToken) {
			t.Errorf("Identify(%q): expected ErrBadToken, got %v", raw, err)
		}
	}
}
