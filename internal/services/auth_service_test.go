package services

import (
	"context"
	"testing"
	"time"

	"staffdesk/internal/apperr"
	"staffdesk/internal/models"

	"github.com/pquerna/otp/totp"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.accounts, testJWT(), NewTOTPService(f.accounts))
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     apperr.Kind
	}{
		{"unknown account", "ghost@demo.com", testPassword, apperr.KindUnauthorized},
		{"bad password", f.alice.Email, "nope", apperr.KindUnauthorized},
		{"pending account", f.pending.Email, testPassword, apperr.KindForbidden},
		{"pending with bad password", f.pending.Email, "nope", apperr.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &models.LoginRequest{Email: tt.email, Password: tt.password})
			if got := apperr.KindOf(err); err == nil || got != tt.want {
				t.Errorf("err = %v, want kind %v", err, tt.want)
			}
		})
	}

	resp, err := svc.Login(ctx, &models.LoginRequest{Email: f.alice.Email, Password: testPassword})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token == "" || resp.Account.ID != f.alice.ID {
		t.Errorf("resp = %+v", resp)
	}

	p, err := svc.Resolve(ctx, resp.Token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.AccountID != f.alice.ID || p.Role != models.RoleEmployee {
		t.Errorf("principal = %+v", p)
	}
}

func TestResolveRejectsAccountNoLongerApproved(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.accounts, testJWT(), nil)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &models.LoginRequest{Email: f.bob.Email, Password: testPassword})
	if err != nil {
		t.Fatal(err)
	}
	f.accounts.SetStatus(f.bob.ID, models.StatusRejected)

	if _, err := svc.Resolve(ctx, resp.Token); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("err = %v, want forbidden", err)
	}
	if _, err := svc.Resolve(ctx, "garbage"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("garbage token: err = %v", err)
	}
}

func TestAdminTOTPFlow(t *testing.T) {
	f := newFixture(t)
	totpSvc := NewTOTPService(f.accounts)
	authSvc := NewAuthService(f.accounts, testJWT(), totpSvc)
	ctx := context.Background()

	if _, err := totpSvc.Setup(ctx, principal(f.alice)); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("employee setup: err = %v", err)
	}

	setup, err := totpSvc.Setup(ctx, principal(f.admin))
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if setup.Secret == "" || setup.URL == "" || len(setup.QRCode) < 100 {
		t.Errorf("setup = %+v", setup)
	}

	if err := totpSvc.Enable(ctx, principal(f.admin), &models.TOTPCodeRequest{Code: "000000"}); err == nil {
		t.Fatal("wrong code enabled 2FA")
	}

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := totpSvc.Enable(ctx, principal(f.admin), &models.TOTPCodeRequest{Code: code}); err != nil {
		t.Fatalf("Enable: %v", err)
	}

	if _, err := authSvc.Login(ctx, &models.LoginRequest{Email: f.admin.Email, Password: testPassword}); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("login without code: err = %v", err)
	}
	if _, err := authSvc.Login(ctx, &models.LoginRequest{Email: f.admin.Email, Password: testPassword, TOTPCode: code}); err != nil {
		t.Errorf("login with code: %v", err)
	}

	if err := totpSvc.Disable(ctx, principal(f.admin), &models.TOTPCodeRequest{Code: code}); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if _, err := authSvc.Login(ctx, &models.LoginRequest{Email: f.admin.Email, Password: testPassword}); err != nil {
		t.Errorf("login after disable: %v", err)
	}
}
