package auth

import (
	"strings"
	"testing"
	"time"

	"staffdesk/internal/config"
	"staffdesk/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "staffdesk"
	return cfg
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("rahasia123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}
	if !VerifyPassword(hash, "rahasia123") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordUsesRandomSalt(t *testing.T) {
	a, _ := HashPassword("same")
	b, _ := HashPassword("same")
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
}

func TestVerifyPasswordAcceptsBcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(string(hash), "password123") {
		t.Error("bcrypt hash not verified")
	}
}

func TestVerifyPasswordMalformed(t *testing.T) {
	for _, h := range []string{"", "plain", "$argon2id$v=19$bad$x$y"} {
		if VerifyPassword(h, "x") {
			t.Errorf("malformed hash %q accepted", h)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewJWTManager(testConfig())
	token, err := m.GenerateToken(&models.Account{ID: 42, Role: models.RoleEmployee})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	p := claims.Principal()
	if p.AccountID != 42 || p.Role != models.RoleEmployee {
		t.Errorf("principal = %+v", p)
	}
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	token, _ := NewJWTManager(testConfig()).GenerateToken(&models.Account{ID: 1, Role: models.RoleAdmin})

	other := testConfig()
	other.JWT.Secret = "different"
	if _, err := NewJWTManager(other).ValidateToken(token); err == nil {
		t.Error("token signed with another secret was accepted")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := testConfig()
	claims := &Claims{
		AccountID: 1,
		Role:      models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			Issuer:    cfg.JWT.Issuer,
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))

	if _, err := NewJWTManager(cfg).ValidateToken(token); err == nil {
		t.Error("expired token accepted")
	}
}
