package auth

import (
	"errors"
	"time"

	"staffdesk/internal/config"
	"staffdesk/internal/models"
	"staffdesk/internal/timeutil"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	AccountID int         `json:"account_id"`
	Role      models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Principal returns the identity carried by the token. Callers must still
// re-check it against the current account row.
func (c *Claims) Principal() models.Principal {
	return models.Principal{AccountID: c.AccountID, Role: c.Role}
}

type JWTManager struct {
	cfg *config.Config
}

func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{cfg: cfg}
}

// GenerateToken creates a new session token for an account
func (j *JWTManager) GenerateToken(account *models.Account) (string, error) {
	now := timeutil.Now()
	expirationTime := now.Add(time.Duration(j.cfg.JWT.ExpirationHours) * time.Hour)

	claims := &Claims{
		AccountID: account.ID,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.cfg.JWT.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.cfg.JWT.Secret))
}

// ValidateToken verifies a token and returns the claims
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(j.cfg.JWT.Secret), nil
	}, jwt.WithIssuer(j.cfg.JWT.Issuer))

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.AccountID <= 0 || claims.Role == "" {
		return nil, errors.New("token missing principal")
	}

	return claims, nil
}
