package services

import (
	"context"

	"staffdesk/internal/apperr"
	"staffdesk/internal/auth"
	"staffdesk/internal/logger"
	"staffdesk/internal/models"
)

var (
	errBadCredentials = apperr.Unauthorized("invalid email or password")
	errNotApproved    = apperr.Forbidden("account not yet approved")
)

type AuthService struct {
	Accounts   AccountStore
	JWTManager *auth.JWTManager
	TOTP       *TOTPService
}

func NewAuthService(accounts AccountStore, jwtManager *auth.JWTManager, totp *TOTPService) *AuthService {
	return &AuthService{
		Accounts:   accounts,
		JWTManager: jwtManager,
		TOTP:       totp,
	}
}

// Login authenticates an account and returns a session token.
// A known account that is not APPROVED is refused before the password is checked.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	account, err := s.Accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	if account.Status != models.StatusApproved {
		return nil, errNotApproved
	}

	if !auth.VerifyPassword(account.PasswordHash, req.Password) {
		return nil, errBadCredentials
	}

	if account.TOTPEnabled {
		if req.TOTPCode == "" || s.TOTP == nil || !s.TOTP.Check(account, req.TOTPCode) {
			return nil, apperr.Unauthorized("invalid or missing verification code")
		}
	}

	token, err := s.JWTManager.GenerateToken(account)
	if err != nil {
		return nil, err
	}

	l := logger.FromContext(ctx)
	l.Info().Int("account_id", account.ID).Str("role", string(account.Role)).Msg("login")

	return &models.AuthResponse{
		Token:   token,
		Account: account,
	}, nil
}

// Resolve re-reads the account behind a token and returns the current
// principal. Accounts that are no longer APPROVED are refused.
func (s *AuthService) Resolve(ctx context.Context, token string) (models.Principal, error) {
	claims, err := s.JWTManager.ValidateToken(token)
	if err != nil {
		return models.Principal{}, apperr.Unauthorized("invalid or expired token")
	}

	account, err := s.Accounts.Get(ctx, claims.AccountID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return models.Principal{}, apperr.Unauthorized("account not found")
		}
		return models.Principal{}, err
	}
	if account.Status != models.StatusApproved {
		return models.Principal{}, errNotApproved
	}
	return account.Principal(), nil
}
