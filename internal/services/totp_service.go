package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"

	"staffdesk/internal/apperr"
	"staffdesk/internal/models"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpIssuer = "StaffDesk"

var (
	ErrNoTOTPSecret    = apperr.Validation("2FA setup not initiated")
	ErrInvalidTOTPCode = apperr.Validation("invalid verification code")
	ErrTOTPNotEnabled  = apperr.Validation("2FA is not enabled")
)

// TOTPService manages optional two-factor authentication for admins.
type TOTPService struct {
	Accounts AccountStore
}

func NewTOTPService(accounts AccountStore) *TOTPService {
	return &TOTPService{Accounts: accounts}
}

// Setup creates a new TOTP secret and QR code. The secret is stored but
// not enabled until a code is confirmed.
func (s *TOTPService) Setup(ctx context.Context, p models.Principal) (*models.TOTPSetupResponse, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	account, err := s.Accounts.Get(ctx, p.AccountID)
	if err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: account.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Accounts.SetTOTP(ctx, account.ID, key.Secret(), false); err != nil {
		return nil, err
	}

	qrImage, err := key.Image(200, 200)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, qrImage); err != nil {
		return nil, err
	}

	return &models.TOTPSetupResponse{
		Secret:      key.Secret(),
		QRCode:      "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		URL:         key.URL(),
		Issuer:      totpIssuer,
		AccountName: account.Email,
	}, nil
}

// Enable verifies a code against the pending secret and turns 2FA on.
func (s *TOTPService) Enable(ctx context.Context, p models.Principal, req *models.TOTPCodeRequest) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if err := validateStruct(req); err != nil {
		return err
	}
	account, err := s.Accounts.Get(ctx, p.AccountID)
	if err != nil {
		return err
	}
	if account.TOTPSecret == "" {
		return ErrNoTOTPSecret
	}
	if !totp.Validate(req.Code, account.TOTPSecret) {
		return ErrInvalidTOTPCode
	}
	return s.Accounts.SetTOTP(ctx, account.ID, account.TOTPSecret, true)
}

// Disable turns 2FA off after checking a current code.
func (s *TOTPService) Disable(ctx context.Context, p models.Principal, req *models.TOTPCodeRequest) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if err := validateStruct(req); err != nil {
		return err
	}
	account, err := s.Accounts.Get(ctx, p.AccountID)
	if err != nil {
		return err
	}
	if !account.TOTPEnabled {
		return ErrTOTPNotEnabled
	}
	if !totp.Validate(req.Code, account.TOTPSecret) {
		return ErrInvalidTOTPCode
	}
	return s.Accounts.SetTOTP(ctx, account.ID, "", false)
}

// Check validates a login code for an account with 2FA enabled.
func (s *TOTPService) Check(account *models.Account, code string) bool {
	return account.TOTPEnabled && account.TOTPSecret != "" && totp.Validate(code, account.TOTPSecret)
}
