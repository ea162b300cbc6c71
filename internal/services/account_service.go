package services

import (
	"context"
	"fmt"
	"strings"

	"staffdesk/internal/apperr"
	"staffdesk/internal/auth"
	"staffdesk/internal/logger"
	"staffdesk/internal/models"
)

type AccountService struct {
	Accounts AccountStore
}

func NewAccountService(accounts AccountStore) *AccountService {
	return &AccountService{Accounts: accounts}
}

// Register creates a PENDING employee account and returns one event per admin.
func (s *AccountService) Register(ctx context.Context, req *models.RegisterRequest) (*models.Account, []models.NotificationEvent, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.NationalID = strings.TrimSpace(req.NationalID)

	if err := validateStruct(req); err != nil {
		return nil, nil, err
	}

	exists, err := s.Accounts.ExistsByEmailOrNationalID(ctx, req.Email, req.NationalID)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, apperr.Conflict("email or national ID already registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	account := &models.Account{
		Email:             req.Email,
		PasswordHash:      hash,
		FullName:          req.FullName,
		Address:           req.Address,
		Gender:            req.Gender,
		NationalID:        req.NationalID,
		Phone:             req.Phone,
		BankAccountNumber: req.BankAccountNumber,
		EwalletNumber:     req.EwalletNumber,
		Role:              models.RoleEmployee,
		Status:            models.StatusPending,
	}
	if err := s.Accounts.Create(ctx, account); err != nil {
		return nil, nil, err
	}

	admins, err := s.Accounts.ListIDs(ctx, models.RoleAdmin, models.StatusApproved)
	if err != nil {
		return nil, nil, err
	}

	events := make([]models.NotificationEvent, 0, len(admins))
	for _, id := range admins {
		events = append(events, models.NotificationEvent{
			AccountID: id,
			Title:     "New employee registration",
			Message:   fmt.Sprintf("%s has registered as an employee and is waiting for approval.", account.FullName),
		})
	}

	l := logger.FromContext(ctx)
	l.Info().Int("account_id", account.ID).Msg("employee registered")

	return account, events, nil
}

// Decide approves or rejects a PENDING account. Anything already decided
// is a conflict and stays untouched.
func (s *AccountService) Decide(ctx context.Context, p models.Principal, accountID int, req *models.DecisionRequest) (*models.Account, []models.NotificationEvent, error) {
	if err := requireAdmin(p); err != nil {
		return nil, nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, nil, err
	}

	account, err := s.Accounts.Get(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if account.Status != models.StatusPending {
		return nil, nil, apperr.Conflict("account has already been processed")
	}

	changed, err := s.Accounts.TransitionStatus(ctx, accountID, models.StatusPending, req.Action)
	if err != nil {
		return nil, nil, err
	}
	if !changed {
		return nil, nil, apperr.Conflict("account has already been processed")
	}
	account.Status = req.Action

	event := models.NotificationEvent{AccountID: account.ID}
	if req.Action == models.StatusApproved {
		event.Title = "Registration approved"
		event.Message = "Your registration has been approved. You can now sign in."
	} else {
		event.Title = "Registration rejected"
		event.Message = "Your registration was rejected. Please contact an administrator for details."
	}

	l := logger.FromContext(ctx)
	l.Info().Int("account_id", account.ID).Str("status", string(req.Action)).Int("by", p.AccountID).Msg("registration decided")

	return account, []models.NotificationEvent{event}, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, p models.Principal, status models.AccountStatus, page models.Page) ([]models.Account, models.Pagination, error) {
	if err := requireAdmin(p); err != nil {
		return nil, models.Pagination{}, err
	}
	switch status {
	case "", models.StatusPending, models.StatusApproved, models.StatusRejected:
	default:
		return nil, models.Pagination{}, fieldError("status", "must be one of: PENDING APPROVED REJECTED")
	}

	accounts, total, err := s.Accounts.List(ctx, models.AccountFilter{Status: status, Page: page})
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return accounts, models.NewPagination(page, total), nil
}

// ListApprovedEmployees returns the accounts a task can be assigned to.
func (s *AccountService) ListApprovedEmployees(ctx context.Context, p models.Principal) ([]models.Account, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	accounts, _, err := s.Accounts.List(ctx, models.AccountFilter{
		Role:   models.RoleEmployee,
		Status: models.StatusApproved,
		Page:   models.Page{Number: 1, Size: 1000},
	})
	return accounts, err
}

func (s *AccountService) GetProfile(ctx context.Context, p models.Principal) (*models.Account, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	return s.Accounts.Get(ctx, p.AccountID)
}

func (s *AccountService) UpdateProfile(ctx context.Context, p models.Principal, req *models.UpdateProfileRequest) (*models.Account, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	account, err := s.Accounts.Get(ctx, p.AccountID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		account.FullName = *req.FullName
	}
	if req.Address != nil {
		account.Address = *req.Address
	}
	if req.Phone != nil {
		account.Phone = *req.Phone
	}
	if req.BankAccountNumber != nil {
		account.BankAccountNumber = strings.TrimSpace(*req.BankAccountNumber)
	}
	if req.EwalletNumber != nil {
		account.EwalletNumber = strings.TrimSpace(*req.EwalletNumber)
	}
	if !account.HasPayout() {
		return nil, fieldError("bank_account_number", "bank account number or e-wallet number is required")
	}

	if err := s.Accounts.UpdateProfile(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, p models.Principal, req *models.ChangePasswordRequest) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	account, err := s.Accounts.Get(ctx, p.AccountID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(account.PasswordHash, req.CurrentPassword) {
		return fieldError("current_password", "current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.Accounts.UpdatePassword(ctx, account.ID, hash)
}

func requireAdmin(p models.Principal) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return apperr.Forbidden("admin access required")
	}
	return nil
}

func requireEmployee(p models.Principal) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if !p.IsEmployee() {
		return apperr.Forbidden("employee access required")
	}
	return nil
}
