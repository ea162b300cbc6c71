package models

import "time"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

type AccountStatus string

const (
	StatusPending  AccountStatus = "PENDING"
	StatusApproved AccountStatus = "APPROVED"
	StatusRejected AccountStatus = "REJECTED"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

type Account struct {
	ID                int           `json:"id"`
	Email             string        `json:"email"`
	PasswordHash      string        `json:"-"` // Never expose in JSON
	FullName          string        `json:"full_name"`
	Address           string        `json:"address"`
	Gender            Gender        `json:"gender"`
	NationalID        string        `json:"nik_ktp"`
	Phone             string        `json:"phone_number"`
	BankAccountNumber string        `json:"bank_account_number,omitempty"`
	EwalletNumber     string        `json:"ewallet_number,omitempty"`
	Role              Role          `json:"role"`
	Status            AccountStatus `json:"status"`
	TOTPSecret        string        `json:"-"`
	TOTPEnabled       bool          `json:"totp_enabled"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Principal returns the session identity for the account.
func (a *Account) Principal() Principal {
	return Principal{AccountID: a.ID, Role: a.Role}
}

// HasPayout reports whether at least one payout destination is set.
func (a *Account) HasPayout() bool {
	return a.BankAccountNumber != "" || a.EwalletNumber != ""
}

// AccountRef is the compact account shape embedded in tasks and submissions.
type AccountRef struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// RegisterRequest represents the request body for self-registration
type RegisterRequest struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,min=6"`
	ConfirmPassword   string `json:"confirm_password" validate:"required,eqfield=Password"`
	FullName          string `json:"full_name" validate:"required,min=2"`
	Address           string `json:"address" validate:"required,min=5"`
	Gender            Gender `json:"gender" validate:"required,oneof=MALE FEMALE"`
	NationalID        string `json:"nik_ktp" validate:"required,len=16,numeric"`
	Phone             string `json:"phone_number" validate:"required,min=10"`
	BankAccountNumber string `json:"bank_account_number" validate:"required_without=EwalletNumber"`
	EwalletNumber     string `json:"ewallet_number" validate:"required_without=BankAccountNumber"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	TOTPCode string `json:"totp_code,omitempty"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"user"`
}

// DecisionRequest is the admin's verdict on a pending registration.
type DecisionRequest struct {
	Action AccountStatus `json:"action" validate:"required,oneof=APPROVED REJECTED"`
}

// UpdateProfileRequest carries optional profile edits. Nil fields are left alone.
type UpdateProfileRequest struct {
	FullName          *string `json:"full_name" validate:"omitempty,min=2"`
	Address           *string `json:"address" validate:"omitempty,min=5"`
	Phone             *string `json:"phone_number" validate:"omitempty,min=10"`
	BankAccountNumber *string `json:"bank_account_number"`
	EwalletNumber     *string `json:"ewallet_number"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type AccountFilter struct {
	Role   Role
	Status AccountStatus
	Page   Page
}
