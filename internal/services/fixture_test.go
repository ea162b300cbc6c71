package services

import (
	"context"
	"fmt"
	"testing"

	"staffdesk/internal/auth"
	"staffdesk/internal/config"
	"staffdesk/internal/models"
	"staffdesk/internal/repositories/memrepo"

	"golang.org/x/crypto/bcrypt"
)

const testPassword = "password123"

type fixture struct {
	accounts      *memrepo.Accounts
	tasks         *memrepo.Tasks
	transactions  *memrepo.Transactions
	notifications *memrepo.Notifications

	admin, otherAdmin, alice, bob, pending, rejected *models.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		accounts:      memrepo.NewAccounts(),
		tasks:         memrepo.NewTasks(),
		transactions:  memrepo.NewTransactions(),
		notifications: memrepo.NewNotifications(),
	}
	f.admin = f.seed(t, "admin@demo.com", models.RoleAdmin, models.StatusApproved)
	f.otherAdmin = f.seed(t, "admin2@demo.com", models.RoleAdmin, models.StatusApproved)
	f.alice = f.seed(t, "alice@demo.com", models.RoleEmployee, models.StatusApproved)
	f.bob = f.seed(t, "bob@demo.com", models.RoleEmployee, models.StatusApproved)
	f.pending = f.seed(t, "pending@demo.com", models.RoleEmployee, models.StatusPending)
	f.rejected = f.seed(t, "rejected@demo.com", models.RoleEmployee, models.StatusRejected)
	return f
}

var seq int

func (f *fixture) seed(t *testing.T, email string, role models.Role, status models.AccountStatus) *models.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	seq++
	a := &models.Account{
		Email:             email,
		PasswordHash:      string(hash),
		FullName:          "User " + email,
		Address:           "Jl. Sudirman No. 1",
		Gender:            models.GenderFemale,
		NationalID:        fmt.Sprintf("%016d", 3170000000000000+seq),
		Phone:             "081234567890",
		BankAccountNumber: "1234567890",
		Role:              role,
		Status:            status,
	}
	if err := f.accounts.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	return a
}

func principal(a *models.Account) models.Principal {
	return a.Principal()
}

func testJWT() *auth.JWTManager {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "staffdesk"
	return auth.NewJWTManager(cfg)
}

func recipients(events []models.NotificationEvent) map[int]int {
	out := map[int]int{}
	for _, ev := range events {
		out[ev.AccountID]++
	}
	return out
}
