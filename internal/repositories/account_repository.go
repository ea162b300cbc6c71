package repositories

import (
	"context"
	"fmt"
	"strings"

	"staffdesk/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, email, password_hash, full_name, address, gender, national_id, phone,
	bank_account_number, ewallet_number, role, status, totp_secret, totp_enabled, created_at, updated_at`

type AccountRepository struct {
	DB *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{DB: db}
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.Address, &a.Gender,
		&a.NationalID, &a.Phone, &a.BankAccountNumber, &a.EwalletNumber, &a.Role, &a.Status,
		&a.TOTPSecret, &a.TOTPEnabled, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO accounts(email, password_hash, full_name, address, gender, national_id, phone,
		                      bank_account_number, ewallet_number, role, status)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
         RETURNING id, created_at, updated_at`,
		a.Email, a.PasswordHash, a.FullName, a.Address, a.Gender, a.NationalID, a.Phone,
		a.BankAccountNumber, a.EwalletNumber, a.Role, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return translate(err, "account")
}

func (r *AccountRepository) Get(ctx context.Context, id int) (*models.Account, error) {
	a, err := scanAccount(r.DB.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id))
	return a, translate(err, "account")
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	a, err := scanAccount(r.DB.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE LOWER(email)=LOWER($1)`, email))
	return a, translate(err, "account")
}

// ExistsByEmailOrNationalID checks both unique keys in one round trip.
func (r *AccountRepository) ExistsByEmailOrNationalID(ctx context.Context, email, nationalID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE LOWER(email)=LOWER($1) OR national_id=$2)`,
		email, nationalID,
	).Scan(&exists)
	return exists, translate(err, "account")
}

func (r *AccountRepository) List(ctx context.Context, f models.AccountFilter) ([]models.Account, int, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if f.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argNum))
		args = append(args, f.Role)
		argNum++
	}
	if f.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, f.Status)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.DB.QueryRow(ctx, "SELECT COUNT(*) FROM accounts "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, translate(err, "account")
	}

	query := fmt.Sprintf(`SELECT %s FROM accounts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		accountColumns, whereClause, argNum, argNum+1)
	rows, err := r.DB.Query(ctx, query, append(args, f.Page.Limit(), f.Page.Offset())...)
	if err != nil {
		return nil, 0, translate(err, "account")
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, translate(err, "account")
		}
		accounts = append(accounts, *a)
	}
	return accounts, total, rows.Err()
}

func (r *AccountRepository) ListIDs(ctx context.Context, role models.Role, status models.AccountStatus) ([]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id FROM accounts WHERE role=$1 AND status=$2 ORDER BY id`, role, status)
	if err != nil {
		return nil, translate(err, "account")
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

func (r *AccountRepository) TransitionStatus(ctx context.Context, id int, from, to models.AccountStatus) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE accounts SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`,
		to, id, from)
	if err != nil {
		return false, translate(err, "account")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, a *models.Account) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE accounts
         SET full_name=$1, address=$2, phone=$3, bank_account_number=$4, ewallet_number=$5, updated_at=NOW()
         WHERE id=$6
         RETURNING updated_at`,
		a.FullName, a.Address, a.Phone, a.BankAccountNumber, a.EwalletNumber, a.ID,
	).Scan(&a.UpdatedAt)
	return translate(err, "account")
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id int, hash string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE accounts SET password_hash=$1, updated_at=NOW() WHERE id=$2`, hash, id)
	if err != nil {
		return translate(err, "account")
	}
	if tag.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "account")
	}
	return nil
}

func (r *AccountRepository) SetTOTP(ctx context.Context, id int, secret string, enabled bool) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE accounts SET totp_secret=$1, totp_enabled=$2, updated_at=NOW() WHERE id=$3`,
		secret, enabled, id)
	return translate(err, "account")
}
