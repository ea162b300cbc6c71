package repositories

import (
	"context"
	"fmt"
	"strings"

	"staffdesk/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Amounts cross the driver boundary as text so NUMERIC(15,2) never passes
// through float64.
const transactionSelect = `
	SELECT t.id, t.type, t.category, t.amount::text, t.description, t.date, t.created_by_id,
	       t.created_at, t.updated_at, a.full_name, a.email
	FROM transactions t
	JOIN accounts a ON a.id = t.created_by_id`

type TransactionRepository struct {
	DB *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	var amount string
	ref := &models.AccountRef{}
	err := row.Scan(&t.ID, &t.Type, &t.Category, &amount, &t.Description, &t.Date, &t.CreatedByID,
		&t.CreatedAt, &t.UpdatedAt, &ref.FullName, &ref.Email)
	if err != nil {
		return nil, err
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	ref.ID = t.CreatedByID
	t.CreatedBy = ref
	return &t, nil
}

// transactionWhere renders the filter predicate shared by List and Summarize.
func transactionWhere(f models.TransactionFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if f.Type != "" {
		conditions = append(conditions, fmt.Sprintf("t.type = $%d", argNum))
		args = append(args, f.Type)
		argNum++
	}
	if f.Category != "" {
		conditions = append(conditions, fmt.Sprintf("t.category = $%d", argNum))
		args = append(args, f.Category)
		argNum++
	}
	if f.Start != nil {
		conditions = append(conditions, fmt.Sprintf("t.date >= $%d", argNum))
		args = append(args, *f.Start)
		argNum++
	}
	if f.End != nil {
		conditions = append(conditions, fmt.Sprintf("t.date <= $%d", argNum))
		args = append(args, *f.End)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *TransactionRepository) Create(ctx context.Context, t *models.Transaction) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO transactions(type, category, amount, description, date, created_by_id)
         VALUES($1, $2, $3::numeric, $4, $5, $6)
         RETURNING id, created_at, updated_at`,
		t.Type, t.Category, t.Amount.String(), t.Description, t.Date, t.CreatedByID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return translate(err, "transaction")
}

func (r *TransactionRepository) Get(ctx context.Context, id int) (*models.Transaction, error) {
	t, err := scanTransaction(r.DB.QueryRow(ctx, transactionSelect+` WHERE t.id=$1`, id))
	return t, translate(err, "transaction")
}

func (r *TransactionRepository) Update(ctx context.Context, t *models.Transaction) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE transactions
         SET type=$1, category=$2, amount=$3::numeric, description=$4, date=$5, updated_at=NOW()
         WHERE id=$6
         RETURNING updated_at`,
		t.Type, t.Category, t.Amount.String(), t.Description, t.Date, t.ID,
	).Scan(&t.UpdatedAt)
	return translate(err, "transaction")
}

func (r *TransactionRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM transactions WHERE id=$1`, id)
	if err != nil {
		return translate(err, "transaction")
	}
	if tag.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "transaction")
	}
	return nil
}

func (r *TransactionRepository) List(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, int, error) {
	where, args := transactionWhere(f)

	var total int
	if err := r.DB.QueryRow(ctx, "SELECT COUNT(*) FROM transactions t"+where, args...).Scan(&total); err != nil {
		return nil, 0, translate(err, "transaction")
	}

	query := transactionSelect + where + " ORDER BY t.date DESC, t.id DESC"
	if f.Page.Size > 0 {
		n := len(args) + 1
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", n, n+1)
		args = append(args, f.Page.Limit(), f.Page.Offset())
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, translate(err, "transaction")
	}
	defer rows.Close()

	txns := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, translate(err, "transaction")
		}
		txns = append(txns, *t)
	}
	return txns, total, rows.Err()
}

// Summarize sums amounts per type over exactly the rows List would return
// without paging.
func (r *TransactionRepository) Summarize(ctx context.Context, f models.TransactionFilter) (models.TransactionSummary, error) {
	where, args := transactionWhere(f)

	rows, err := r.DB.Query(ctx,
		"SELECT t.type, COALESCE(SUM(t.amount), 0)::text FROM transactions t"+where+" GROUP BY t.type", args...)
	if err != nil {
		return models.TransactionSummary{}, translate(err, "transaction")
	}
	defer rows.Close()

	income, expense := decimal.Zero, decimal.Zero
	for rows.Next() {
		var typ models.TransactionType
		var sum string
		if err := rows.Scan(&typ, &sum); err != nil {
			return models.TransactionSummary{}, translate(err, "transaction")
		}
		d, err := decimal.NewFromString(sum)
		if err != nil {
			return models.TransactionSummary{}, fmt.Errorf("parse sum %q: %w", sum, err)
		}
		switch typ {
		case models.Income:
			income = d
		case models.Expense:
			expense = d
		}
	}
	if err := rows.Err(); err != nil {
		return models.TransactionSummary{}, translate(err, "transaction")
	}

	return models.NewTransactionSummary(income, expense), nil
}
