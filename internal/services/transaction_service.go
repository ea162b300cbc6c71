package services

import (
	"context"
	"strings"

	"staffdesk/internal/apperr"
	"staffdesk/internal/logger"
	"staffdesk/internal/models"
	"staffdesk/internal/timeutil"
)

type TransactionService struct {
	Transactions TransactionStore
}

func NewTransactionService(transactions TransactionStore) *TransactionService {
	return &TransactionService{Transactions: transactions}
}

// NewTransactionFilter parses list query parameters. Bare end dates cover
// the whole day in WIB.
func NewTransactionFilter(typ, category, startDate, endDate string, page models.Page) (models.TransactionFilter, error) {
	f := models.TransactionFilter{
		Type:     models.TransactionType(strings.ToUpper(typ)),
		Category: models.Category(strings.ToUpper(category)),
		Page:     page,
	}

	if f.Type != "" && f.Type != models.Income && f.Type != models.Expense {
		return f, fieldError("type", "must be one of: INCOME EXPENSE")
	}
	if f.Category != "" && !f.Category.BelongsTo(models.Income) && !f.Category.BelongsTo(models.Expense) {
		return f, fieldError("category", "unknown category")
	}
	if startDate != "" {
		t, err := timeutil.RangeStart(startDate)
		if err != nil {
			return f, fieldError("startDate", err.Error())
		}
		f.Start = &t
	}
	if endDate != "" {
		t, err := timeutil.RangeEnd(endDate)
		if err != nil {
			return f, fieldError("endDate", err.Error())
		}
		f.End = &t
	}
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return f, fieldError("endDate", "must not be before startDate")
	}
	return f, nil
}

// toTransaction validates a request into a row. Amount must be positive and
// the category must belong to the type.
func toTransaction(req *models.TransactionRequest) (*models.Transaction, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fieldError("amount", "must be greater than 0")
	}
	if !req.Category.BelongsTo(req.Type) {
		return nil, fieldError("category", "category "+string(req.Category)+" is not valid for "+string(req.Type))
	}
	date, _, err := timeutil.ParseDateOrTime(req.Date)
	if err != nil {
		return nil, fieldError("date", err.Error())
	}
	return &models.Transaction{
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount.Round(2),
		Description: req.Description,
		Date:        date,
	}, nil
}

func (s *TransactionService) Create(ctx context.Context, p models.Principal, req *models.TransactionRequest) (*models.Transaction, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	t, err := toTransaction(req)
	if err != nil {
		return nil, err
	}
	t.CreatedByID = p.AccountID

	if err := s.Transactions.Create(ctx, t); err != nil {
		return nil, err
	}

	l := logger.FromContext(ctx)
	l.Info().Int("transaction_id", t.ID).Str("type", string(t.Type)).Str("amount", t.Amount.StringFixed(2)).Msg("transaction recorded")
	return t, nil
}

func (s *TransactionService) Get(ctx context.Context, p models.Principal, id int) (*models.Transaction, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	return s.Transactions.Get(ctx, id)
}

func (s *TransactionService) Update(ctx context.Context, p models.Principal, id int, req *models.TransactionRequest) (*models.Transaction, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	existing, err := s.Transactions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := toTransaction(req)
	if err != nil {
		return nil, err
	}
	t.ID = existing.ID
	t.CreatedByID = existing.CreatedByID
	t.CreatedBy = existing.CreatedBy
	t.CreatedAt = existing.CreatedAt

	if err := s.Transactions.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, p models.Principal, id int) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if err := s.Transactions.Delete(ctx, id); err != nil {
		return err
	}

	l := logger.FromContext(ctx)
	l.Info().Int("transaction_id", id).Int("by", p.AccountID).Msg("transaction deleted")
	return nil
}

// List returns one page of matching rows plus income, expense and net
// totals over every matching row.
func (s *TransactionService) List(ctx context.Context, p models.Principal, f models.TransactionFilter) (*models.TransactionList, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	rows, total, err := s.Transactions.List(ctx, f)
	if err != nil {
		return nil, err
	}
	summary, err := s.Transactions.Summarize(ctx, f)
	if err != nil {
		return nil, err
	}

	return &models.TransactionList{
		Transactions: rows,
		Summary:      summary,
		Pagination:   models.NewPagination(f.Page, total),
	}, nil
}

// all returns every matching row and the aggregate, ignoring paging.
func (s *TransactionService) all(ctx context.Context, p models.Principal, f models.TransactionFilter) ([]models.Transaction, models.TransactionSummary, error) {
	if err := requireAdmin(p); err != nil {
		return nil, models.TransactionSummary{}, err
	}
	f.Page = models.Page{}
	rows, _, err := s.Transactions.List(ctx, f)
	if err != nil {
		return nil, models.TransactionSummary{}, err
	}
	summary, err := s.Transactions.Summarize(ctx, f)
	if err != nil {
		return nil, models.TransactionSummary{}, err
	}
	if len(rows) > maxExportRows {
		return nil, models.TransactionSummary{}, apperr.Validation("too many rows to export, narrow the filter")
	}
	return rows, summary, nil
}
