package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

type Category string

const (
	CategorySalary      Category = "SALARY"
	CategoryBonus       Category = "BONUS"
	CategoryCommission  Category = "COMMISSION"
	CategoryOtherIncome Category = "OTHER_INCOME"

	CategoryOfficeSupplies Category = "OFFICE_SUPPLIES"
	CategoryUtilities      Category = "UTILITIES"
	CategoryRent           Category = "RENT"
	CategoryMarketing      Category = "MARKETING"
	CategoryTravel         Category = "TRAVEL"
	CategoryMeals          Category = "MEALS"
	CategoryEquipment      Category = "EQUIPMENT"
	CategorySoftware       Category = "SOFTWARE"
	CategoryTraining       Category = "TRAINING"
	CategoryOtherExpense   Category = "OTHER_EXPENSE"
)

// CategoriesByType lists the categories valid for each transaction type.
var CategoriesByType = map[TransactionType][]Category{
	Income: {CategorySalary, CategoryBonus, CategoryCommission, CategoryOtherIncome},
	Expense: {
		CategoryOfficeSupplies, CategoryUtilities, CategoryRent, CategoryMarketing, CategoryTravel,
		CategoryMeals, CategoryEquipment, CategorySoftware, CategoryTraining, CategoryOtherExpense,
	},
}

// BelongsTo reports whether c is a valid category for t.
func (c Category) BelongsTo(t TransactionType) bool {
	for _, allowed := range CategoriesByType[t] {
		if allowed == c {
			return true
		}
	}
	return false
}

type Transaction struct {
	ID          int             `json:"id"`
	Type        TransactionType `json:"type"`
	Category    Category        `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedByID int             `json:"created_by_id"`
	CreatedBy   *AccountRef     `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type TransactionRequest struct {
	Type        TransactionType `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Category    Category        `json:"category" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"required"`
	Date        string          `json:"date" validate:"required"`
}

// TransactionFilter is shared by the row query and the aggregate so both
// always see the same set.
type TransactionFilter struct {
	Type     TransactionType
	Category Category
	Start    *time.Time
	End      *time.Time
	Page     Page
}

type TransactionSummary struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetIncome    decimal.Decimal `json:"net_income"`
}

// NewTransactionSummary derives the net figure from per-type sums.
func NewTransactionSummary(income, expense decimal.Decimal) TransactionSummary {
	return TransactionSummary{
		TotalIncome:  income,
		TotalExpense: expense,
		NetIncome:    income.Sub(expense),
	}
}

type TransactionList struct {
	Transactions []Transaction      `json:"transactions"`
	Summary      TransactionSummary `json:"summary"`
	Pagination   Pagination         `json:"pagination"`
}
