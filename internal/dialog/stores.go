package dialog

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finfacil/internal/model"
	"github.com/Veraticus/finfacil/internal/report"
)

// Categories is the category storage the engine reads and writes. Flows read through
// ViewCategories and Resolve, which never write, so a cancelled flow leaves no trace.
type Categories interface {
	Categories(ctx context.Context, userID string, ns model.CategoryType) ([]string, error)
	ViewCategories(ctx context.Context, userID string, ns model.CategoryType) ([]string, error)
	SetCategories(ctx context.Context, userID string, ns model.CategoryType, list []string) error
	Resolve(ctx context.Context, userID string, ns model.CategoryType, input string) (string, bool, error)
}

// Ledger is the balance and record storage the engine reads and writes.
type Ledger interface {
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	HasBalance(ctx context.Context, userID string) (bool, error)
	ApplyIncome(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error)
	ApplyExpense(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error)
	AppendIncome(ctx context.Context, userID string, rec model.IncomeRecord) (model.IncomeRecord, error)
	AppendExpense(ctx context.Context, userID string, rec model.ExpenseRecord) (model.ExpenseRecord, error)
	ExpenseByID(ctx context.Context, userID string, id int) (model.ExpenseRecord, bool, error)
	CountExpensesByCategory(ctx context.Context, userID, category string) (int, error)
	RemoveExpensesByCategory(ctx context.Context, userID, category string) (int, error)
	FilterExpenses(ctx context.Context, userID string, c report.Criteria) ([]model.ExpenseRecord, error)
	FilterIncome(ctx context.Context, userID string, c report.Criteria) ([]model.IncomeRecord, error)
}
