package testutil

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finfacil/internal/model"
	"github.com/Veraticus/finfacil/internal/storage"
)

// LedgerBuilder seeds records and balance changes for one user, the way a completed
// dialog would.
type LedgerBuilder struct {
	t        *testing.T
	userID   string
	income   []model.IncomeRecord
	expenses []model.ExpenseRecord
}

// NewLedgerBuilder starts a builder for userID.
func NewLedgerBuilder(t *testing.T, userID string) *LedgerBuilder {
	t.Helper()
	return &LedgerBuilder{t: t, userID: userID}
}

// WithIncome adds an income record. amount uses a dot as decimal separator.
func (b *LedgerBuilder) WithIncome(amount, category, date string) *LedgerBuilder {
	b.income = append(b.income, model.IncomeRecord{
		Amount:   b.amount(amount),
		Category: category,
		Date:     date,
	})
	return b
}

// WithExpense adds an expense record without a receipt.
func (b *LedgerBuilder) WithExpense(amount, category, date string) *LedgerBuilder {
	return b.WithExpenseAttachment(amount, category, date, "")
}

// WithExpenseAttachment adds an expense record with a receipt reference.
func (b *LedgerBuilder) WithExpenseAttachment(amount, category, date, attachment string) *LedgerBuilder {
	b.expenses = append(b.expenses, model.ExpenseRecord{
		Amount:     b.amount(amount),
		Category:   category,
		Date:       date,
		Attachment: attachment,
	})
	return b
}

// Build appends every record in order and applies it to the balance. It returns the
// stored expense records with their ids.
func (b *LedgerBuilder) Build(ledger *storage.LedgerStore) []model.ExpenseRecord {
	b.t.Helper()
	ctx := context.Background()

	for _, rec := range b.income {
		if _, err := ledger.AppendIncome(ctx, b.userID, rec); err != nil {
			b.t.Fatalf("failed to seed income: %v", err)
		}
		if _, err := ledger.ApplyIncome(ctx, b.userID, rec.Amount); err != nil {
			b.t.Fatalf("failed to apply income: %v", err)
		}
	}

	stored := make([]model.ExpenseRecord, 0, len(b.expenses))
	for _, rec := range b.expenses {
		saved, err := ledger.AppendExpense(ctx, b.userID, rec)
		if err != nil {
			b.t.Fatalf("failed to seed expense: %v", err)
		}
		if _, err := ledger.ApplyExpense(ctx, b.userID, rec.Amount); err != nil {
			b.t.Fatalf("failed to apply expense: %v", err)
		}
		stored = append(stored, saved)
	}
	return stored
}

func (b *LedgerBuilder) amount(s string) decimal.Decimal {
	b.t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		b.t.Fatalf("invalid amount %q: %v", s, err)
	}
	return d
}
