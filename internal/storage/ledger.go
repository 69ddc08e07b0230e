package storage

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/finfacil/internal/model"
	"github.com/Veraticus/finfacil/internal/report"
	"github.com/Veraticus/finfacil/internal/textnorm"
)

func init() {
	// Balances and record amounts are stored as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// sequence is the per-user high-water mark of assigned record ids.
type sequence struct {
	Income  int `json:"income"`
	Expense int `json:"expense"`
}

// LedgerStore manages balances and the income and expense records behind them.
type LedgerStore struct {
	docs DocumentStore
}

// NewLedgerStore creates a ledger store over docs.
func NewLedgerStore(docs DocumentStore) *LedgerStore {
	return &LedgerStore{docs: docs}
}

// Balance returns the user's balance, zero when none was ever recorded.
func (s *LedgerStore) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	balance, _, err := s.lookupBalance(ctx, userID)
	return balance, err
}

// HasBalance reports whether the user has a balance entry, which is how returning users
// are told apart from new ones.
func (s *LedgerStore) HasBalance(ctx context.Context, userID string) (bool, error) {
	_, ok, err := s.lookupBalance(ctx, userID)
	return ok, err
}

func (s *LedgerStore) lookupBalance(ctx context.Context, userID string) (decimal.Decimal, bool, error) {
	if err := s.validate(ctx, userID); err != nil {
		return decimal.Zero, false, err
	}
	balances, err := loadMap[decimal.Decimal](ctx, s.docs, DocBalances)
	if err != nil {
		return decimal.Zero, false, err
	}
	balance, ok := balances[userID]
	return balance, ok, nil
}

// ApplyIncome adds amount to the balance and returns the new balance.
func (s *LedgerStore) ApplyIncome(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.adjustBalance(ctx, userID, amount)
}

// ApplyExpense subtracts amount from the balance and returns the new balance. The balance
// may go negative.
func (s *LedgerStore) ApplyExpense(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.adjustBalance(ctx, userID, amount.Neg())
}

func (s *LedgerStore) adjustBalance(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	if err := s.validate(ctx, userID); err != nil {
		return decimal.Zero, err
	}
	if err := validateAmount(delta.Abs()); err != nil {
		return decimal.Zero, err
	}

	balances, err := loadMap[decimal.Decimal](ctx, s.docs, DocBalances)
	if err != nil {
		return decimal.Zero, err
	}
	updated := balances[userID].Add(delta)
	balances[userID] = updated
	if err := saveMap(ctx, s.docs, DocBalances, balances); err != nil {
		return decimal.Zero, err
	}

	slog.Debug("balance updated", "user_id", userID, "delta", delta.String(), "balance", updated.String())
	return updated, nil
}

// AppendIncome stores rec with the next income id and returns it.
func (s *LedgerStore) AppendIncome(ctx context.Context, userID string, rec model.IncomeRecord) (model.IncomeRecord, error) {
	if err := s.validate(ctx, userID); err != nil {
		return rec, err
	}
	if err := validateAmount(rec.Amount); err != nil {
		return rec, err
	}

	all, err := loadMap[[]model.IncomeRecord](ctx, s.docs, DocIncomeRecords)
	if err != nil {
		return rec, err
	}
	records := all[userID]

	maxID := 0
	for _, r := range records {
		maxID = max(maxID, r.ID)
	}
	id, err := s.nextID(ctx, userID, maxID, func(seq *sequence) *int { return &seq.Income })
	if err != nil {
		return rec, err
	}

	rec.ID = id
	all[userID] = append(records, rec)
	if err := saveMap(ctx, s.docs, DocIncomeRecords, all); err != nil {
		return rec, err
	}
	return rec, nil
}

// AppendExpense stores rec with the next expense id and returns it.
func (s *LedgerStore) AppendExpense(ctx context.Context, userID string, rec model.ExpenseRecord) (model.ExpenseRecord, error) {
	if err := s.validate(ctx, userID); err != nil {
		return rec, err
	}
	if err := validateAmount(rec.Amount); err != nil {
		return rec, err
	}

	all, err := loadMap[[]model.ExpenseRecord](ctx, s.docs, DocExpenseRecords)
	if err != nil {
		return rec, err
	}
	records := all[userID]

	maxID := 0
	for _, r := range records {
		maxID = max(maxID, r.ID)
	}
	id, err := s.nextID(ctx, userID, maxID, func(seq *sequence) *int { return &seq.Expense })
	if err != nil {
		return rec, err
	}

	rec.ID = id
	all[userID] = append(records, rec)
	if err := saveMap(ctx, s.docs, DocExpenseRecords, all); err != nil {
		return rec, err
	}
	return rec, nil
}

// nextID advances the user's high-water mark past maxExisting and persists it, so ids freed
// by deletions are never handed out again.
func (s *LedgerStore) nextID(ctx context.Context, userID string, maxExisting int, field func(*sequence) *int) (int, error) {
	seqs, err := loadMap[sequence](ctx, s.docs, DocSequences)
	if err != nil {
		return 0, err
	}
	seq := seqs[userID]
	mark := field(&seq)
	*mark = max(*mark, maxExisting) + 1
	seqs[userID] = seq
	if err := saveMap(ctx, s.docs, DocSequences, seqs); err != nil {
		return 0, err
	}
	return *mark, nil
}

// IncomeRecords returns the user's income records in insertion order.
func (s *LedgerStore) IncomeRecords(ctx context.Context, userID string) ([]model.IncomeRecord, error) {
	if err := s.validate(ctx, userID); err != nil {
		return nil, err
	}
	all, err := loadMap[[]model.IncomeRecord](ctx, s.docs, DocIncomeRecords)
	if err != nil {
		return nil, err
	}
	return slices.Clone(all[userID]), nil
}

// ExpenseRecords returns the user's expense records in insertion order.
func (s *LedgerStore) ExpenseRecords(ctx context.Context, userID string) ([]model.ExpenseRecord, error) {
	if err := s.validate(ctx, userID); err != nil {
		return nil, err
	}
	all, err := loadMap[[]model.ExpenseRecord](ctx, s.docs, DocExpenseRecords)
	if err != nil {
		return nil, err
	}
	return slices.Clone(all[userID]), nil
}

// ExpenseByID looks up one expense record.
func (s *LedgerStore) ExpenseByID(ctx context.Context, userID string, id int) (model.ExpenseRecord, bool, error) {
	records, err := s.ExpenseRecords(ctx, userID)
	if err != nil {
		return model.ExpenseRecord{}, false, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, true, nil
		}
	}
	return model.ExpenseRecord{}, false, nil
}

// CountExpensesByCategory counts the user's expenses whose category normalizes to category.
func (s *LedgerStore) CountExpensesByCategory(ctx context.Context, userID, category string) (int, error) {
	records, err := s.ExpenseRecords(ctx, userID)
	if err != nil {
		return 0, err
	}
	key := textnorm.Normalize(category)
	count := 0
	for _, r := range records {
		if textnorm.Normalize(r.Category) == key {
			count++
		}
	}
	return count, nil
}

// RemoveExpensesByCategory deletes the user's expenses in category and returns how many
// were removed. Balances are left as they are.
func (s *LedgerStore) RemoveExpensesByCategory(ctx context.Context, userID, category string) (int, error) {
	if err := s.validate(ctx, userID); err != nil {
		return 0, err
	}
	all, err := loadMap[[]model.ExpenseRecord](ctx, s.docs, DocExpenseRecords)
	if err != nil {
		return 0, err
	}
	records, ok := all[userID]
	if !ok {
		return 0, nil
	}

	key := textnorm.Normalize(category)
	kept := slices.DeleteFunc(slices.Clone(records), func(r model.ExpenseRecord) bool {
		return textnorm.Normalize(r.Category) == key
	})
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if kept == nil {
		kept = []model.ExpenseRecord{}
	}
	all[userID] = kept
	if err := saveMap(ctx, s.docs, DocExpenseRecords, all); err != nil {
		return 0, err
	}

	slog.Info("removed expenses by category", "user_id", userID, "category", key, "count", removed)
	return removed, nil
}

// FilterExpenses returns the user's expenses matching c.
func (s *LedgerStore) FilterExpenses(ctx context.Context, userID string, c report.Criteria) ([]model.ExpenseRecord, error) {
	records, err := s.ExpenseRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	return report.Filter(records, c), nil
}

// FilterIncome returns the user's income records matching c.
func (s *LedgerStore) FilterIncome(ctx context.Context, userID string, c report.Criteria) ([]model.IncomeRecord, error) {
	records, err := s.IncomeRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	return report.Filter(records, c), nil
}

// Users lists every user id present in any ledger document, sorted.
func (s *LedgerStore) Users(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})

	balances, err := loadMap[decimal.Decimal](ctx, s.docs, DocBalances)
	if err != nil {
		return nil, err
	}
	for id := range balances {
		seen[id] = struct{}{}
	}
	incomes, err := loadMap[[]model.IncomeRecord](ctx, s.docs, DocIncomeRecords)
	if err != nil {
		return nil, err
	}
	for id := range incomes {
		seen[id] = struct{}{}
	}
	expenses, err := loadMap[[]model.ExpenseRecord](ctx, s.docs, DocExpenseRecords)
	if err != nil {
		return nil, err
	}
	for id := range expenses {
		seen[id] = struct{}{}
	}

	users := make([]string, 0, len(seen))
	for id := range seen {
		users = append(users, id)
	}
	slices.Sort(users)
	return users, nil
}

func (s *LedgerStore) validate(ctx context.Context, userID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	return nil
}
