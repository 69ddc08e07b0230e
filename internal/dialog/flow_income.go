package dialog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/finfacil/internal/model"
)

func (e *Engine) startAddIncome(_ context.Context, s *Session, _ input) (outcome, error) {
	s.Step = StepAskAmount
	return next(clearKeyboard(msgAskIncomeAmount)), nil
}

func (e *Engine) incomeAmount(ctx context.Context, s *Session, in input) (outcome, error) {
	amount, err := parseAmount(in.text)
	if err != nil {
		return next(amountError(err)), nil
	}

	list, err := e.categories.ViewCategories(ctx, s.UserID, model.CategoryTypeIncome)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to load income categories: %w", err)
	}

	s.Amount = amount
	s.Step = StepAskCategory
	return next(incomeCategoryPrompt(list)), nil
}

func (e *Engine) incomeCategory(ctx context.Context, s *Session, in input) (outcome, error) {
	stored, ok, err := e.categories.Resolve(ctx, s.UserID, model.CategoryTypeIncome, in.text)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to resolve income category: %w", err)
	}
	if !ok {
		return next(incomeCategoryInvalid()), nil
	}

	s.Category = stored
	s.Step = StepAskNote
	return next(clearKeyboard(msgAskNote)), nil
}

func (e *Engine) incomeNote(_ context.Context, s *Session, in input) (outcome, error) {
	s.Note = parseNote(in.text)
	s.NoteSet = true
	s.Step = StepAskDate
	return next(text(msgAskDate)), nil
}

// incomeDate appends the record, then applies the balance. When the balance update fails
// the record id stays in the session, so a retry only applies the balance.
func (e *Engine) incomeDate(ctx context.Context, s *Session, in input) (outcome, error) {
	if s.CommittedID == 0 {
		date, err := parsePastDate(in.text, e.now())
		if err != nil {
			return next(dateError(err)), nil
		}

		switch {
		case !s.Amount.IsPositive():
			return outcome{}, missing("amount")
		case s.Category == "":
			return outcome{}, missing("category")
		case !s.NoteSet:
			return outcome{}, missing("note")
		}

		s.Date = model.FormatDate(date)
		rec, err := e.ledger.AppendIncome(ctx, s.UserID, model.IncomeRecord{
			Amount:   s.Amount,
			Category: s.Category,
			Date:     s.Date,
			Note:     s.Note,
		})
		if err != nil {
			return outcome{}, fmt.Errorf("failed to record income: %w", err)
		}
		s.CommittedID = rec.ID
	}

	balance, err := e.ledger.ApplyIncome(ctx, s.UserID, s.Amount)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to update balance: %w", err)
	}

	rec := model.IncomeRecord{
		ID:       s.CommittedID,
		Amount:   s.Amount,
		Category: s.Category,
		Date:     s.Date,
		Note:     s.Note,
	}
	return finish(incomeCommitted(rec, balance), helpReply()), nil
}

func amountError(err error) Reply {
	if errors.Is(err, errAmountNotPos) {
		return text(msgAmountNotPos)
	}
	return text(msgAmountInvalid)
}

func dateError(err error) Reply {
	if errors.Is(err, errDateInFuture) {
		return text(msgDateFuture)
	}
	return text(msgDateInvalid)
}
