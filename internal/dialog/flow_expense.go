package dialog

import (
	"context"
	"fmt"

	"github.com/Veraticus/finfacil/internal/model"
	"github.com/Veraticus/finfacil/internal/textnorm"
)

func (e *Engine) startAddExpense(_ context.Context, s *Session, _ input) (outcome, error) {
	s.Step = StepAskAmount
	return next(clearKeyboard(msgAskExpenseValue)), nil
}

func (e *Engine) expenseAmount(_ context.Context, s *Session, in input) (outcome, error) {
	amount, err := parseAmount(in.text)
	if err != nil {
		return next(amountError(err)), nil
	}

	s.Amount = amount
	s.Step = StepAskAttachmentChoice
	return next(withKeyboard(msgAskAttachment, yesNoKeyboard)), nil
}

func (e *Engine) expenseAttachmentChoice(ctx context.Context, s *Session, in input) (outcome, error) {
	wants, err := parseYesNo(in.text, true)
	if err != nil {
		return next(text(msgAttachmentBad)), nil
	}
	if wants {
		s.Step = StepWaitPhoto
		return next(clearKeyboard(msgExpectPhoto)), nil
	}

	s.Attachment = ""
	return e.askExpenseCategory(ctx, s)
}

func (e *Engine) expensePhoto(ctx context.Context, s *Session, in input) (outcome, error) {
	s.Attachment = in.photo
	out, err := e.askExpenseCategory(ctx, s)
	if err != nil {
		return outcome{}, err
	}
	out.replies = append([]Reply{text(msgPhotoReceived)}, out.replies...)
	return out, nil
}

func (e *Engine) askExpenseCategory(ctx context.Context, s *Session) (outcome, error) {
	list, err := e.categories.ViewCategories(ctx, s.UserID, model.CategoryTypeExpense)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to load expense categories: %w", err)
	}
	s.Step = StepAskCategory
	return next(expenseCategoryPrompt(list)), nil
}

func (e *Engine) expenseCategory(ctx context.Context, s *Session, in input) (outcome, error) {
	_, ok, err := e.categories.Resolve(ctx, s.UserID, model.CategoryTypeExpense, in.text)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to resolve expense category: %w", err)
	}
	if !ok {
		return next(expenseCategoryInvalid()), nil
	}

	s.Category = textnorm.Normalize(in.text)
	s.Step = StepAskDate
	return next(clearKeyboard(msgAskDate)), nil
}

func (e *Engine) expenseDate(_ context.Context, s *Session, in input) (outcome, error) {
	date, err := parsePastDate(in.text, e.now())
	if err != nil {
		return next(dateError(err)), nil
	}

	s.Date = model.FormatDate(date)
	s.Step = StepAskNote
	return next(text(msgAskNote)), nil
}

// expenseNote commits the expense. A retry after a failed balance update reuses the
// record already appended.
func (e *Engine) expenseNote(ctx context.Context, s *Session, in input) (outcome, error) {
	if s.CommittedID == 0 {
		switch {
		case !s.Amount.IsPositive():
			return outcome{}, missing("amount")
		case s.Category == "":
			return outcome{}, missing("category")
		case s.Date == "":
			return outcome{}, missing("date")
		}

		s.Note = parseNote(in.text)
		s.NoteSet = true

		rec, err := e.ledger.AppendExpense(ctx, s.UserID, model.ExpenseRecord{
			Amount:     s.Amount,
			Category:   s.Category,
			Date:       s.Date,
			Attachment: s.Attachment,
			Note:       s.Note,
		})
		if err != nil {
			return outcome{}, fmt.Errorf("failed to record expense: %w", err)
		}
		s.CommittedID = rec.ID
	}

	balance, err := e.ledger.ApplyExpense(ctx, s.UserID, s.Amount)
	if err != nil {
		return outcome{}, fmt.Errorf("failed to update balance: %w", err)
	}

	return finish(expenseCommitted(model.ExpenseRecord{ID: s.CommittedID}, balance), helpReply()), nil
}
